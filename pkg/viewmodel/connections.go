package viewmodel

import (
	"github.com/vanderheijden86/stageboard/pkg/model"
	"github.com/vanderheijden86/stageboard/pkg/snapshot"
)

// DeriveConnections walks the snapshot with the "not All" rule: the first
// label cell (in Recruit..Grow order) that is not the "All" sentinel picks the
// row's source tile, and the next column's cell, when it is a real label,
// names the target. A null cell is "not All" too, so a row whose first such
// cell is null has no source label and contributes nothing.
//
// Both endpoints are resolved by (column, label) against tiles, so they carry
// the ids the tile pass assigned after empty-id and duplicate handling. A
// source with no tile in its column keeps a fallback id and gets no Targets;
// so does a row whose target is not among tiles.
func DeriveConnections(snap *snapshot.Snapshot, tiles []model.Tile) []model.Connection {
	if Validate(snap) != nil {
		return nil
	}
	cat := snap.DataViews[0].Categorical
	metric := cat.Values[0]

	byLabel := make(map[tileKey]model.Tile, len(tiles))
	for _, t := range tiles {
		k := tileKey{t.Column, t.Label}
		if _, ok := byLabel[k]; !ok {
			byLabel[k] = t
		}
	}

	var conns []model.Connection
	for i := 0; i < metric.Len(); i++ {
		c := firstNotAll(cat.Categories, i)
		if c < 0 {
			continue
		}
		from, ok := cat.Categories[c].Label(i)
		if !ok {
			continue
		}
		src, found := byLabel[tileKey{model.Columns[c], from}]
		if !found {
			conns = append(conns, model.Connection{FromID: fallbackID(from)})
			continue
		}
		conn := model.Connection{FromID: src.ID}
		if c+1 < model.ColumnCount {
			if to, ok := cat.Categories[c+1].Label(i); ok && to != AllSentinel {
				if t, found := byLabel[tileKey{model.Columns[c+1], to}]; found {
					conn.Targets = append(conn.Targets, t)
				}
			}
		}
		conns = append(conns, conn)
	}
	return conns
}

// tileKey identifies a tile the way a snapshot row names it.
type tileKey struct {
	col   model.Column
	label string
}

func fallbackID(label string) string {
	if id := Sanitize(label); id != "" {
		return id
	}
	return emptyID
}

// firstNotAll returns the index of the first label cell in row i that is not
// the "All" sentinel, or -1 when every cell is "All".
func firstNotAll(cats []snapshot.CategoryColumn, i int) int {
	for c := 0; c < model.ColumnCount; c++ {
		v, ok := cats[c].Label(i)
		if !ok || v != AllSentinel {
			return c
		}
	}
	return -1
}

// Pair is one connector to draw, by tile id.
type Pair struct {
	From string
	To   string
}

// ConnectorPairs flattens connections that have targets into id pairs, keeping
// first-seen order and dropping repeats and self-links.
func ConnectorPairs(conns []model.Connection) []Pair {
	seen := make(map[Pair]bool)
	var pairs []Pair
	for _, c := range conns {
		for _, t := range c.Targets {
			p := Pair{From: c.FromID, To: t.ID}
			if p.From == p.To || seen[p] {
				continue
			}
			seen[p] = true
			pairs = append(pairs, p)
		}
	}
	return pairs
}
