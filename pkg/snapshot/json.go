package snapshot

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
)

// flatRow is the row-oriented JSON shape accepted alongside the host payload.
type flatRow struct {
	Recruit Cell     `json:"recruit"`
	Develop Cell     `json:"develop"`
	Launch  Cell     `json:"launch"`
	Grow    Cell     `json:"grow"`
	Metric  *float64 `json:"metric"`
}

type document struct {
	DataViews []DataView `json:"dataViews"`
	Rows      []flatRow  `json:"rows"`
}

// Decode reads a snapshot in either the host payload shape
// ({"dataViews": [...]}) or the flat shape ({"rows": [{"recruit": ...}]}).
// An empty document decodes to an empty snapshot.
func Decode(r io.Reader) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &Snapshot{}, nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}

	if len(doc.DataViews) > 0 || doc.Rows == nil {
		return &Snapshot{DataViews: doc.DataViews}, nil
	}

	rows := make([]Row, len(doc.Rows))
	for i, fr := range doc.Rows {
		rows[i] = Row{
			Labels: [4]Cell{fr.Recruit, fr.Develop, fr.Launch, fr.Grow},
			Metric: fr.Metric,
		}
	}
	return FromRows(rows), nil
}

// LoadFile decodes a JSON snapshot from path.
func LoadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes s in the host payload shape.
func Encode(w io.Writer, s *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
