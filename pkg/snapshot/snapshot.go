// Package snapshot describes the tabular payload a host delivers on each
// update: four parallel categorical label columns (Recruit, Develop, Launch,
// Grow) and one numeric measure column.
//
// The shape mirrors the host's data view so payloads can be decoded as they
// arrive, and every field is optional: a partially bound snapshot is a normal
// state, not an error.
package snapshot

// Cell is a nullable label cell. A nil Cell is a null value.
type Cell = *string

// Snapshot is one host-delivered payload.
type Snapshot struct {
	DataViews []DataView `json:"dataViews,omitempty"`
}

// DataView is a single bound view inside a snapshot.
type DataView struct {
	Categorical *Categorical `json:"categorical,omitempty"`
	Metadata    *Metadata    `json:"metadata,omitempty"`
}

// Categorical holds the category (label) and value (measure) columns.
type Categorical struct {
	Categories []CategoryColumn `json:"categories,omitempty"`
	Values     []ValueColumn    `json:"values,omitempty"`
}

// CategoryColumn is one label column.
type CategoryColumn struct {
	Source *ColumnSource `json:"source,omitempty"`
	Values []Cell        `json:"values"`
}

// ValueColumn is one numeric measure column. Nil entries are null.
type ValueColumn struct {
	Source *ColumnSource `json:"source,omitempty"`
	Values []*float64    `json:"values"`
}

// ColumnSource names the field a column was bound to.
type ColumnSource struct {
	DisplayName string `json:"displayName"`
	QueryName   string `json:"queryName,omitempty"`
}

// Metadata carries the bound column descriptions.
type Metadata struct {
	Columns []ColumnSource `json:"columns,omitempty"`
}

// LabelColumnNames are the default display names of the four label columns.
var LabelColumnNames = [4]string{"Recruit", "Develop", "Launch", "Grow"}

// MetricColumnName is the default display name of the measure column.
const MetricColumnName = "Metric"

// Row is one flat input row: four label cells and the metric.
type Row struct {
	Labels [4]Cell
	Metric *float64
}

// FromRows assembles a fully bound snapshot from flat rows. Loaders that read
// row-oriented sources (SQLite, spreadsheets, flat JSON) build through here.
func FromRows(rows []Row) *Snapshot {
	cats := make([]CategoryColumn, 4)
	meta := &Metadata{}
	for i, name := range LabelColumnNames {
		src := ColumnSource{DisplayName: name, QueryName: "stages." + name}
		cats[i] = CategoryColumn{Source: &src, Values: make([]Cell, len(rows))}
		meta.Columns = append(meta.Columns, src)
	}
	metricSrc := ColumnSource{DisplayName: MetricColumnName, QueryName: "stages." + MetricColumnName}
	meta.Columns = append(meta.Columns, metricSrc)
	values := ValueColumn{Source: &metricSrc, Values: make([]*float64, len(rows))}

	for r, row := range rows {
		for c := 0; c < 4; c++ {
			cats[c].Values[r] = row.Labels[c]
		}
		values.Values[r] = row.Metric
	}

	return &Snapshot{DataViews: []DataView{{
		Categorical: &Categorical{Categories: cats, Values: []ValueColumn{values}},
		Metadata:    meta,
	}}}
}

// Str returns a non-null cell holding s.
func Str(s string) Cell {
	return &s
}

// Num returns a non-null metric holding v.
func Num(v float64) *float64 {
	return &v
}

// Label returns the string value of the cell at index i, reporting false for
// null or out-of-range cells.
func (c CategoryColumn) Label(i int) (string, bool) {
	if i < 0 || i >= len(c.Values) || c.Values[i] == nil {
		return "", false
	}
	return *c.Values[i], true
}

// At returns the metric at index i; null or out-of-range cells read as 0.
func (v ValueColumn) At(i int) float64 {
	if i < 0 || i >= len(v.Values) || v.Values[i] == nil {
		return 0
	}
	return *v.Values[i]
}

// Len returns the number of rows in the measure column.
func (v ValueColumn) Len() int {
	return len(v.Values)
}
