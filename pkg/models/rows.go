package models

// Rows is the dialect-neutral result of a catalog or user query. Columns are
// in select-list order; Values holds one slice per row, already converted to
// JSON-safe Go values by the backend.
type Rows struct {
	Columns []string `json:"columns"`
	Types   []string `json:"types,omitempty"`
	Values  [][]any  `json:"values"`
}

// RowCount returns the number of rows.
func (r *Rows) RowCount() int {
	if r == nil {
		return 0
	}
	return len(r.Values)
}

// Maps converts the positional rows into one map per row, keyed by column
// name. Used at the tool boundary where clients expect named fields.
func (r *Rows) Maps() []map[string]any {
	out := make([]map[string]any, 0, len(r.Values))
	for _, row := range r.Values {
		m := make(map[string]any, len(r.Columns))
		for i, col := range r.Columns {
			if i < len(row) {
				m[col] = row[i]
			}
		}
		out = append(out, m)
	}
	return out
}
