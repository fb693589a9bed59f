package models

// QueryResult is the client-facing result of execute_query and sample_data.
type QueryResult struct {
	Columns         []string         `json:"columns"`
	Rows            []map[string]any `json:"rows"`
	RowCount        int              `json:"row_count"`
	Truncated       bool             `json:"truncated"`
	ExecutionTimeMS float64          `json:"execution_time_ms"`
	SamplingMethod  string           `json:"sampling_method,omitempty"`
	Notes           []string         `json:"notes,omitempty"`
}

// ExplainResult carries a query execution plan.
type ExplainResult struct {
	Dialect Dialect `json:"dialect"`
	Format  string  `json:"format"` // "json" or "text"
	Plan    any     `json:"plan"`
}
