package models

// DistributionEntry is one value in a column's most-common-values list.
type DistributionEntry struct {
	Value     any   `json:"value"`
	Frequency int64 `json:"frequency"`
}

// ColumnStatistics is the result of analyze_column. Which optional fields
// are populated depends on the column's type category and the dialect's
// statistics level.
type ColumnStatistics struct {
	Schema       string       `json:"schema"`
	Table        string       `json:"table"`
	Column       string       `json:"column"`
	DataType     string       `json:"data_type"`
	TypeCategory TypeCategory `json:"type_category"`

	TotalRows     int64   `json:"total_rows"`
	NullCount     int64   `json:"null_count"`
	NullFraction  float64 `json:"null_fraction"`
	DistinctCount int64   `json:"distinct_count"`
	// CardinalityRatio is distinct/total, 0 for an empty table.
	CardinalityRatio float64 `json:"cardinality_ratio"`

	// Numeric columns only.
	Mean   *float64 `json:"mean,omitempty"`
	StdDev *float64 `json:"stddev,omitempty"`
	Min    any      `json:"min,omitempty"`
	Max    any      `json:"max,omitempty"`
	Q1     *float64 `json:"q1,omitempty"`
	Median *float64 `json:"median,omitempty"`
	Q3     *float64 `json:"q3,omitempty"`
	P95    *float64 `json:"p95,omitempty"`
	P99    *float64 `json:"p99,omitempty"`

	// Text and low-cardinality columns only.
	Distribution []DistributionEntry `json:"distribution,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
}
