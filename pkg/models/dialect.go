package models

// Dialect identifies a supported database engine.
type Dialect string

const (
	DialectPostgres   Dialect = "postgresql"
	DialectMySQL      Dialect = "mysql"
	DialectClickHouse Dialect = "clickhouse"
)

// Sampling strategies, in decreasing order of quality.
const (
	SamplingNative        = "native-sample"   // engine-level SAMPLE clause
	SamplingOrderByRandom = "order-by-random" // ORDER BY RAND() fallback
	SamplingLimitOnly     = "limit-only"      // plain LIMIT, no randomization
)

// Statistics levels.
const (
	StatisticsFull    = "full"    // percentiles available
	StatisticsPartial = "partial" // mean/stddev/min/max only
)

// Capabilities describes what the active dialect can do. Listing operations
// for an unsupported feature return empty results with a note; analysis
// operations return an error.
type Capabilities struct {
	ForeignKeys bool   `json:"foreign_keys"`
	Indexes     bool   `json:"indexes"`
	Constraints bool   `json:"constraints"`
	Sampling    string `json:"sampling"`
	Statistics  string `json:"statistics"`
}

// TypeCategory is the coarse classification driving which statistics are
// computed for a column.
type TypeCategory string

const (
	TypeNumeric  TypeCategory = "numeric"
	TypeText     TypeCategory = "text"
	TypeTemporal TypeCategory = "temporal"
	TypeBoolean  TypeCategory = "boolean"
	TypeOther    TypeCategory = "other"
)
