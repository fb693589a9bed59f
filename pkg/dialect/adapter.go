// Package dialect abstracts the catalog queries, statistics SQL, and
// capabilities of each supported database engine. Adapters produce SQL in
// the placeholder style their driver expects; callers pass the returned
// args through unchanged.
package dialect

import (
	"fmt"

	"github.com/yugui923/db-connect-mcp/pkg/apperrors"
	"github.com/yugui923/db-connect-mcp/pkg/models"
)

// Query is a SQL statement paired with its bind arguments.
type Query struct {
	SQL  string
	Args []any
}

// Adapter generates dialect-specific SQL. Methods that describe features a
// dialect lacks return a zero Query; callers translate that into an empty
// result with an explanatory note.
type Adapter interface {
	Dialect() models.Dialect
	Capabilities() models.Capabilities

	// DefaultSchema is the schema assumed when a caller omits one.
	DefaultSchema() string
	// SystemSchemas lists catalog schemas excluded from listings by default.
	SystemSchemas() map[string]bool

	// DatabaseInfoQuery returns [version, database_name, username].
	DatabaseInfoQuery() Query
	// SchemaQuery returns one [schema_name] row per schema.
	SchemaQuery() Query
	// TableQuery returns [schema, name, type] rows for the given schema.
	TableQuery(schema string) Query
	// ColumnQuery returns [name, data_type, is_nullable, default, ordinal,
	// comment] rows in ordinal order.
	ColumnQuery(schema, table string) Query
	// IndexQuery returns [name, columns_csv, is_unique, index_type] rows.
	IndexQuery(schema, table string) Query
	// ConstraintQuery returns [name, type, columns_csv] rows.
	ConstraintQuery(schema, table string) Query
	// ForeignKeyQuery returns [constraint, schema, table, column, ref_schema,
	// ref_table, ref_column] rows. An empty table selects the whole schema.
	ForeignKeyQuery(schema, table string) Query
	// EnrichTableQuery returns a single [row_count, size_bytes, comment] row.
	EnrichTableQuery(schema, table string) Query

	// SampleQuery returns the sampling statement and the method used.
	SampleQuery(schema, table string, limit int) (Query, string)

	// BaseStatsQuery returns a single [total_rows, null_count,
	// distinct_count] row for the column.
	BaseStatsQuery(schema, table, column string) Query
	// NumericStatsQuery returns [mean, stddev, min, max] plus, when the
	// dialect supports full statistics, [q1, median, q3, p95, p99].
	NumericStatsQuery(schema, table, column string) Query
	// TextStatsQuery returns up to topK [value, frequency] rows, most
	// frequent first.
	TextStatsQuery(schema, table, column string, topK int) Query

	// ExplainQuery wraps a validated statement in the dialect's EXPLAIN
	// form and reports the plan format ("json" or "text").
	ExplainQuery(sql string) (Query, string)

	// ProfileSchemaQuery returns [schema, table_count, total_bytes] rows.
	ProfileSchemaQuery() Query
	// ProfileTablesQuery returns the largest tables as [schema, table,
	// size_bytes, row_count] rows.
	ProfileTablesQuery(limit int) Query

	// ClassifyType maps a declared column type to its coarse category.
	ClassifyType(dataType string) models.TypeCategory
	// QuoteIdent quotes an identifier for safe interpolation.
	QuoteIdent(name string) string
}

// New returns the adapter for the given dialect.
func New(d models.Dialect) (Adapter, error) {
	switch d {
	case models.DialectPostgres:
		return &postgresAdapter{}, nil
	case models.DialectMySQL:
		return &mysqlAdapter{}, nil
	case models.DialectClickHouse:
		return &clickhouseAdapter{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownDialect, d)
	}
}

// qualify joins a quoted schema and table name.
func qualify(a Adapter, schema, table string) string {
	return a.QuoteIdent(schema) + "." + a.QuoteIdent(table)
}
