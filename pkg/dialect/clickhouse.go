package dialect

import (
	"fmt"
	"strings"

	"github.com/yugui923/db-connect-mcp/pkg/models"
)

type clickhouseAdapter struct{}

func (a *clickhouseAdapter) Dialect() models.Dialect { return models.DialectClickHouse }

func (a *clickhouseAdapter) Capabilities() models.Capabilities {
	return models.Capabilities{
		ForeignKeys: false,
		Indexes:     true,
		Constraints: false,
		Sampling:    models.SamplingNative,
		Statistics:  models.StatisticsFull,
	}
}

// DefaultSchema is empty: the catalog queries fall back to currentDatabase().
func (a *clickhouseAdapter) DefaultSchema() string { return "" }

func (a *clickhouseAdapter) SystemSchemas() map[string]bool {
	return map[string]bool{
		"information_schema": true,
		"INFORMATION_SCHEMA": true,
		"system":             true,
	}
}

const chCurrentSchema = `if(? = '', currentDatabase(), ?)`

// chSchemaArgs duplicates the schema argument for the two placeholders in
// chCurrentSchema.
func chSchemaArgs(schema string, rest ...any) []any {
	return append([]any{schema, schema}, rest...)
}

func (a *clickhouseAdapter) DatabaseInfoQuery() Query {
	return Query{SQL: `SELECT version(), currentDatabase(), currentUser()`}
}

func (a *clickhouseAdapter) SchemaQuery() Query {
	return Query{SQL: `SELECT name FROM system.databases ORDER BY name`}
}

func (a *clickhouseAdapter) TableQuery(schema string) Query {
	return Query{
		SQL: `
			SELECT database, name,
			       if(engine IN ('View', 'MaterializedView', 'LiveView'), 'view', 'table')
			FROM system.tables
			WHERE database = ` + chCurrentSchema + `
			ORDER BY name`,
		Args: chSchemaArgs(schema),
	}
}

func (a *clickhouseAdapter) ColumnQuery(schema, table string) Query {
	return Query{
		SQL: `
			SELECT name, type,
			       startsWith(type, 'Nullable('),
			       nullIf(default_expression, ''),
			       position,
			       nullIf(comment, '')
			FROM system.columns
			WHERE database = ` + chCurrentSchema + ` AND table = ?
			ORDER BY position`,
		Args: chSchemaArgs(schema, table),
	}
}

// IndexQuery reports data-skipping indices. Uniqueness does not apply.
func (a *clickhouseAdapter) IndexQuery(schema, table string) Query {
	return Query{
		SQL: `
			SELECT name, expr, false, type
			FROM system.data_skipping_indices
			WHERE database = ` + chCurrentSchema + ` AND table = ?
			ORDER BY name`,
		Args: chSchemaArgs(schema, table),
	}
}

func (a *clickhouseAdapter) ConstraintQuery(schema, table string) Query {
	return Query{}
}

func (a *clickhouseAdapter) ForeignKeyQuery(schema, table string) Query {
	return Query{}
}

func (a *clickhouseAdapter) EnrichTableQuery(schema, table string) Query {
	return Query{
		SQL: `
			SELECT coalesce(total_rows, 0),
			       coalesce(total_bytes, 0),
			       nullIf(comment, '')
			FROM system.tables
			WHERE database = ` + chCurrentSchema + ` AND name = ?`,
		Args: chSchemaArgs(schema, table),
	}
}

func (a *clickhouseAdapter) SampleQuery(schema, table string, limit int) (Query, string) {
	sql := fmt.Sprintf(`SELECT * FROM %s SAMPLE 0.01 LIMIT %d`, qualify(a, schema, table), limit)
	return Query{SQL: sql}, models.SamplingNative
}

func (a *clickhouseAdapter) BaseStatsQuery(schema, table, column string) Query {
	col := a.QuoteIdent(column)
	return Query{SQL: fmt.Sprintf(`
		SELECT toInt64(count()),
		       toInt64(countIf(isNull(%[1]s))),
		       toInt64(uniqExact(%[1]s))
		FROM %[2]s`, col, qualify(a, schema, table))}
}

func (a *clickhouseAdapter) NumericStatsQuery(schema, table, column string) Query {
	col := a.QuoteIdent(column)
	return Query{SQL: fmt.Sprintf(`
		SELECT toFloat64(avg(%[1]s)),
		       toFloat64(stddevPop(%[1]s)),
		       toFloat64(min(%[1]s)),
		       toFloat64(max(%[1]s)),
		       toFloat64(quantile(0.25)(%[1]s)),
		       toFloat64(quantile(0.5)(%[1]s)),
		       toFloat64(quantile(0.75)(%[1]s)),
		       toFloat64(quantile(0.95)(%[1]s)),
		       toFloat64(quantile(0.99)(%[1]s))
		FROM %[2]s
		WHERE isNotNull(%[1]s)`, col, qualify(a, schema, table))}
}

func (a *clickhouseAdapter) TextStatsQuery(schema, table, column string, topK int) Query {
	col := a.QuoteIdent(column)
	return Query{SQL: fmt.Sprintf(`
		SELECT toString(%[1]s) AS value, toInt64(count()) AS frequency
		FROM %[2]s
		WHERE isNotNull(%[1]s)
		GROUP BY value
		ORDER BY frequency DESC, value
		LIMIT %[3]d`, col, qualify(a, schema, table), topK)}
}

func (a *clickhouseAdapter) ExplainQuery(sql string) (Query, string) {
	return Query{SQL: "EXPLAIN " + sql}, "text"
}

func (a *clickhouseAdapter) ProfileSchemaQuery() Query {
	return Query{SQL: `
		SELECT database,
		       toInt64(count()),
		       toInt64(coalesce(sum(total_bytes), 0))
		FROM system.tables
		WHERE database NOT IN ('system', 'information_schema', 'INFORMATION_SCHEMA')
		GROUP BY database
		ORDER BY database`}
}

func (a *clickhouseAdapter) ProfileTablesQuery(limit int) Query {
	return Query{SQL: fmt.Sprintf(`
		SELECT database, name,
		       toInt64(coalesce(total_bytes, 0)) AS size_bytes,
		       toInt64(coalesce(total_rows, 0))
		FROM system.tables
		WHERE database NOT IN ('system', 'information_schema', 'INFORMATION_SCHEMA')
		ORDER BY size_bytes DESC
		LIMIT %d`, limit)}
}

func (a *clickhouseAdapter) ClassifyType(dataType string) models.TypeCategory {
	dt := strings.TrimSpace(dataType)
	// Unwrap type modifiers so Nullable(LowCardinality(String)) classifies
	// the same as String.
	for {
		if strings.HasPrefix(dt, "Nullable(") && strings.HasSuffix(dt, ")") {
			dt = dt[len("Nullable(") : len(dt)-1]
			continue
		}
		if strings.HasPrefix(dt, "LowCardinality(") && strings.HasSuffix(dt, ")") {
			dt = dt[len("LowCardinality(") : len(dt)-1]
			continue
		}
		break
	}
	switch {
	case strings.HasPrefix(dt, "Int") || strings.HasPrefix(dt, "UInt") ||
		strings.HasPrefix(dt, "Float") || strings.HasPrefix(dt, "Decimal"):
		return models.TypeNumeric
	case dt == "Bool":
		return models.TypeBoolean
	case strings.HasPrefix(dt, "DateTime") || strings.HasPrefix(dt, "Date"):
		return models.TypeTemporal
	case dt == "String" || strings.HasPrefix(dt, "FixedString") ||
		strings.HasPrefix(dt, "Enum") || dt == "UUID" || dt == "IPv4" || dt == "IPv6":
		return models.TypeText
	default:
		return models.TypeOther
	}
}

func (a *clickhouseAdapter) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
