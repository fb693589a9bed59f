package dialect

import (
	"fmt"
	"strings"

	"github.com/yugui923/db-connect-mcp/pkg/models"
)

type mysqlAdapter struct{}

func (a *mysqlAdapter) Dialect() models.Dialect { return models.DialectMySQL }

func (a *mysqlAdapter) Capabilities() models.Capabilities {
	return models.Capabilities{
		ForeignKeys: true,
		Indexes:     true,
		Constraints: true,
		Sampling:    models.SamplingOrderByRandom,
		Statistics:  models.StatisticsPartial,
	}
}

// DefaultSchema is empty: the catalog queries fall back to DATABASE(), the
// database selected by the connection URL.
func (a *mysqlAdapter) DefaultSchema() string { return "" }

func (a *mysqlAdapter) SystemSchemas() map[string]bool {
	return map[string]bool{
		"information_schema": true,
		"mysql":              true,
		"performance_schema": true,
		"sys":                true,
	}
}

// currentSchema resolves an empty schema argument to the connection's
// default database inside the query itself.
const mysqlCurrentSchema = `COALESCE(NULLIF(?, ''), DATABASE())`

func (a *mysqlAdapter) DatabaseInfoQuery() Query {
	return Query{SQL: `SELECT VERSION(), DATABASE(), CURRENT_USER()`}
}

func (a *mysqlAdapter) SchemaQuery() Query {
	return Query{SQL: `
		SELECT schema_name
		FROM information_schema.SCHEMATA
		ORDER BY schema_name`}
}

func (a *mysqlAdapter) TableQuery(schema string) Query {
	return Query{
		SQL: `
			SELECT table_schema, table_name,
			       CASE WHEN table_type = 'VIEW' THEN 'view' ELSE 'table' END
			FROM information_schema.TABLES
			WHERE table_schema = ` + mysqlCurrentSchema + `
			ORDER BY table_name`,
		Args: []any{schema},
	}
}

func (a *mysqlAdapter) ColumnQuery(schema, table string) Query {
	return Query{
		SQL: `
			SELECT column_name, data_type,
			       is_nullable = 'YES',
			       column_default,
			       ordinal_position,
			       NULLIF(column_comment, '')
			FROM information_schema.COLUMNS
			WHERE table_schema = ` + mysqlCurrentSchema + ` AND table_name = ?
			ORDER BY ordinal_position`,
		Args: []any{schema, table},
	}
}

func (a *mysqlAdapter) IndexQuery(schema, table string) Query {
	return Query{
		SQL: `
			SELECT index_name,
			       GROUP_CONCAT(column_name ORDER BY seq_in_index),
			       MIN(non_unique) = 0,
			       MIN(index_type)
			FROM information_schema.STATISTICS
			WHERE table_schema = ` + mysqlCurrentSchema + ` AND table_name = ?
			GROUP BY index_name
			ORDER BY index_name`,
		Args: []any{schema, table},
	}
}

func (a *mysqlAdapter) ConstraintQuery(schema, table string) Query {
	return Query{
		SQL: `
			SELECT tc.constraint_name, tc.constraint_type,
			       COALESCE(GROUP_CONCAT(kcu.column_name ORDER BY kcu.ordinal_position), '')
			FROM information_schema.TABLE_CONSTRAINTS tc
			LEFT JOIN information_schema.KEY_COLUMN_USAGE kcu
			     ON kcu.constraint_schema = tc.constraint_schema
			     AND kcu.constraint_name = tc.constraint_name
			     AND kcu.table_name = tc.table_name
			WHERE tc.table_schema = ` + mysqlCurrentSchema + ` AND tc.table_name = ?
			GROUP BY tc.constraint_name, tc.constraint_type
			ORDER BY tc.constraint_name`,
		Args: []any{schema, table},
	}
}

func (a *mysqlAdapter) ForeignKeyQuery(schema, table string) Query {
	sql := `
		SELECT constraint_name,
		       table_schema, table_name, column_name,
		       referenced_table_schema, referenced_table_name, referenced_column_name
		FROM information_schema.KEY_COLUMN_USAGE
		WHERE referenced_table_name IS NOT NULL
		  AND table_schema = ` + mysqlCurrentSchema
	args := []any{schema}
	if table != "" {
		sql += ` AND table_name = ?`
		args = append(args, table)
	}
	sql += `
		ORDER BY table_name, constraint_name, ordinal_position`
	return Query{SQL: sql, Args: args}
}

func (a *mysqlAdapter) EnrichTableQuery(schema, table string) Query {
	return Query{
		SQL: `
			SELECT COALESCE(table_rows, 0),
			       COALESCE(data_length + index_length, 0),
			       NULLIF(table_comment, '')
			FROM information_schema.TABLES
			WHERE table_schema = ` + mysqlCurrentSchema + ` AND table_name = ?`,
		Args: []any{schema, table},
	}
}

func (a *mysqlAdapter) SampleQuery(schema, table string, limit int) (Query, string) {
	sql := fmt.Sprintf(`SELECT * FROM %s ORDER BY RAND() LIMIT %d`, qualify(a, schema, table), limit)
	return Query{SQL: sql}, models.SamplingOrderByRandom
}

func (a *mysqlAdapter) BaseStatsQuery(schema, table, column string) Query {
	col := a.QuoteIdent(column)
	return Query{SQL: fmt.Sprintf(`
		SELECT COUNT(*),
		       COUNT(*) - COUNT(%[1]s),
		       COUNT(DISTINCT %[1]s)
		FROM %[2]s`, col, qualify(a, schema, table))}
}

func (a *mysqlAdapter) NumericStatsQuery(schema, table, column string) Query {
	col := a.QuoteIdent(column)
	return Query{SQL: fmt.Sprintf(`
		SELECT CAST(AVG(%[1]s) AS DOUBLE),
		       CAST(STD(%[1]s) AS DOUBLE),
		       CAST(MIN(%[1]s) AS DOUBLE),
		       CAST(MAX(%[1]s) AS DOUBLE)
		FROM %[2]s
		WHERE %[1]s IS NOT NULL`, col, qualify(a, schema, table))}
}

func (a *mysqlAdapter) TextStatsQuery(schema, table, column string, topK int) Query {
	col := a.QuoteIdent(column)
	return Query{SQL: fmt.Sprintf(`
		SELECT CAST(%[1]s AS CHAR) AS value, COUNT(*) AS frequency
		FROM %[2]s
		WHERE %[1]s IS NOT NULL
		GROUP BY %[1]s
		ORDER BY frequency DESC, value
		LIMIT %[3]d`, col, qualify(a, schema, table), topK)}
}

func (a *mysqlAdapter) ExplainQuery(sql string) (Query, string) {
	return Query{SQL: "EXPLAIN FORMAT=JSON " + sql}, "json"
}

func (a *mysqlAdapter) ProfileSchemaQuery() Query {
	return Query{SQL: `
		SELECT table_schema,
		       COUNT(*),
		       COALESCE(SUM(data_length + index_length), 0)
		FROM information_schema.TABLES
		WHERE table_schema NOT IN ('information_schema', 'mysql', 'performance_schema', 'sys')
		  AND table_type = 'BASE TABLE'
		GROUP BY table_schema
		ORDER BY table_schema`}
}

func (a *mysqlAdapter) ProfileTablesQuery(limit int) Query {
	return Query{SQL: fmt.Sprintf(`
		SELECT table_schema, table_name,
		       COALESCE(data_length + index_length, 0) AS size_bytes,
		       COALESCE(table_rows, 0)
		FROM information_schema.TABLES
		WHERE table_schema NOT IN ('information_schema', 'mysql', 'performance_schema', 'sys')
		  AND table_type = 'BASE TABLE'
		ORDER BY size_bytes DESC
		LIMIT %d`, limit)}
}

var mysqlNumericTypes = map[string]bool{
	"tinyint": true, "smallint": true, "mediumint": true,
	"int": true, "integer": true, "bigint": true,
	"decimal": true, "numeric": true,
	"float": true, "double": true, "real": true,
}

var mysqlTemporalTypes = map[string]bool{
	"date": true, "datetime": true, "timestamp": true,
	"time": true, "year": true,
}

func (a *mysqlAdapter) ClassifyType(dataType string) models.TypeCategory {
	dt := strings.ToLower(strings.TrimSpace(dataType))
	switch {
	case mysqlNumericTypes[dt]:
		return models.TypeNumeric
	case dt == "bool" || dt == "boolean":
		return models.TypeBoolean
	case mysqlTemporalTypes[dt]:
		return models.TypeTemporal
	case strings.Contains(dt, "char") || strings.Contains(dt, "text") ||
		dt == "enum" || dt == "set":
		return models.TypeText
	default:
		return models.TypeOther
	}
}

func (a *mysqlAdapter) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
