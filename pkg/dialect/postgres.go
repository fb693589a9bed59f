package dialect

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/yugui923/db-connect-mcp/pkg/models"
)

type postgresAdapter struct{}

func (a *postgresAdapter) Dialect() models.Dialect { return models.DialectPostgres }

func (a *postgresAdapter) Capabilities() models.Capabilities {
	return models.Capabilities{
		ForeignKeys: true,
		Indexes:     true,
		Constraints: true,
		Sampling:    models.SamplingLimitOnly,
		Statistics:  models.StatisticsFull,
	}
}

func (a *postgresAdapter) DefaultSchema() string { return "public" }

func (a *postgresAdapter) SystemSchemas() map[string]bool {
	return map[string]bool{
		"information_schema": true,
		"pg_catalog":         true,
		"pg_toast":           true,
	}
}

func (a *postgresAdapter) DatabaseInfoQuery() Query {
	return Query{SQL: `SELECT version(), current_database(), current_user`}
}

func (a *postgresAdapter) SchemaQuery() Query {
	return Query{SQL: `
		SELECT schema_name
		FROM information_schema.schemata
		ORDER BY schema_name`}
}

func (a *postgresAdapter) TableQuery(schema string) Query {
	return Query{
		SQL: `
			SELECT table_schema, table_name,
			       CASE table_type WHEN 'VIEW' THEN 'view' ELSE 'table' END
			FROM information_schema.tables
			WHERE table_schema = $1
			ORDER BY table_name`,
		Args: []any{schema},
	}
}

func (a *postgresAdapter) ColumnQuery(schema, table string) Query {
	return Query{
		SQL: `
			SELECT c.column_name,
			       c.data_type,
			       c.is_nullable = 'YES',
			       c.column_default,
			       c.ordinal_position,
			       col_description(format('%I.%I', c.table_schema, c.table_name)::regclass, c.ordinal_position)
			FROM information_schema.columns c
			WHERE c.table_schema = $1 AND c.table_name = $2
			ORDER BY c.ordinal_position`,
		Args: []any{schema, table},
	}
}

func (a *postgresAdapter) IndexQuery(schema, table string) Query {
	return Query{
		SQL: `
			SELECT i.relname,
			       string_agg(att.attname, ',' ORDER BY k.ord),
			       ix.indisunique,
			       am.amname
			FROM pg_index ix
			JOIN pg_class t ON t.oid = ix.indrelid
			JOIN pg_namespace n ON n.oid = t.relnamespace
			JOIN pg_class i ON i.oid = ix.indexrelid
			JOIN pg_am am ON am.oid = i.relam
			CROSS JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS k(attnum, ord)
			JOIN pg_attribute att ON att.attrelid = t.oid AND att.attnum = k.attnum
			WHERE n.nspname = $1 AND t.relname = $2
			GROUP BY i.relname, ix.indisunique, am.amname
			ORDER BY i.relname`,
		Args: []any{schema, table},
	}
}

func (a *postgresAdapter) ConstraintQuery(schema, table string) Query {
	return Query{
		SQL: `
			SELECT con.conname,
			       CASE con.contype
			            WHEN 'p' THEN 'PRIMARY KEY'
			            WHEN 'u' THEN 'UNIQUE'
			            WHEN 'f' THEN 'FOREIGN KEY'
			            WHEN 'c' THEN 'CHECK'
			            ELSE upper(con.contype::text)
			       END,
			       coalesce(string_agg(att.attname, ',' ORDER BY k.ord), '')
			FROM pg_constraint con
			JOIN pg_class t ON t.oid = con.conrelid
			JOIN pg_namespace n ON n.oid = t.relnamespace
			LEFT JOIN LATERAL unnest(con.conkey) WITH ORDINALITY AS k(attnum, ord) ON true
			LEFT JOIN pg_attribute att ON att.attrelid = t.oid AND att.attnum = k.attnum
			WHERE n.nspname = $1 AND t.relname = $2
			GROUP BY con.conname, con.contype
			ORDER BY con.conname`,
		Args: []any{schema, table},
	}
}

func (a *postgresAdapter) ForeignKeyQuery(schema, table string) Query {
	sql := `
		SELECT tc.constraint_name,
		       tc.table_schema, tc.table_name, kcu.column_name,
		       ccu.table_schema, ccu.table_name, ccu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		     ON kcu.constraint_name = tc.constraint_name
		     AND kcu.table_schema = tc.table_schema
		JOIN information_schema.constraint_column_usage ccu
		     ON ccu.constraint_name = tc.constraint_name
		     AND ccu.constraint_schema = tc.constraint_schema
		WHERE tc.constraint_type = 'FOREIGN KEY' AND tc.table_schema = $1`
	args := []any{schema}
	if table != "" {
		sql += ` AND tc.table_name = $2`
		args = append(args, table)
	}
	sql += `
		ORDER BY tc.table_name, tc.constraint_name, kcu.ordinal_position`
	return Query{SQL: sql, Args: args}
}

func (a *postgresAdapter) EnrichTableQuery(schema, table string) Query {
	return Query{
		SQL: `
			SELECT greatest(c.reltuples, 0)::bigint,
			       pg_total_relation_size(c.oid),
			       obj_description(c.oid)
			FROM pg_class c
			JOIN pg_namespace n ON n.oid = c.relnamespace
			WHERE n.nspname = $1 AND c.relname = $2`,
		Args: []any{schema, table},
	}
}

func (a *postgresAdapter) SampleQuery(schema, table string, limit int) (Query, string) {
	sql := fmt.Sprintf(`SELECT * FROM %s LIMIT %d`, qualify(a, schema, table), limit)
	return Query{SQL: sql}, models.SamplingLimitOnly
}

func (a *postgresAdapter) BaseStatsQuery(schema, table, column string) Query {
	col := a.QuoteIdent(column)
	return Query{SQL: fmt.Sprintf(`
		SELECT COUNT(*)::bigint,
		       COUNT(*) FILTER (WHERE %s IS NULL)::bigint,
		       COUNT(DISTINCT %s)::bigint
		FROM %s`, col, col, qualify(a, schema, table))}
}

func (a *postgresAdapter) NumericStatsQuery(schema, table, column string) Query {
	col := a.QuoteIdent(column)
	return Query{SQL: fmt.Sprintf(`
		SELECT AVG(%[1]s)::float8,
		       STDDEV(%[1]s)::float8,
		       MIN(%[1]s)::float8,
		       MAX(%[1]s)::float8,
		       percentile_cont(0.25) WITHIN GROUP (ORDER BY %[1]s)::float8,
		       percentile_cont(0.5)  WITHIN GROUP (ORDER BY %[1]s)::float8,
		       percentile_cont(0.75) WITHIN GROUP (ORDER BY %[1]s)::float8,
		       percentile_cont(0.95) WITHIN GROUP (ORDER BY %[1]s)::float8,
		       percentile_cont(0.99) WITHIN GROUP (ORDER BY %[1]s)::float8
		FROM %[2]s
		WHERE %[1]s IS NOT NULL`, col, qualify(a, schema, table))}
}

func (a *postgresAdapter) TextStatsQuery(schema, table, column string, topK int) Query {
	col := a.QuoteIdent(column)
	return Query{SQL: fmt.Sprintf(`
		SELECT %[1]s::text, COUNT(*)::bigint AS frequency
		FROM %[2]s
		WHERE %[1]s IS NOT NULL
		GROUP BY %[1]s
		ORDER BY frequency DESC, %[1]s
		LIMIT %[3]d`, col, qualify(a, schema, table), topK)}
}

func (a *postgresAdapter) ExplainQuery(sql string) (Query, string) {
	return Query{SQL: "EXPLAIN (FORMAT JSON) " + sql}, "json"
}

func (a *postgresAdapter) ProfileSchemaQuery() Query {
	return Query{SQL: `
		SELECT n.nspname,
		       COUNT(c.oid)::bigint,
		       COALESCE(SUM(pg_total_relation_size(c.oid)), 0)::bigint
		FROM pg_namespace n
		LEFT JOIN pg_class c ON c.relnamespace = n.oid AND c.relkind IN ('r', 'm', 'p')
		WHERE n.nspname NOT IN ('information_schema', 'pg_catalog', 'pg_toast')
		GROUP BY n.nspname
		ORDER BY n.nspname`}
}

func (a *postgresAdapter) ProfileTablesQuery(limit int) Query {
	return Query{SQL: fmt.Sprintf(`
		SELECT n.nspname, c.relname,
		       pg_total_relation_size(c.oid),
		       greatest(c.reltuples, 0)::bigint
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relkind IN ('r', 'm', 'p')
		  AND n.nspname NOT IN ('information_schema', 'pg_catalog', 'pg_toast')
		ORDER BY pg_total_relation_size(c.oid) DESC
		LIMIT %d`, limit)}
}

var postgresNumericTypes = map[string]bool{
	"smallint": true, "integer": true, "bigint": true,
	"numeric": true, "decimal": true, "real": true,
	"double precision": true, "money": true,
	"smallserial": true, "serial": true, "bigserial": true,
}

func (a *postgresAdapter) ClassifyType(dataType string) models.TypeCategory {
	dt := strings.ToLower(strings.TrimSpace(dataType))
	switch {
	case postgresNumericTypes[dt]:
		return models.TypeNumeric
	case dt == "boolean":
		return models.TypeBoolean
	case strings.HasPrefix(dt, "timestamp") || strings.HasPrefix(dt, "time") ||
		dt == "date" || dt == "interval":
		return models.TypeTemporal
	case strings.Contains(dt, "char") || dt == "text" || dt == "citext" ||
		dt == "uuid" || dt == "name":
		return models.TypeText
	default:
		return models.TypeOther
	}
}

func (a *postgresAdapter) QuoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}
