package dialect

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yugui923/db-connect-mcp/pkg/apperrors"
	"github.com/yugui923/db-connect-mcp/pkg/models"
)

func TestNew(t *testing.T) {
	for _, d := range []models.Dialect{models.DialectPostgres, models.DialectMySQL, models.DialectClickHouse} {
		a, err := New(d)
		require.NoError(t, err)
		assert.Equal(t, d, a.Dialect())
	}

	_, err := New(models.Dialect("oracle"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnknownDialect))
}

func TestCapabilities(t *testing.T) {
	tests := []struct {
		dialect models.Dialect
		want    models.Capabilities
	}{
		{models.DialectPostgres, models.Capabilities{
			ForeignKeys: true, Indexes: true, Constraints: true,
			Sampling: models.SamplingLimitOnly, Statistics: models.StatisticsFull,
		}},
		{models.DialectMySQL, models.Capabilities{
			ForeignKeys: true, Indexes: true, Constraints: true,
			Sampling: models.SamplingOrderByRandom, Statistics: models.StatisticsPartial,
		}},
		{models.DialectClickHouse, models.Capabilities{
			ForeignKeys: false, Indexes: true, Constraints: false,
			Sampling: models.SamplingNative, Statistics: models.StatisticsFull,
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.dialect), func(t *testing.T) {
			a, err := New(tt.dialect)
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.Capabilities())
		})
	}
}

func TestClickHouseUnsupportedQueries(t *testing.T) {
	a, err := New(models.DialectClickHouse)
	require.NoError(t, err)

	assert.Empty(t, a.ForeignKeyQuery("events", "").SQL)
	assert.Empty(t, a.ConstraintQuery("events", "hits").SQL)
}

func TestSampleQuery(t *testing.T) {
	tests := []struct {
		dialect  models.Dialect
		fragment string
		method   string
	}{
		{models.DialectPostgres, "LIMIT 50", models.SamplingLimitOnly},
		{models.DialectMySQL, "ORDER BY RAND() LIMIT 50", models.SamplingOrderByRandom},
		{models.DialectClickHouse, "SAMPLE 0.01 LIMIT 50", models.SamplingNative},
	}

	for _, tt := range tests {
		t.Run(string(tt.dialect), func(t *testing.T) {
			a, err := New(tt.dialect)
			require.NoError(t, err)

			q, method := a.SampleQuery("shop", "orders", 50)
			assert.Contains(t, q.SQL, tt.fragment)
			assert.Equal(t, tt.method, method)
		})
	}
}

func TestQuoteIdent(t *testing.T) {
	pg, _ := New(models.DialectPostgres)
	my, _ := New(models.DialectMySQL)
	ch, _ := New(models.DialectClickHouse)

	assert.Equal(t, `"orders"`, pg.QuoteIdent("orders"))
	assert.Equal(t, `"bad""name"`, pg.QuoteIdent(`bad"name`))
	assert.Equal(t, "`orders`", my.QuoteIdent("orders"))
	assert.Equal(t, "`bad``name`", my.QuoteIdent("bad`name"))
	assert.Equal(t, "`orders`", ch.QuoteIdent("orders"))
}

func TestClassifyType(t *testing.T) {
	tests := []struct {
		dialect  models.Dialect
		dataType string
		want     models.TypeCategory
	}{
		{models.DialectPostgres, "integer", models.TypeNumeric},
		{models.DialectPostgres, "double precision", models.TypeNumeric},
		{models.DialectPostgres, "NUMERIC", models.TypeNumeric},
		{models.DialectPostgres, "character varying", models.TypeText},
		{models.DialectPostgres, "text", models.TypeText},
		{models.DialectPostgres, "uuid", models.TypeText},
		{models.DialectPostgres, "timestamp with time zone", models.TypeTemporal},
		{models.DialectPostgres, "date", models.TypeTemporal},
		{models.DialectPostgres, "boolean", models.TypeBoolean},
		{models.DialectPostgres, "jsonb", models.TypeOther},
		{models.DialectPostgres, "bytea", models.TypeOther},

		{models.DialectMySQL, "int", models.TypeNumeric},
		{models.DialectMySQL, "decimal", models.TypeNumeric},
		{models.DialectMySQL, "varchar", models.TypeText},
		{models.DialectMySQL, "longtext", models.TypeText},
		{models.DialectMySQL, "enum", models.TypeText},
		{models.DialectMySQL, "datetime", models.TypeTemporal},
		{models.DialectMySQL, "year", models.TypeTemporal},
		{models.DialectMySQL, "blob", models.TypeOther},
		{models.DialectMySQL, "json", models.TypeOther},

		{models.DialectClickHouse, "UInt64", models.TypeNumeric},
		{models.DialectClickHouse, "Float32", models.TypeNumeric},
		{models.DialectClickHouse, "Decimal(18, 4)", models.TypeNumeric},
		{models.DialectClickHouse, "Nullable(Int32)", models.TypeNumeric},
		{models.DialectClickHouse, "LowCardinality(String)", models.TypeText},
		{models.DialectClickHouse, "Nullable(LowCardinality(String))", models.TypeText},
		{models.DialectClickHouse, "String", models.TypeText},
		{models.DialectClickHouse, "Enum8('a' = 1)", models.TypeText},
		{models.DialectClickHouse, "DateTime64(3)", models.TypeTemporal},
		{models.DialectClickHouse, "Date", models.TypeTemporal},
		{models.DialectClickHouse, "Bool", models.TypeBoolean},
		{models.DialectClickHouse, "Array(String)", models.TypeOther},
	}

	for _, tt := range tests {
		t.Run(string(tt.dialect)+"/"+tt.dataType, func(t *testing.T) {
			a, err := New(tt.dialect)
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.ClassifyType(tt.dataType))
		})
	}
}

func TestForeignKeyQueryScope(t *testing.T) {
	t.Run("postgres schema-wide omits table filter", func(t *testing.T) {
		a, _ := New(models.DialectPostgres)
		q := a.ForeignKeyQuery("public", "")
		assert.NotContains(t, q.SQL, "tc.table_name = $2")
		assert.Len(t, q.Args, 1)
	})

	t.Run("postgres single table adds filter", func(t *testing.T) {
		a, _ := New(models.DialectPostgres)
		q := a.ForeignKeyQuery("public", "orders")
		assert.Contains(t, q.SQL, "tc.table_name = $2")
		assert.Len(t, q.Args, 2)
	})

	t.Run("mysql placeholder count matches args", func(t *testing.T) {
		a, _ := New(models.DialectMySQL)
		q := a.ForeignKeyQuery("shop", "orders")
		assert.Equal(t, strings.Count(q.SQL, "?"), len(q.Args))
	})
}

func TestStatsQueryShapes(t *testing.T) {
	t.Run("postgres numeric includes percentiles", func(t *testing.T) {
		a, _ := New(models.DialectPostgres)
		q := a.NumericStatsQuery("public", "orders", "total")
		assert.Contains(t, q.SQL, "percentile_cont(0.25)")
		assert.Contains(t, q.SQL, "percentile_cont(0.99)")
	})

	t.Run("mysql numeric has no percentiles", func(t *testing.T) {
		a, _ := New(models.DialectMySQL)
		q := a.NumericStatsQuery("shop", "orders", "total")
		assert.NotContains(t, q.SQL, "percentile")
		assert.Contains(t, q.SQL, "STD(")
	})

	t.Run("clickhouse numeric uses quantile", func(t *testing.T) {
		a, _ := New(models.DialectClickHouse)
		q := a.NumericStatsQuery("events", "hits", "duration")
		assert.Contains(t, q.SQL, "quantile(0.5)")
	})

	t.Run("text stats order frequency then value", func(t *testing.T) {
		for _, d := range []models.Dialect{models.DialectPostgres, models.DialectMySQL, models.DialectClickHouse} {
			a, _ := New(d)
			q := a.TextStatsQuery("s", "t", "c", 10)
			assert.Contains(t, q.SQL, "ORDER BY frequency DESC", string(d))
			assert.Contains(t, q.SQL, "LIMIT 10", string(d))
		}
	})
}

func TestExplainQuery(t *testing.T) {
	pg, _ := New(models.DialectPostgres)
	q, format := pg.ExplainQuery("SELECT 1")
	assert.Equal(t, "EXPLAIN (FORMAT JSON) SELECT 1", q.SQL)
	assert.Equal(t, "json", format)

	my, _ := New(models.DialectMySQL)
	q, format = my.ExplainQuery("SELECT 1")
	assert.Equal(t, "EXPLAIN FORMAT=JSON SELECT 1", q.SQL)
	assert.Equal(t, "json", format)

	ch, _ := New(models.DialectClickHouse)
	q, format = ch.ExplainQuery("SELECT 1")
	assert.Equal(t, "EXPLAIN SELECT 1", q.SQL)
	assert.Equal(t, "text", format)
}
