package inspector

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yugui923/db-connect-mcp/pkg/apperrors"
	"github.com/yugui923/db-connect-mcp/pkg/dialect"
	"github.com/yugui923/db-connect-mcp/pkg/models"
)

// fakeQuerier routes queries to scripted responses by substring match.
type fakeQuerier struct {
	routes  []route
	queries []string
}

type route struct {
	contains string
	rows     *models.Rows
	err      error
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (*models.Rows, error) {
	f.queries = append(f.queries, sql)
	for _, r := range f.routes {
		if strings.Contains(sql, r.contains) {
			return r.rows, r.err
		}
	}
	return &models.Rows{}, nil
}

func newInspector(t *testing.T, d models.Dialect, fq *fakeQuerier) *Inspector {
	t.Helper()
	a, err := dialect.New(d)
	require.NoError(t, err)
	return New(fq, a, nil)
}

func TestDatabaseInfo(t *testing.T) {
	fq := &fakeQuerier{routes: []route{
		{contains: "version()", rows: &models.Rows{
			Columns: []string{"version", "current_database", "current_user"},
			Values:  [][]any{{"PostgreSQL 16.2", "shop", "probe"}},
		}},
	}}
	insp := newInspector(t, models.DialectPostgres, fq)

	info, err := insp.DatabaseInfo(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.DialectPostgres, info.Dialect)
	assert.Equal(t, "PostgreSQL 16.2", info.Version)
	assert.Equal(t, "shop", info.DatabaseName)
	assert.Equal(t, "probe", info.Username)
	assert.True(t, info.Capabilities.ForeignKeys)
	assert.Equal(t, models.StatisticsFull, info.Capabilities.Statistics)
}

func TestListSchemas_FiltersSystemSchemas(t *testing.T) {
	fq := &fakeQuerier{routes: []route{
		{contains: "schemata", rows: &models.Rows{
			Columns: []string{"schema_name"},
			Values: [][]any{
				{"information_schema"}, {"pg_catalog"}, {"public"}, {"reporting"},
			},
		}},
	}}
	insp := newInspector(t, models.DialectPostgres, fq)

	schemas, err := insp.ListSchemas(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, schemas, 2)
	assert.Equal(t, "public", schemas[0].Name)
	assert.Equal(t, "reporting", schemas[1].Name)
	assert.False(t, schemas[0].IsSystem)

	all, err := insp.ListSchemas(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.True(t, all[0].IsSystem)
}

func TestListTables(t *testing.T) {
	fq := &fakeQuerier{routes: []route{
		{contains: "information_schema.tables", rows: &models.Rows{
			Columns: []string{"table_schema", "table_name", "type"},
			Values: [][]any{
				{"public", "orders", "table"},
				{"public", "order_totals", "view"},
			},
		}},
		{contains: "pg_total_relation_size", rows: &models.Rows{
			Columns: []string{"row_count", "size_bytes", "comment"},
			Values:  [][]any{{int64(1200), int64(65536), "customer orders"}},
		}},
	}}
	insp := newInspector(t, models.DialectPostgres, fq)

	tables, err := insp.ListTables(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, tables, 2)

	require.NotNil(t, tables[0].RowCount)
	assert.Equal(t, int64(1200), *tables[0].RowCount)
	require.NotNil(t, tables[0].SizeBytes)
	assert.Equal(t, int64(65536), *tables[0].SizeBytes)
	require.NotNil(t, tables[0].Comment)
	assert.Equal(t, "customer orders", *tables[0].Comment)

	// Views are not enriched.
	assert.Nil(t, tables[1].RowCount)
	assert.Nil(t, tables[1].SizeBytes)
}

func TestDescribeTable_OrdersScenario(t *testing.T) {
	fq := &fakeQuerier{routes: []route{
		{contains: "information_schema.columns", rows: &models.Rows{
			Columns: []string{"name", "data_type", "is_nullable", "default", "ordinal", "comment"},
			Values: [][]any{
				{"id", "bigint", false, "nextval('orders_id_seq')", int64(1), nil},
				{"customer_id", "bigint", false, nil, int64(2), nil},
				{"total", "numeric", true, nil, int64(3), "gross amount"},
			},
		}},
		{contains: "pg_index", rows: &models.Rows{
			Columns: []string{"name", "columns", "is_unique", "type"},
			Values:  [][]any{{"orders_pkey", "id", true, "btree"}},
		}},
		{contains: "pg_constraint", rows: &models.Rows{
			Columns: []string{"name", "type", "columns"},
			Values: [][]any{
				{"orders_customer_id_fkey", "FOREIGN KEY", "customer_id"},
				{"orders_pkey", "PRIMARY KEY", "id"},
			},
		}},
		{contains: "FOREIGN KEY", rows: &models.Rows{
			Columns: []string{"constraint", "schema", "table", "column", "ref_schema", "ref_table", "ref_column"},
			Values: [][]any{
				{"orders_customer_id_fkey", "public", "orders", "customer_id", "public", "customers", "id"},
			},
		}},
		{contains: "pg_total_relation_size", rows: &models.Rows{
			Columns: []string{"row_count", "size_bytes", "comment"},
			Values:  [][]any{{int64(1200), int64(65536), nil}},
		}},
	}}
	insp := newInspector(t, models.DialectPostgres, fq)

	detail, err := insp.DescribeTable(context.Background(), "public", "orders")
	require.NoError(t, err)

	require.Len(t, detail.Columns, 3)
	assert.Equal(t, "id", detail.Columns[0].Name)
	assert.False(t, detail.Columns[0].IsNullable)
	assert.Equal(t, "customer_id", detail.Columns[1].Name)
	assert.True(t, detail.Columns[2].IsNullable)
	require.NotNil(t, detail.Columns[2].Comment)
	assert.Equal(t, "gross amount", *detail.Columns[2].Comment)

	require.Len(t, detail.Indexes, 1)
	assert.Equal(t, []string{"id"}, detail.Indexes[0].Columns)
	assert.True(t, detail.Indexes[0].IsUnique)

	require.Len(t, detail.Constraints, 2)

	require.Len(t, detail.ForeignKeys, 1)
	fk := detail.ForeignKeys[0]
	assert.Equal(t, "customer_id", fk.Column)
	assert.Equal(t, "customers", fk.ReferencedTable)
	assert.Equal(t, "id", fk.ReferencedColumn)

	require.NotNil(t, detail.RowCount)
	assert.Equal(t, int64(1200), *detail.RowCount)
	assert.Empty(t, detail.Notes)
}

func TestDescribeTable_NotFound(t *testing.T) {
	fq := &fakeQuerier{}
	insp := newInspector(t, models.DialectPostgres, fq)

	_, err := insp.DescribeTable(context.Background(), "public", "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "got %v", err)
}

func TestDescribeTable_ClickHouseNotes(t *testing.T) {
	fq := &fakeQuerier{routes: []route{
		{contains: "system.columns", rows: &models.Rows{
			Columns: []string{"name", "type", "nullable", "default", "position", "comment"},
			Values: [][]any{
				{"event_id", "UInt64", false, nil, int64(1), nil},
			},
		}},
		{contains: "data_skipping_indices", rows: &models.Rows{
			Columns: []string{"name", "expr", "is_unique", "type"},
			Values:  [][]any{{"idx_ts", "timestamp", false, "minmax"}},
		}},
	}}
	insp := newInspector(t, models.DialectClickHouse, fq)

	detail, err := insp.DescribeTable(context.Background(), "events", "hits")
	require.NoError(t, err)

	require.Len(t, detail.Columns, 1)
	require.Len(t, detail.Indexes, 1)
	assert.Empty(t, detail.Constraints)
	assert.Empty(t, detail.ForeignKeys)

	require.Len(t, detail.Notes, 2)
	assert.Contains(t, detail.Notes[0], "constraints are not supported by clickhouse")
	assert.Contains(t, detail.Notes[1], "foreign keys are not supported by clickhouse")
}

func TestTableRelationships(t *testing.T) {
	t.Run("postgres returns graph", func(t *testing.T) {
		fq := &fakeQuerier{routes: []route{
			{contains: "FOREIGN KEY", rows: &models.Rows{
				Columns: []string{"constraint", "schema", "table", "column", "ref_schema", "ref_table", "ref_column"},
				Values: [][]any{
					{"orders_customer_id_fkey", "public", "orders", "customer_id", "public", "customers", "id"},
					{"items_order_id_fkey", "public", "items", "order_id", "public", "orders", "id"},
				},
			}},
		}}
		insp := newInspector(t, models.DialectPostgres, fq)

		fks, notes, err := insp.TableRelationships(context.Background(), "public")
		require.NoError(t, err)
		assert.Empty(t, notes)
		require.Len(t, fks, 2)
		assert.Equal(t, "orders", fks[0].Table)
	})

	t.Run("clickhouse returns empty with note", func(t *testing.T) {
		fq := &fakeQuerier{}
		insp := newInspector(t, models.DialectClickHouse, fq)

		fks, notes, err := insp.TableRelationships(context.Background(), "events")
		require.NoError(t, err)
		assert.Empty(t, fks)
		require.Len(t, notes, 1)
		assert.Contains(t, notes[0], "not supported by clickhouse")
		assert.Empty(t, fq.queries, "no query should run for an unsupported feature")
	})
}

func TestProfileDatabase(t *testing.T) {
	fq := &fakeQuerier{routes: []route{
		{contains: "version()", rows: &models.Rows{
			Columns: []string{"v", "db", "u"},
			Values:  [][]any{{"PostgreSQL 16.2", "shop", "probe"}},
		}},
		{contains: "GROUP BY n.nspname", rows: &models.Rows{
			Columns: []string{"schema", "table_count", "total_bytes"},
			Values: [][]any{
				{"public", int64(12), int64(1 << 20)},
				{"reporting", int64(3), int64(1 << 18)},
			},
		}},
		{contains: "ORDER BY pg_total_relation_size(c.oid) DESC", rows: &models.Rows{
			Columns: []string{"schema", "table", "size_bytes", "row_count"},
			Values: [][]any{
				{"public", "orders", int64(1 << 19), int64(100000)},
			},
		}},
	}}
	insp := newInspector(t, models.DialectPostgres, fq)

	profile, err := insp.ProfileDatabase(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "shop", profile.DatabaseName)
	require.Len(t, profile.Schemas, 2)
	assert.Equal(t, int64(15), profile.TotalTables)
	assert.Equal(t, int64(1<<20+1<<18), profile.TotalBytes)
	require.Len(t, profile.LargestTables, 1)
	assert.Equal(t, "orders", profile.LargestTables[0].Table)
}
