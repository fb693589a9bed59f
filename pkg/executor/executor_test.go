package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yugui923/db-connect-mcp/pkg/apperrors"
	"github.com/yugui923/db-connect-mcp/pkg/dialect"
	"github.com/yugui923/db-connect-mcp/pkg/models"
)

// fakeQuerier scripts responses per query and records everything it runs.
type fakeQuerier struct {
	queries []string
	respond func(sql string, args []any) (*models.Rows, error)
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (*models.Rows, error) {
	f.queries = append(f.queries, sql)
	if f.respond == nil {
		return &models.Rows{}, nil
	}
	return f.respond(sql, args)
}

func rowsWithCount(n int) *models.Rows {
	r := &models.Rows{Columns: []string{"id"}}
	for i := 0; i < n; i++ {
		r.Values = append(r.Values, []any{int64(i)})
	}
	return r
}

func newPostgresExecutor(t *testing.T, fq *fakeQuerier) *Executor {
	t.Helper()
	a, err := dialect.New(models.DialectPostgres)
	require.NoError(t, err)
	return New(fq, a, nil)
}

func TestExecute_RejectsUnsafeSQL(t *testing.T) {
	fq := &fakeQuerier{}
	e := newPostgresExecutor(t, fq)

	for _, query := range []string{
		"DROP TABLE users",
		"SELECT 1; DELETE FROM users",
		"INSERT INTO t VALUES (1)",
		"",
	} {
		_, err := e.Execute(context.Background(), query, 0)
		require.Error(t, err, query)
		assert.True(t, errors.Is(err, apperrors.ErrQueryUnsafe), "got %v", err)
	}

	assert.Empty(t, fq.queries, "rejected queries must never reach the database")
}

func TestExecute_WrapsQueryWithoutLimit(t *testing.T) {
	fq := &fakeQuerier{respond: func(sql string, args []any) (*models.Rows, error) {
		return rowsWithCount(3), nil
	}}
	e := newPostgresExecutor(t, fq)

	result, err := e.Execute(context.Background(), "SELECT * FROM users", 0)
	require.NoError(t, err)

	require.Len(t, fq.queries, 1)
	assert.Equal(t, "SELECT * FROM (SELECT * FROM users) AS _limited LIMIT 101", fq.queries[0])
	assert.Equal(t, 3, result.RowCount)
	assert.False(t, result.Truncated)
}

func TestExecute_PreservesExplicitLimit(t *testing.T) {
	fq := &fakeQuerier{respond: func(sql string, args []any) (*models.Rows, error) {
		return rowsWithCount(5), nil
	}}
	e := newPostgresExecutor(t, fq)

	_, err := e.Execute(context.Background(), "SELECT * FROM users LIMIT 5", 100)
	require.NoError(t, err)

	require.Len(t, fq.queries, 1)
	assert.Equal(t, "SELECT * FROM users LIMIT 5", fq.queries[0])
}

func TestExecute_Truncation(t *testing.T) {
	fq := &fakeQuerier{respond: func(sql string, args []any) (*models.Rows, error) {
		return rowsWithCount(11), nil
	}}
	e := newPostgresExecutor(t, fq)

	result, err := e.Execute(context.Background(), "SELECT * FROM users", 10)
	require.NoError(t, err)

	assert.Equal(t, 10, result.RowCount)
	assert.True(t, result.Truncated)
	require.Len(t, result.Notes, 1)
	assert.Contains(t, result.Notes[0], "truncated to 10 rows")
}

func TestExecute_ClampsLimit(t *testing.T) {
	fq := &fakeQuerier{respond: func(sql string, args []any) (*models.Rows, error) {
		return rowsWithCount(1), nil
	}}
	e := newPostgresExecutor(t, fq)

	_, err := e.Execute(context.Background(), "SELECT * FROM big", 50000)
	require.NoError(t, err)

	require.Len(t, fq.queries, 1)
	assert.Contains(t, fq.queries[0], fmt.Sprintf("LIMIT %d", MaxLimit+1))
}

func TestExecute_StripsTrailingSemicolon(t *testing.T) {
	fq := &fakeQuerier{respond: func(sql string, args []any) (*models.Rows, error) {
		return rowsWithCount(1), nil
	}}
	e := newPostgresExecutor(t, fq)

	_, err := e.Execute(context.Background(), "SELECT 1;", 10)
	require.NoError(t, err)
	assert.NotContains(t, fq.queries[0], ";")
}

func TestSample_MissingTable(t *testing.T) {
	fq := &fakeQuerier{respond: func(sql string, args []any) (*models.Rows, error) {
		// Column lookup returns nothing: the table does not exist.
		return &models.Rows{}, nil
	}}
	e := newPostgresExecutor(t, fq)

	_, err := e.Sample(context.Background(), "public", "nope", 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "got %v", err)
}

func TestSample_LimitOnlyNote(t *testing.T) {
	fq := &fakeQuerier{respond: func(sql string, args []any) (*models.Rows, error) {
		if strings.Contains(sql, "information_schema.columns") {
			return rowsWithCount(2), nil
		}
		return rowsWithCount(7), nil
	}}
	e := newPostgresExecutor(t, fq)

	result, err := e.Sample(context.Background(), "", "orders", 50)
	require.NoError(t, err)

	assert.Equal(t, models.SamplingLimitOnly, result.SamplingMethod)
	assert.Equal(t, 7, result.RowCount)
	require.Len(t, result.Notes, 1)
	assert.Contains(t, result.Notes[0], "not randomized")

	// Default schema must be filled in for the existence check.
	assert.Contains(t, fq.queries[1], `"public"."orders"`)
}

func TestSample_ClampsToSampleLimit(t *testing.T) {
	fq := &fakeQuerier{respond: func(sql string, args []any) (*models.Rows, error) {
		return rowsWithCount(1), nil
	}}
	e := newPostgresExecutor(t, fq)

	_, err := e.Sample(context.Background(), "public", "orders", 100000)
	require.NoError(t, err)

	sampleSQL := fq.queries[len(fq.queries)-1]
	assert.Contains(t, sampleSQL, fmt.Sprintf("LIMIT %d", MaxSampleLimit))
}

func TestExplain_JSONPlan(t *testing.T) {
	fq := &fakeQuerier{respond: func(sql string, args []any) (*models.Rows, error) {
		return &models.Rows{
			Columns: []string{"QUERY PLAN"},
			Values:  [][]any{{`[{"Plan": {"Node Type": "Seq Scan"}}]`}},
		}, nil
	}}
	e := newPostgresExecutor(t, fq)

	result, err := e.Explain(context.Background(), "SELECT * FROM users")
	require.NoError(t, err)

	assert.Equal(t, "json", result.Format)
	require.Len(t, fq.queries, 1)
	assert.True(t, strings.HasPrefix(fq.queries[0], "EXPLAIN (FORMAT JSON)"))

	plan, ok := result.Plan.([]any)
	require.True(t, ok, "JSON string plans should be decoded, got %T", result.Plan)
	assert.Len(t, plan, 1)
}

func TestExplain_TextPlan(t *testing.T) {
	a, err := dialect.New(models.DialectClickHouse)
	require.NoError(t, err)
	fq := &fakeQuerier{respond: func(sql string, args []any) (*models.Rows, error) {
		return &models.Rows{
			Columns: []string{"explain"},
			Values:  [][]any{{"Expression"}, {"  ReadFromMergeTree"}},
		}, nil
	}}
	e := New(fq, a, nil)

	result, err := e.Explain(context.Background(), "SELECT * FROM hits")
	require.NoError(t, err)

	assert.Equal(t, "text", result.Format)
	assert.Equal(t, "Expression\n  ReadFromMergeTree", result.Plan)
}

func TestExplain_RejectsUnsafeSQL(t *testing.T) {
	fq := &fakeQuerier{}
	e := newPostgresExecutor(t, fq)

	_, err := e.Explain(context.Background(), "DELETE FROM users")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrQueryUnsafe))
	assert.Empty(t, fq.queries)
}
