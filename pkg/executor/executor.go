// Package executor runs validated read-only queries with enforced row
// limits and produces client-facing results.
package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yugui923/db-connect-mcp/pkg/apperrors"
	"github.com/yugui923/db-connect-mcp/pkg/database"
	"github.com/yugui923/db-connect-mcp/pkg/dialect"
	"github.com/yugui923/db-connect-mcp/pkg/logging"
	"github.com/yugui923/db-connect-mcp/pkg/models"
	sqlval "github.com/yugui923/db-connect-mcp/pkg/sql"
)

const (
	// DefaultLimit applies when the caller does not specify one.
	DefaultLimit = 100
	// MaxLimit caps any requested limit.
	MaxLimit = 10000
	// MaxSampleLimit caps sample_data requests.
	MaxSampleLimit = 1000
)

// Executor validates and runs user queries.
type Executor struct {
	querier database.Querier
	adapter dialect.Adapter
	logger  *zap.Logger
}

func New(querier database.Querier, adapter dialect.Adapter, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{querier: querier, adapter: adapter, logger: logger}
}

// Execute validates the query, enforces the row limit, and runs it. Queries
// that already carry a LIMIT run unchanged; everything else is wrapped in a
// limited subquery. Truncation is detected by fetching one row past the
// limit.
func (e *Executor) Execute(ctx context.Context, query string, limit int) (*models.QueryResult, error) {
	limit = clampLimit(limit, MaxLimit)

	normalized, err := sqlval.ValidateReadOnly(query)
	if err != nil {
		return nil, err
	}

	hasOwnLimit := sqlval.HasLimit(normalized)
	statement := normalized
	if !hasOwnLimit {
		statement = fmt.Sprintf("SELECT * FROM (%s) AS _limited LIMIT %d", normalized, limit+1)
	}

	start := time.Now()
	rows, err := e.querier.Query(ctx, statement)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	truncated := false
	if !hasOwnLimit && rows.RowCount() > limit {
		rows.Values = rows.Values[:limit]
		truncated = true
	}

	e.logger.Debug("query executed",
		zap.String("query", logging.SanitizeQuery(normalized)),
		zap.Int("rows", rows.RowCount()),
		zap.Bool("truncated", truncated),
		zap.Duration("elapsed", elapsed))

	result := &models.QueryResult{
		Columns:         rows.Columns,
		Rows:            rows.Maps(),
		RowCount:        rows.RowCount(),
		Truncated:       truncated,
		ExecutionTimeMS: float64(elapsed.Microseconds()) / 1000.0,
	}
	if truncated {
		result.Notes = append(result.Notes,
			fmt.Sprintf("result truncated to %d rows; add an explicit LIMIT to control this", limit))
	}
	return result, nil
}

// Sample returns up to limit rows from a table using the best sampling
// strategy the dialect offers.
func (e *Executor) Sample(ctx context.Context, schema, table string, limit int) (*models.QueryResult, error) {
	limit = clampLimit(limit, MaxSampleLimit)
	if schema == "" {
		schema = e.adapter.DefaultSchema()
	}

	if err := e.ensureTableExists(ctx, schema, table); err != nil {
		return nil, err
	}

	q, method := e.adapter.SampleQuery(schema, table, limit)

	start := time.Now()
	rows, err := e.querier.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	result := &models.QueryResult{
		Columns:         rows.Columns,
		Rows:            rows.Maps(),
		RowCount:        rows.RowCount(),
		ExecutionTimeMS: float64(elapsed.Microseconds()) / 1000.0,
		SamplingMethod:  method,
	}
	if method == models.SamplingLimitOnly {
		result.Notes = append(result.Notes,
			"rows are taken in storage order, not randomized")
	}
	return result, nil
}

// Explain validates the query and returns its execution plan.
func (e *Executor) Explain(ctx context.Context, query string) (*models.ExplainResult, error) {
	normalized, err := sqlval.ValidateReadOnly(query)
	if err != nil {
		return nil, err
	}

	q, format := e.adapter.ExplainQuery(normalized)
	if q.SQL == "" {
		return nil, fmt.Errorf("%w: explain on %s", apperrors.ErrUnsupportedFeature, e.adapter.Dialect())
	}
	rows, err := e.querier.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, err
	}

	return &models.ExplainResult{
		Dialect: e.adapter.Dialect(),
		Format:  format,
		Plan:    extractPlan(rows, format),
	}, nil
}

// extractPlan shapes the raw EXPLAIN output. JSON plans arrive either
// pre-decoded (postgres json columns) or as a string (mysql); text plans are
// one line per row.
func extractPlan(rows *models.Rows, format string) any {
	if rows.RowCount() == 0 || len(rows.Columns) == 0 {
		return nil
	}

	if format == "json" {
		first := rows.Values[0][0]
		if s, ok := first.(string); ok {
			var decoded any
			if err := json.Unmarshal([]byte(s), &decoded); err == nil {
				return decoded
			}
			return s
		}
		return first
	}

	lines := make([]string, 0, rows.RowCount())
	for _, row := range rows.Values {
		if len(row) > 0 {
			lines = append(lines, fmt.Sprintf("%v", row[0]))
		}
	}
	return strings.Join(lines, "\n")
}

func (e *Executor) ensureTableExists(ctx context.Context, schema, table string) error {
	q := e.adapter.ColumnQuery(schema, table)
	rows, err := e.querier.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return err
	}
	if rows.RowCount() == 0 {
		return fmt.Errorf("%w: table %s.%s", apperrors.ErrNotFound, schema, table)
	}
	return nil
}

func clampLimit(limit, max int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > max {
		return max
	}
	return limit
}
