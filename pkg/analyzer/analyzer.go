// Package analyzer computes column-level statistics: counts, numeric
// distribution summaries, and most-common-value listings.
package analyzer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yugui923/db-connect-mcp/pkg/apperrors"
	"github.com/yugui923/db-connect-mcp/pkg/database"
	"github.com/yugui923/db-connect-mcp/pkg/dialect"
	"github.com/yugui923/db-connect-mcp/pkg/models"
)

// TopK is how many most-common values a distribution includes.
const TopK = 10

// Analyzer profiles individual columns through the dialect adapter.
type Analyzer struct {
	querier database.Querier
	adapter dialect.Adapter
	logger  *zap.Logger
}

func New(querier database.Querier, adapter dialect.Adapter, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{querier: querier, adapter: adapter, logger: logger}
}

// AnalyzeColumn computes statistics for one column. Which statistics run
// depends on the column's type category and the dialect's statistics level.
func (a *Analyzer) AnalyzeColumn(ctx context.Context, schema, table, column string) (*models.ColumnStatistics, error) {
	if schema == "" {
		schema = a.adapter.DefaultSchema()
	}

	dataType, err := a.lookupColumnType(ctx, schema, table, column)
	if err != nil {
		return nil, err
	}

	stats := &models.ColumnStatistics{
		Schema:       schema,
		Table:        table,
		Column:       column,
		DataType:     dataType,
		TypeCategory: a.adapter.ClassifyType(dataType),
	}

	bq := a.adapter.BaseStatsQuery(schema, table, column)
	brows, err := a.querier.Query(ctx, bq.SQL, bq.Args...)
	if err != nil {
		return nil, err
	}
	if brows.RowCount() > 0 {
		row := brows.Values[0]
		stats.TotalRows = models.AsInt64(row[0])
		stats.NullCount = models.AsInt64(row[1])
		stats.DistinctCount = models.AsInt64(row[2])
		if stats.TotalRows > 0 {
			stats.NullFraction = float64(stats.NullCount) / float64(stats.TotalRows)
			stats.CardinalityRatio = float64(stats.DistinctCount) / float64(stats.TotalRows)
		}
	}

	if stats.TotalRows == 0 {
		stats.Warnings = append(stats.Warnings, "table is empty")
		return stats, nil
	}
	if stats.NullCount == stats.TotalRows {
		stats.Warnings = append(stats.Warnings, "column contains only NULL values")
		return stats, nil
	}

	// Everything non-numeric, temporal included, gets a most-common-values
	// distribution; temporal values surface as their string form.
	if stats.TypeCategory == models.TypeNumeric {
		if err := a.numericStats(ctx, schema, table, column, stats); err != nil {
			return nil, err
		}
	} else {
		if err := a.distribution(ctx, schema, table, column, stats); err != nil {
			return nil, err
		}
	}

	a.logger.Debug("column analyzed",
		zap.String("table", schema+"."+table),
		zap.String("column", column),
		zap.String("category", string(stats.TypeCategory)))

	return stats, nil
}

func (a *Analyzer) numericStats(ctx context.Context, schema, table, column string, stats *models.ColumnStatistics) error {
	q := a.adapter.NumericStatsQuery(schema, table, column)
	if q.SQL == "" {
		return fmt.Errorf("%w: numeric statistics on %s", apperrors.ErrUnsupportedFeature, a.adapter.Dialect())
	}
	rows, err := a.querier.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return err
	}
	if rows.RowCount() == 0 {
		return nil
	}
	row := rows.Values[0]

	stats.Mean = floatPtr(row, 0)
	stats.StdDev = floatPtr(row, 1)
	if len(row) > 2 {
		stats.Min = row[2]
	}
	if len(row) > 3 {
		stats.Max = row[3]
	}

	if a.adapter.Capabilities().Statistics == models.StatisticsPartial {
		stats.Warnings = append(stats.Warnings,
			fmt.Sprintf("advanced statistics (percentiles) not available for %s", a.adapter.Dialect()))
		return nil
	}

	stats.Q1 = floatPtr(row, 4)
	stats.Median = floatPtr(row, 5)
	stats.Q3 = floatPtr(row, 6)
	stats.P95 = floatPtr(row, 7)
	stats.P99 = floatPtr(row, 8)
	return nil
}

func (a *Analyzer) distribution(ctx context.Context, schema, table, column string, stats *models.ColumnStatistics) error {
	q := a.adapter.TextStatsQuery(schema, table, column, TopK)
	if q.SQL == "" {
		return fmt.Errorf("%w: value distribution on %s", apperrors.ErrUnsupportedFeature, a.adapter.Dialect())
	}
	rows, err := a.querier.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return err
	}
	for _, row := range rows.Values {
		stats.Distribution = append(stats.Distribution, models.DistributionEntry{
			Value:     row[0],
			Frequency: models.AsInt64(row[1]),
		})
	}
	if stats.DistinctCount > int64(len(stats.Distribution)) && len(stats.Distribution) == TopK {
		stats.Warnings = append(stats.Warnings,
			fmt.Sprintf("distribution truncated to the %d most common values", TopK))
	}
	return nil
}

// lookupColumnType resolves the declared type of the column, or reports
// which of the table or column is missing.
func (a *Analyzer) lookupColumnType(ctx context.Context, schema, table, column string) (string, error) {
	q := a.adapter.ColumnQuery(schema, table)
	rows, err := a.querier.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return "", err
	}
	if rows.RowCount() == 0 {
		return "", fmt.Errorf("%w: table %s.%s", apperrors.ErrNotFound, schema, table)
	}
	for _, row := range rows.Values {
		if models.AsString(row[0]) == column {
			return models.AsString(row[1]), nil
		}
	}
	return "", fmt.Errorf("%w: column %s.%s.%s", apperrors.ErrNotFound, schema, table, column)
}

func floatPtr(row []any, idx int) *float64 {
	if idx >= len(row) {
		return nil
	}
	f, ok := models.AsFloat64(row[idx])
	if !ok {
		return nil
	}
	return &f
}
