package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yugui923/db-connect-mcp/pkg/apperrors"
	"github.com/yugui923/db-connect-mcp/pkg/config"
	"github.com/yugui923/db-connect-mcp/pkg/models"
)

// pgxBackend runs queries through a pgxpool connection pool.
type pgxBackend struct {
	pool *pgxpool.Pool
}

func newPgxBackend(ctx context.Context, url string, cfg *config.Config) (*pgxBackend, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = cfg.Pool.MaxConns()
	poolConfig.MinConns = cfg.Pool.Size
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	// Server-side statement timeout so runaway queries are cancelled even
	// if the client context is not.
	ms := cfg.Query.StatementTimeout.Duration().Milliseconds()
	poolConfig.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(ms, 10)
	// The normalized URL already requests a read-only session; setting it
	// here as well covers URLs that bypassed normalization.
	poolConfig.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &pgxBackend{pool: pool}, nil
}

func (b *pgxBackend) query(ctx context.Context, acquireTimeout, stmtTimeout time.Duration, sql string, args ...any) (*models.Rows, error) {
	acquireCtx, cancelAcquire := context.WithTimeout(ctx, acquireTimeout)
	defer cancelAcquire()

	conn, err := b.pool.Acquire(acquireCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: waited %s", apperrors.ErrPoolTimeout, acquireTimeout)
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrConnection, err)
	}
	defer conn.Release()

	queryCtx, cancelQuery := context.WithTimeout(ctx, stmtTimeout)
	defer cancelQuery()

	rows, err := conn.Query(queryCtx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	result := &models.Rows{
		Columns: make([]string, len(fields)),
		Types:   make([]string, len(fields)),
	}
	typeMap := conn.Conn().TypeMap()
	for i, fd := range fields {
		result.Columns[i] = fd.Name
		if dt, ok := typeMap.TypeForOID(fd.DataTypeOID); ok {
			result.Types[i] = dt.Name
		} else {
			result.Types[i] = fmt.Sprintf("oid-%d", fd.DataTypeOID)
		}
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := make([]any, len(values))
		for i, v := range values {
			row[i] = jsonValue(v)
		}
		result.Values = append(result.Values, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return result, nil
}

func (b *pgxBackend) ping(ctx context.Context) error {
	return b.pool.Ping(ctx)
}

func (b *pgxBackend) close() {
	b.pool.Close()
}
