// Package database manages the connection pool for the target database and
// exposes a dialect-neutral query interface on top of it.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yugui923/db-connect-mcp/pkg/apperrors"
	"github.com/yugui923/db-connect-mcp/pkg/config"
	"github.com/yugui923/db-connect-mcp/pkg/dburl"
	"github.com/yugui923/db-connect-mcp/pkg/logging"
	"github.com/yugui923/db-connect-mcp/pkg/models"
)

// Querier runs a single statement and returns its rows with values already
// converted to JSON-safe Go types.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (*models.Rows, error)
}

// backend is the driver-specific half of the Manager. Implementations
// separate connection acquisition from statement execution so that pool
// exhaustion and query failure surface as different errors.
type backend interface {
	query(ctx context.Context, acquireTimeout, stmtTimeout time.Duration, sql string, args ...any) (*models.Rows, error)
	ping(ctx context.Context) error
	close()
}

// Manager owns the connection pool for the configured database.
type Manager struct {
	backend backend
	cfg     *config.Config
	dialect models.Dialect
	logger  *zap.Logger
}

// NewManager connects to the database described by the normalized URL and
// verifies connectivity with a ping.
func NewManager(ctx context.Context, cfg *config.Config, n *dburl.Normalized, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		b   backend
		err error
	)
	switch n.Dialect {
	case models.DialectPostgres:
		b, err = newPgxBackend(ctx, n.URL, cfg)
	case models.DialectMySQL:
		b, err = newMySQLBackend(n.URL, cfg)
	case models.DialectClickHouse:
		b, err = newClickHouseBackend(n.URL, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownDialect, n.Dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConnection, logging.SanitizeError(err))
	}

	m := &Manager{backend: b, cfg: cfg, dialect: n.Dialect, logger: logger}

	// No retries here; bootstrap owns the retry loop so that a failed
	// attempt surfaces immediately once the server is running.
	pingCtx, cancel := context.WithTimeout(ctx, cfg.Pool.AcquireTimeout.Duration())
	defer cancel()
	if err := b.ping(pingCtx); err != nil {
		b.close()
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConnection, logging.SanitizeError(err))
	}

	logger.Info("connected to database",
		zap.String("dialect", string(n.Dialect)),
		zap.String("url", logging.SanitizeConnectionString(n.URL)),
		zap.Int32("pool_size", cfg.Pool.Size),
		zap.Int32("max_overflow", cfg.Pool.MaxOverflow))

	return m, nil
}

// Dialect reports which engine the manager is connected to.
func (m *Manager) Dialect() models.Dialect { return m.dialect }

// Query runs a single statement through the pool. Acquisition is bounded by
// the pool timeout and execution by the statement timeout.
func (m *Manager) Query(ctx context.Context, sql string, args ...any) (*models.Rows, error) {
	rows, err := m.backend.query(ctx, m.cfg.Pool.AcquireTimeout.Duration(), m.cfg.Query.StatementTimeout.Duration(), sql, args...)
	if err != nil {
		if errors.Is(err, apperrors.ErrPoolTimeout) {
			m.logger.Warn("pool acquisition timed out",
				zap.Duration("timeout", m.cfg.Pool.AcquireTimeout.Duration()))
			return nil, err
		}
		m.logger.Debug("query failed",
			zap.String("query", logging.SanitizeQuery(sql)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, err
	}
	return rows, nil
}

// Ping verifies the database is reachable.
func (m *Manager) Ping(ctx context.Context) error {
	if err := m.backend.ping(ctx); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrConnection, logging.SanitizeError(err))
	}
	return nil
}

// Close releases all pooled connections.
func (m *Manager) Close() {
	m.backend.close()
	m.logger.Info("database pool closed", zap.String("dialect", string(m.dialect)))
}
