package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/go-sql-driver/mysql"

	"github.com/yugui923/db-connect-mcp/pkg/apperrors"
	"github.com/yugui923/db-connect-mcp/pkg/config"
	"github.com/yugui923/db-connect-mcp/pkg/models"
)

// sqlBackend runs queries through a database/sql pool. It serves both MySQL
// and ClickHouse; the dialect differences live entirely in the constructor.
type sqlBackend struct {
	db *sql.DB
}

func newMySQLBackend(rawURL string, cfg *config.Config) (*sqlBackend, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	mc := mysql.NewConfig()
	mc.User = u.User.Username()
	mc.Passwd, _ = u.User.Password()
	mc.Net = "tcp"
	mc.Addr = u.Host
	if u.Port() == "" {
		mc.Addr = u.Host + ":3306"
	}
	mc.DBName = strings.TrimPrefix(u.Path, "/")
	mc.ParseTime = true

	for key, values := range u.Query() {
		if len(values) == 0 {
			continue
		}
		value := values[len(values)-1]
		switch key {
		case "parseTime":
			mc.ParseTime = value == "true"
		case "collation":
			mc.Collation = value
		case "tls":
			mc.TLSConfig = value
		case "timeout":
			mc.Timeout, _ = time.ParseDuration(value)
		case "readTimeout":
			mc.ReadTimeout, _ = time.ParseDuration(value)
		default:
			// Remaining params become session system variables; this is
			// how transaction_read_only=1 reaches the server.
			if mc.Params == nil {
				mc.Params = map[string]string{}
			}
			mc.Params[key] = value
		}
	}

	connector, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, fmt.Errorf("failed to configure mysql driver: %w", err)
	}

	db := sql.OpenDB(connector)
	tunePool(db, cfg)
	return &sqlBackend{db: db}, nil
}

func newClickHouseBackend(rawURL string, cfg *config.Config) (*sqlBackend, error) {
	opts, err := clickhouse.ParseDSN(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	if opts.Settings == nil {
		opts.Settings = clickhouse.Settings{}
	}
	// Enforced here as well as in the URL so a stripped DSN still cannot
	// write.
	opts.Settings["readonly"] = 1
	opts.Settings["max_execution_time"] = int(cfg.Query.StatementTimeout.Duration().Seconds())

	db := clickhouse.OpenDB(opts)
	tunePool(db, cfg)
	return &sqlBackend{db: db}, nil
}

func tunePool(db *sql.DB, cfg *config.Config) {
	db.SetMaxOpenConns(int(cfg.Pool.MaxConns()))
	db.SetMaxIdleConns(int(cfg.Pool.Size))
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)
}

func (b *sqlBackend) query(ctx context.Context, acquireTimeout, stmtTimeout time.Duration, sqlText string, args ...any) (*models.Rows, error) {
	acquireCtx, cancelAcquire := context.WithTimeout(ctx, acquireTimeout)
	defer cancelAcquire()

	conn, err := b.db.Conn(acquireCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: waited %s", apperrors.ErrPoolTimeout, acquireTimeout)
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrConnection, err)
	}
	defer conn.Close()

	queryCtx, cancelQuery := context.WithTimeout(ctx, stmtTimeout)
	defer cancelQuery()

	rows, err := conn.QueryContext(queryCtx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	result := &models.Rows{
		Columns: columns,
		Types:   make([]string, len(columns)),
	}
	if colTypes, err := rows.ColumnTypes(); err == nil {
		for i, ct := range colTypes {
			result.Types[i] = ct.DatabaseTypeName()
		}
	}

	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		for i, v := range values {
			values[i] = jsonValue(v)
		}
		result.Values = append(result.Values, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return result, nil
}

func (b *sqlBackend) ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

func (b *sqlBackend) close() {
	_ = b.db.Close()
}
