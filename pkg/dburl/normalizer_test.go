package dburl

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yugui923/db-connect-mcp/pkg/apperrors"
	"github.com/yugui923/db-connect-mcp/pkg/models"
)

func TestNormalize_Dialects(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		dialect models.Dialect
		scheme  string
	}{
		{"postgres", "postgres://u:p@localhost:5432/app", models.DialectPostgres, "postgres://"},
		{"postgresql synonym", "postgresql://u:p@localhost/app", models.DialectPostgres, "postgres://"},
		{"pg synonym", "pg://u:p@localhost/app", models.DialectPostgres, "postgres://"},
		{"psql synonym", "psql://u:p@localhost/app", models.DialectPostgres, "postgres://"},
		{"pgsql synonym", "pgsql://u:p@localhost/app", models.DialectPostgres, "postgres://"},
		{"mysql", "mysql://root:pw@db:3306/orders", models.DialectMySQL, "mysql://"},
		{"mariadb synonym", "mariadb://root:pw@db/orders", models.DialectMySQL, "mysql://"},
		{"maria synonym", "maria://root:pw@db/orders", models.DialectMySQL, "mysql://"},
		{"clickhouse", "clickhouse://default@ch:9000/events", models.DialectClickHouse, "clickhouse://"},
		{"ch synonym", "ch://default@ch:9000/events", models.DialectClickHouse, "clickhouse://"},
		{"click synonym", "click://default@ch/events", models.DialectClickHouse, "clickhouse://"},
		{"clickhousedb synonym", "clickhousedb://default@ch/events", models.DialectClickHouse, "clickhouse://"},
		{"uppercase scheme", "POSTGRES://u:p@localhost/app", models.DialectPostgres, "postgres://"},
		{"async driver suffix", "postgresql+asyncpg://u:p@localhost/app", models.DialectPostgres, "postgres://"},
		{"mysql driver suffix", "mysql+aiomysql://root:pw@db/orders", models.DialectMySQL, "mysql://"},
		{"jdbc prefix", "jdbc:postgresql://u:p@localhost/app", models.DialectPostgres, "postgres://"},
		{"jdbc prefix mysql", "jdbc:mysql://root:pw@db/orders", models.DialectMySQL, "mysql://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.dialect, n.Dialect)
			assert.True(t, strings.HasPrefix(n.URL, tt.scheme), "URL %q should start with %q", n.URL, tt.scheme)
		})
	}
}

func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", "", apperrors.ErrMalformedURL},
		{"whitespace only", "   ", apperrors.ErrMalformedURL},
		{"no scheme", "localhost:5432/app", apperrors.ErrMalformedURL},
		{"no host", "postgres:///app", apperrors.ErrMalformedURL},
		{"unknown scheme", "oracle://u:p@localhost/app", apperrors.ErrUnknownDialect},
		{"sqlite", "sqlite:///tmp/db.sqlite", apperrors.ErrUnknownDialect},
		{"garbage", "://///", apperrors.ErrMalformedURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestNormalize_ReadOnlyParams(t *testing.T) {
	tests := []struct {
		name  string
		input string
		param string
	}{
		{"postgres", "postgres://u:p@localhost/app", "options=-c+default_transaction_read_only%3Don"},
		{"mysql", "mysql://root:pw@db/orders", "transaction_read_only=1"},
		{"clickhouse", "clickhouse://default@ch/events", "readonly=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Normalize(tt.input)
			require.NoError(t, err)
			assert.Contains(t, n.URL, tt.param)
		})
	}
}

func TestNormalize_ParamFiltering(t *testing.T) {
	t.Run("allowlisted params survive", func(t *testing.T) {
		n, err := Normalize("postgres://u:p@localhost/app?sslmode=require&connect_timeout=5")
		require.NoError(t, err)
		assert.Contains(t, n.URL, "sslmode=require")
		assert.Contains(t, n.URL, "connect_timeout=5")
	})

	t.Run("unknown params are dropped", func(t *testing.T) {
		n, err := Normalize("postgres://u:p@localhost/app?evil_setting=1&sslmode=require")
		require.NoError(t, err)
		assert.NotContains(t, n.URL, "evil_setting")
		assert.Contains(t, n.URL, "sslmode=require")
	})

	t.Run("read-only override cannot be disabled", func(t *testing.T) {
		n, err := Normalize("mysql://root:pw@db/orders?transaction_read_only=0")
		require.NoError(t, err)
		assert.Contains(t, n.URL, "transaction_read_only=1")
		assert.NotContains(t, n.URL, "transaction_read_only=0")
	})

	t.Run("clickhouse readonly cannot be disabled", func(t *testing.T) {
		n, err := Normalize("clickhouse://default@ch/events?readonly=0")
		require.NoError(t, err)
		assert.Contains(t, n.URL, "readonly=1")
	})
}

// Normalizing an already-normalized URL must be a fixed point.
func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"postgres://u:p@localhost:5432/app?sslmode=require&application_name=probe",
		"postgresql+asyncpg://u:p@localhost/app",
		"jdbc:mysql://root:pw@db:3306/orders?charset=utf8mb4&parseTime=true",
		"mariadb://root:pw@db/orders",
		"ch://default:pw@ch.internal:9000/events?secure=true&compress=lz4",
		"clickhouse://default@ch/events?dial_timeout=10s",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first, err := Normalize(input)
			require.NoError(t, err)

			second, err := Normalize(first.URL)
			require.NoError(t, err)

			assert.Equal(t, first.URL, second.URL)
			assert.Equal(t, first.Dialect, second.Dialect)
		})
	}
}
