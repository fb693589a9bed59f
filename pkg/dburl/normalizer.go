// Package dburl normalizes user-supplied database connection URLs into a
// canonical form with a resolved dialect and enforced read-only settings.
package dburl

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/yugui923/db-connect-mcp/pkg/apperrors"
	"github.com/yugui923/db-connect-mcp/pkg/models"
)

// Normalized is a canonical connection URL with its resolved dialect.
type Normalized struct {
	Dialect models.Dialect
	URL     string
}

// schemeDialects maps every accepted scheme synonym to its dialect.
var schemeDialects = map[string]models.Dialect{
	"postgres":     models.DialectPostgres,
	"postgresql":   models.DialectPostgres,
	"pg":           models.DialectPostgres,
	"psql":         models.DialectPostgres,
	"pgsql":        models.DialectPostgres,
	"mysql":        models.DialectMySQL,
	"mariadb":      models.DialectMySQL,
	"maria":        models.DialectMySQL,
	"clickhouse":   models.DialectClickHouse,
	"ch":           models.DialectClickHouse,
	"click":        models.DialectClickHouse,
	"clickhousedb": models.DialectClickHouse,
}

// canonicalSchemes maps each dialect to the scheme its Go driver expects.
var canonicalSchemes = map[models.Dialect]string{
	models.DialectPostgres:   "postgres",
	models.DialectMySQL:      "mysql",
	models.DialectClickHouse: "clickhouse",
}

// paramAllowlists holds the query parameters passed through to each driver.
// Anything else is dropped so that callers cannot smuggle in settings that
// would weaken the read-only posture.
var paramAllowlists = map[models.Dialect]map[string]bool{
	models.DialectPostgres: {
		"sslmode":          true,
		"connect_timeout":  true,
		"application_name": true,
		"search_path":      true,
	},
	models.DialectMySQL: {
		"tls":         true,
		"charset":     true,
		"collation":   true,
		"parseTime":   true,
		"timeout":     true,
		"readTimeout": true,
	},
	models.DialectClickHouse: {
		"secure":       true,
		"dial_timeout": true,
		"compress":     true,
		"database":     true,
	},
}

// Normalize parses a connection URL, resolves its dialect from the scheme,
// strips unknown query parameters, and forces session read-only settings.
// The result is canonical: normalizing it again yields the same URL.
func Normalize(raw string) (*Normalized, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty URL", apperrors.ErrMalformedURL)
	}

	// Tolerate JDBC-style URLs by dropping the prefix.
	if len(raw) > 5 && strings.EqualFold(raw[:5], "jdbc:") {
		raw = raw[5:]
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedURL, err)
	}
	if u.Scheme == "" || u.Opaque != "" {
		return nil, fmt.Errorf("%w: missing scheme", apperrors.ErrMalformedURL)
	}

	// A "+driver" suffix selects a client library in other ecosystems; the
	// driver here is fixed per dialect, so only the base scheme matters.
	scheme := strings.ToLower(u.Scheme)
	if i := strings.IndexByte(scheme, '+'); i >= 0 {
		scheme = scheme[:i]
	}

	dialect, ok := schemeDialects[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: scheme %q", apperrors.ErrUnknownDialect, u.Scheme)
	}
	u.Scheme = canonicalSchemes[dialect]

	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", apperrors.ErrMalformedURL)
	}

	u.RawQuery = normalizeParams(dialect, u.Query()).Encode()
	u.Fragment = ""

	return &Normalized{Dialect: dialect, URL: u.String()}, nil
}

// normalizeParams filters params through the dialect allowlist and overlays
// the read-only session settings. Encode() sorts keys, which keeps the
// output stable across repeated normalization.
func normalizeParams(dialect models.Dialect, params url.Values) url.Values {
	out := url.Values{}
	for key, values := range params {
		if !paramAllowlists[dialect][key] {
			continue
		}
		if len(values) > 0 {
			out.Set(key, values[len(values)-1])
		}
	}

	switch dialect {
	case models.DialectPostgres:
		out.Set("options", "-c default_transaction_read_only=on")
	case models.DialectMySQL:
		out.Set("transaction_read_only", "1")
	case models.DialectClickHouse:
		out.Set("readonly", "1")
	}

	return out
}
