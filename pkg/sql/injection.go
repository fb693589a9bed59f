package sql

import (
	"fmt"
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/yugui923/db-connect-mcp/pkg/apperrors"
)

// MaxIdentifierLength bounds schema, table and column name parameters.
// Longer than any real identifier limit (PostgreSQL 63, MySQL 64,
// ClickHouse 206).
const MaxIdentifierLength = 256

// ValidateIdentifier checks a schema, table or column name parameter before
// it is quoted into generated SQL. Identifiers are always quoted, but values
// that libinjection flags as SQL injection payloads are rejected outright.
//
// Returns nil for clean values, or an error wrapping ErrQueryUnsafe with the
// parameter name and the libinjection fingerprint.
func ValidateIdentifier(paramName, value string) error {
	if value == "" {
		return nil
	}
	if len(value) > MaxIdentifierLength {
		return fmt.Errorf("%w: parameter %q exceeds %d characters",
			apperrors.ErrQueryUnsafe, paramName, MaxIdentifierLength)
	}
	if strings.ContainsRune(value, 0) {
		return fmt.Errorf("%w: parameter %q contains a NUL byte",
			apperrors.ErrQueryUnsafe, paramName)
	}

	if isSQLi, fingerprint := libinjection.IsSQLi(value); isSQLi {
		return fmt.Errorf("%w: parameter %q matches injection pattern %s",
			apperrors.ErrQueryUnsafe, paramName, fingerprint)
	}

	return nil
}

// ValidateIdentifiers checks a set of named identifier parameters and
// returns the first failure.
func ValidateIdentifiers(params map[string]string) error {
	for name, value := range params {
		if err := ValidateIdentifier(name, value); err != nil {
			return err
		}
	}
	return nil
}
