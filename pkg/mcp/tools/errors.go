package tools

import (
	"encoding/json"
	"errors"
	"regexp"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/yugui923/db-connect-mcp/pkg/apperrors"
)

// ErrorResponse represents a structured error in tool results.
// Actionable errors are returned as successful tool results with IsError
// set, so the client sees the details instead of an opaque protocol error.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewErrorResult creates a tool result containing a structured error.
// Use this for recoverable errors the caller can fix (bad SQL, missing
// table, unsupported feature). System failures (connection loss, internal
// errors) should still return Go errors.
func NewErrorResult(code, message string) *mcp.CallToolResult {
	resp := ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
	}
	jsonBytes, _ := json.Marshal(resp)
	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}

// NewErrorResultWithDetails creates an error result with additional context.
func NewErrorResultWithDetails(code, message string, details any) *mcp.CallToolResult {
	resp := ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
		Details: details,
	}
	jsonBytes, _ := json.Marshal(resp)
	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}

// sentinelCodes maps application errors to stable result codes.
var sentinelCodes = []struct {
	err  error
	code string
}{
	{apperrors.ErrQueryUnsafe, "query_rejected"},
	{apperrors.ErrNotFound, "not_found"},
	{apperrors.ErrUnsupportedFeature, "unsupported_feature"},
	{apperrors.ErrPoolTimeout, "pool_timeout"},
	{apperrors.ErrMalformedURL, "malformed_url"},
	{apperrors.ErrUnknownDialect, "unknown_dialect"},
}

// toolError converts an error into either an actionable error result or a
// Go error for the protocol layer. Connection failures stay protocol
// errors; everything the caller can act on becomes a structured result.
func toolError(err error) (*mcp.CallToolResult, error) {
	for _, s := range sentinelCodes {
		if errors.Is(err, s.err) {
			return NewErrorResult(s.code, err.Error()), nil
		}
	}
	if IsSQLUserError(err) {
		return NewErrorResult("sql_error", err.Error()), nil
	}
	return nil, err
}

// sqlStateRegex matches SQLSTATE codes in wrapped error messages like
// "(SQLSTATE 42601)".
var sqlStateRegex = regexp.MustCompile(`\(SQLSTATE ([0-9A-Z]{5})\)`)

// IsSQLUserError returns true if the error came from the user's SQL (syntax
// error, unknown relation, bad cast) rather than from the server or the
// connection. User errors are actionable: the caller can fix the query and
// retry.
func IsSQLUserError(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isSQLStateUserError(pgErr.Code)
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		// Client/connection errors use the 2000-2999 range; everything else
		// the server reported about the statement itself.
		return myErr.Number < 2000 || myErr.Number >= 3000
	}

	var chErr *clickhouse.Exception
	if errors.As(err, &chErr) {
		// Syntax and semantic errors; network-level failures surface as
		// plain errors, not Exceptions.
		return true
	}

	if matches := sqlStateRegex.FindStringSubmatch(err.Error()); len(matches) >= 2 {
		return isSQLStateUserError(matches[1])
	}

	return false
}

// isSQLStateUserError returns true if the SQLSTATE code indicates a user error.
//
// SQLSTATE class codes that indicate user errors:
//   - 22xxx: Data Exception (invalid input, division by zero)
//   - 23xxx: Integrity Constraint Violation
//   - 25xxx: Invalid Transaction State (writes in a read-only session)
//   - 42xxx: Syntax Error or Access Rule Violation
func isSQLStateUserError(code string) bool {
	if len(code) < 2 {
		return false
	}
	switch code[:2] {
	case "22", "23", "25", "42":
		return true
	default:
		return false
	}
}
