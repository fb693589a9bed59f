// Package sql validates user-supplied SQL before it reaches the database.
// Validation is a second line of defense; the session itself is read-only.
package sql

import (
	"fmt"
	"strings"

	"github.com/yugui923/db-connect-mcp/pkg/apperrors"
)

// ValidateReadOnly checks that the query is a single read-only statement and
// returns it normalized: comments stripped, whitespace trimmed, trailing
// semicolon removed. The rejected text is never executed.
//
// The validation order is:
// 1. Strip comments (string-aware)
// 2. Strip trailing semicolon and whitespace (normalize)
// 3. Reject multiple statements (any remaining semicolons outside strings)
// 4. Reject statements that do not start with SELECT or WITH
// 5. Reject mutating keywords anywhere outside string literals, so a
//    data-modifying CTE cannot hide behind a leading WITH
func ValidateReadOnly(sqlQuery string) (string, error) {
	stripped := stripComments(sqlQuery)
	normalized := stripTrailingSemicolon(strings.TrimSpace(stripped))

	if normalized == "" {
		return "", fmt.Errorf("%w: empty query", apperrors.ErrQueryUnsafe)
	}

	if hasSemicolonOutsideStrings(normalized) {
		return "", fmt.Errorf("%w: multiple statements are not permitted", apperrors.ErrQueryUnsafe)
	}

	keyword := strings.ToUpper(firstWord(normalized))
	if keyword != "SELECT" && keyword != "WITH" {
		return "", fmt.Errorf("%w: only SELECT statements are permitted, got %s", apperrors.ErrQueryUnsafe, keyword)
	}

	if kw := findMutatingKeyword(normalized); kw != "" {
		return "", fmt.Errorf("%w: statement contains %s", apperrors.ErrQueryUnsafe, kw)
	}

	return normalized, nil
}

// mutatingKeywords are rejected anywhere in a statement, not just at the
// start. Word boundaries keep DESCRIBE from matching CREATE and a column
// named "updated_at" from matching UPDATE.
var mutatingKeywords = map[string]struct{}{
	"INSERT":   {},
	"UPDATE":   {},
	"DELETE":   {},
	"DROP":     {},
	"TRUNCATE": {},
	"ALTER":    {},
	"CREATE":   {},
	"GRANT":    {},
	"REVOKE":   {},
}

// findMutatingKeyword scans the statement with string literals masked and
// returns the first mutating keyword found as a whole word, or "".
func findMutatingKeyword(sqlQuery string) string {
	upper := strings.ToUpper(maskStrings(sqlQuery))
	start := -1
	for i := 0; i <= len(upper); i++ {
		if i < len(upper) && isWordChar(upper[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			word := upper[start:i]
			if _, ok := mutatingKeywords[word]; ok {
				return word
			}
			start = -1
		}
	}
	return ""
}

// HasLimit reports whether the statement already carries a LIMIT clause
// outside of string literals.
func HasLimit(sqlQuery string) bool {
	masked := maskStrings(sqlQuery)
	upper := strings.ToUpper(masked)
	idx := 0
	for {
		i := strings.Index(upper[idx:], "LIMIT")
		if i < 0 {
			return false
		}
		i += idx
		before := i == 0 || !isWordChar(upper[i-1])
		after := i+5 >= len(upper) || !isWordChar(upper[i+5])
		if before && after {
			return true
		}
		idx = i + 5
	}
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	// "SELECT(1)" style with no space after the keyword
	word := fields[0]
	for i := 0; i < len(word); i++ {
		if !isWordChar(word[i]) {
			return word[:i]
		}
	}
	return word
}

func isWordChar(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

const (
	stateNormal = iota
	stateSingleQuote
	stateDoubleQuote
	stateLineComment
	stateBlockComment
)

// stripComments removes -- line comments and /* */ block comments without
// touching string literals. Comments are replaced by a space so adjacent
// tokens stay separated.
func stripComments(sqlQuery string) string {
	var out strings.Builder
	out.Grow(len(sqlQuery))

	state := stateNormal
	runes := []rune(sqlQuery)
	for i := 0; i < len(runes); i++ {
		char := runes[i]
		var next rune
		if i+1 < len(runes) {
			next = runes[i+1]
		}

		switch state {
		case stateNormal:
			switch {
			case char == '-' && next == '-':
				state = stateLineComment
				out.WriteRune(' ')
				i++
			case char == '/' && next == '*':
				state = stateBlockComment
				out.WriteRune(' ')
				i++
			case char == '\'':
				state = stateSingleQuote
				out.WriteRune(char)
			case char == '"':
				state = stateDoubleQuote
				out.WriteRune(char)
			default:
				out.WriteRune(char)
			}
		case stateSingleQuote:
			out.WriteRune(char)
			if char == '\'' && (i == 0 || runes[i-1] != '\\') {
				state = stateNormal
			}
		case stateDoubleQuote:
			out.WriteRune(char)
			if char == '"' && (i == 0 || runes[i-1] != '\\') {
				state = stateNormal
			}
		case stateLineComment:
			if char == '\n' {
				state = stateNormal
				out.WriteRune(char)
			}
		case stateBlockComment:
			if char == '*' && next == '/' {
				state = stateNormal
				i++
			}
		}
	}

	return out.String()
}

// hasSemicolonOutsideStrings returns true if the SQL contains any semicolon
// outside of string literals.
func hasSemicolonOutsideStrings(sqlQuery string) bool {
	state := stateNormal
	prevChar := rune(0)

	for _, char := range sqlQuery {
		switch state {
		case stateNormal:
			switch char {
			case ';':
				return true
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			}
		case stateSingleQuote:
			// Handle both backslash escape (\') and SQL standard escape ('').
			// For a doubled quote this exits and immediately re-enters on the
			// next quote, which correctly keeps us in the string.
			if char == '\'' && prevChar != '\\' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if char == '"' && prevChar != '\\' {
				state = stateNormal
			}
		}
		prevChar = char
	}

	return false
}

// maskStrings blanks out string literal contents so keyword scans cannot
// match inside them.
func maskStrings(sqlQuery string) string {
	var out strings.Builder
	out.Grow(len(sqlQuery))

	state := stateNormal
	prevChar := rune(0)
	for _, char := range sqlQuery {
		switch state {
		case stateNormal:
			switch char {
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			}
			out.WriteRune(char)
		case stateSingleQuote:
			if char == '\'' && prevChar != '\\' {
				state = stateNormal
				out.WriteRune(char)
			} else {
				out.WriteRune(' ')
			}
		case stateDoubleQuote:
			if char == '"' && prevChar != '\\' {
				state = stateNormal
				out.WriteRune(char)
			} else {
				out.WriteRune(' ')
			}
		}
		prevChar = char
	}

	return out.String()
}

// stripTrailingSemicolon removes a trailing semicolon and any whitespace around it.
func stripTrailingSemicolon(sqlQuery string) string {
	sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	if strings.HasSuffix(sqlQuery, ";") {
		sqlQuery = strings.TrimSuffix(sqlQuery, ";")
		sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	}
	return sqlQuery
}
