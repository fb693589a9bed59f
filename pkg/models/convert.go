package models

import "strconv"

// Row values arrive as whatever JSON-safe type the driver produced: int64
// from pgx, []byte-turned-string from mysql, uint64 from clickhouse. These
// helpers coerce them to the type a caller expects.

// AsString converts a row value to its string form. Nil yields "".
func AsString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// AsInt64 converts a row value to int64, tolerating the numeric and string
// encodings different drivers use for counts.
func AsInt64(v any) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case uint64:
		return int64(val)
	case uint32:
		return int64(val)
	case float64:
		return int64(val)
	case string:
		n, _ := strconv.ParseInt(val, 10, 64)
		return n
	default:
		return 0
	}
}

// AsFloat64 converts a row value to float64. The second result is false
// when the value is nil or not numeric.
func AsFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case int:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// AsBool converts a row value to bool. Databases encode booleans as bool,
// 0/1, or "0"/"1" depending on dialect.
func AsBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case int64:
		return val != 0
	case uint64:
		return val != 0
	case uint8:
		return val != 0
	case float64:
		return val != 0
	case string:
		return val == "1" || val == "true" || val == "YES"
	default:
		return false
	}
}

// AsInt64Ptr converts a row value to *int64, mapping nil to nil.
func AsInt64Ptr(v any) *int64 {
	if v == nil {
		return nil
	}
	n := AsInt64(v)
	return &n
}

// AsStringPtr converts a row value to *string, mapping nil and "" to nil.
func AsStringPtr(v any) *string {
	if v == nil {
		return nil
	}
	s := AsString(v)
	if s == "" {
		return nil
	}
	return &s
}
