package database

import (
	"database/sql"
	"database/sql/driver"
	"encoding"
	"encoding/base64"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/netip"
	"reflect"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// jsonValue converts a driver value into something encoding/json can always
// marshal. It never fails: anything unrecognized falls back to its string
// form.
func jsonValue(v any) any {
	if v == nil {
		return nil
	}

	switch val := v.(type) {
	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return val
	case float64:
		return jsonFloat(val)
	case float32:
		return jsonFloat(float64(val))
	case []byte:
		if utf8.Valid(val) {
			return string(val)
		}
		return base64.StdEncoding.EncodeToString(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case time.Duration:
		return val.String()
	case uuid.UUID:
		return val.String()
	case [16]byte:
		return uuid.UUID(val).String()
	case net.IP:
		return val.String()
	case netip.Addr:
		return val.String()
	case netip.Prefix:
		return val.String()
	case *big.Int:
		if val == nil {
			return nil
		}
		return val.String()
	case sql.NullString:
		if !val.Valid {
			return nil
		}
		return val.String
	case sql.NullTime:
		if !val.Valid {
			return nil
		}
		return val.Time.Format(time.RFC3339Nano)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = jsonValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = jsonValue(item)
		}
		return out
	}

	// Driver-specific wrapper types (pgtype values, clickhouse decimals)
	// usually expose one of these.
	if valuer, ok := v.(driver.Valuer); ok {
		if inner, err := valuer.Value(); err == nil {
			switch inner.(type) {
			case nil, bool, string, int64, float64, []byte, time.Time:
				return jsonValue(inner)
			}
		}
	}
	if tm, ok := v.(encoding.TextMarshaler); ok {
		if text, err := tm.MarshalText(); err == nil {
			return string(text)
		}
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}

	return reflectValue(reflect.ValueOf(v))
}

func jsonFloat(f float64) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	default:
		return f
	}
}

// reflectValue handles containers and pointers of types not covered by the
// direct switch, such as []int32 columns from array-typed results.
func reflectValue(rv reflect.Value) any {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return jsonValue(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = jsonValue(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		for _, key := range rv.MapKeys() {
			out[fmt.Sprintf("%v", key.Interface())] = jsonValue(rv.MapIndex(key).Interface())
		}
		return out
	default:
		return fmt.Sprintf("%v", rv.Interface())
	}
}
