package rdriver

import (
	"fmt"
	"strconv"
)

// formatDataTime renders a data time with the four-decimal-place
// resolution the wire format requires, as the data-time ARGV of the
// insert, update and upsert scripts.
func formatDataTime(t float64) string {
	return strconv.FormatFloat(t, 'f', 4, 64)
}

// toFloat64 converts a script reply element (a RESP bulk string, since
// Lua returns zset scores and ARGV echoes as strings) to a float64.
func toFloat64(v interface{}) (float64, error) {
	switch x := v.(type) {
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, fmt.Errorf("toFloat64: %q: %w", x, err)
		}
		return f, nil
	case int64:
		return float64(x), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("toFloat64: unsupported type %T", v)
	}
}

// toInt64 converts a script reply element (int64, string, or nil) to an
// int64. Lua integers cross RESP as integer replies; nils and strings from
// ZRANGE WITHSCORES passthrough arrive as other Go types depending on the
// go-redis reply parser in use.
func toInt64(v interface{}) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case string:
		var n int64
		if _, err := fmt.Sscanf(x, "%d", &n); err != nil {
			return 0, fmt.Errorf("toInt64: %q: %w", x, err)
		}
		return n, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("toInt64: unsupported type %T", v)
	}
}

func toString(v interface{}) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("toString: unsupported type %T", v)
	}
}

func toBytes(v interface{}) ([]byte, error) {
	s, err := toString(v)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}
