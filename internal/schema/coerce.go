package schema

import (
	"fmt"
	"math"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// CoerceDate converts a loosely typed value into a UTC time. Strings are
// matched against the common date layouts, numbers are epoch milliseconds.
func CoerceDate(v interface{}) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d.UTC(), nil
	case *time.Time:
		if d == nil {
			return time.Time{}, fmt.Errorf("expected date, received null")
		}
		return d.UTC(), nil
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return time.Time{}, fmt.Errorf("invalid date %q", d)
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("invalid date %q", d)
	case int:
		return time.UnixMilli(int64(d)).UTC(), nil
	case int64:
		return time.UnixMilli(d).UTC(), nil
	case uint64:
		if d > math.MaxInt64 {
			return time.Time{}, fmt.Errorf("invalid date %d", d)
		}
		return time.UnixMilli(int64(d)).UTC(), nil
	case float64:
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return time.Time{}, fmt.Errorf("invalid date %v", d)
		}
		return time.UnixMilli(int64(d)).UTC(), nil
	case nil:
		return time.Time{}, fmt.Errorf("required")
	default:
		return time.Time{}, fmt.Errorf("expected date, received %s", typeName(v))
	}
}

func text(raw Raw, field string, nonEmpty bool, fe *fieldErrors) string {
	v, ok := raw[field]
	if !ok || v == nil {
		fe.add(field, "required")
		return ""
	}
	s, ok := v.(string)
	if !ok {
		fe.add(field, "expected string, received %s", typeName(v))
		return ""
	}
	if nonEmpty && strings.TrimSpace(s) == "" {
		fe.add(field, "must not be empty")
	}
	return s
}

func date(raw Raw, field string, fe *fieldErrors) time.Time {
	t, err := CoerceDate(raw[field])
	if err != nil {
		fe.add(field, "%s", err.Error())
	}
	return t
}

func typeName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return "number"
	case []interface{}:
		return "array"
	case map[string]interface{}, map[interface{}]interface{}, Raw:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
