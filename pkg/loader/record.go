package loader

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Record is one product row as returned by the data source. Keys are the
// spreadsheet column headers; values are JSON scalars.
type Record map[string]any

// String returns the value stored under key rendered as display text.
// Missing keys and nulls render as the empty string, integral numbers drop
// the fractional part and nested values are rendered as compact JSON.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok {
		return ""
	}
	return Stringify(v)
}

// Stringify renders a scalar value the way it is shown and matched.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case json.Number:
		return t.String()
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format(time.DateOnly)
		}
		return t.Format(time.RFC3339)
	case fmt.Stringer:
		return t.String()
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

// Keys returns the preferred keys followed by every other key found in
// records, sorted.
func Keys(records []Record, preferred []string) []string {
	seen := make(map[string]struct{}, len(preferred))
	keys := make([]string, 0, len(preferred))
	for _, k := range preferred {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	var extra []string
	for _, r := range records {
		for k := range r {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}
