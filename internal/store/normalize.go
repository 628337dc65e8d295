package store

import (
	"strconv"
	"strings"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

// timestampLayouts are the text forms created_at has been stored in.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// epochMillisThreshold separates epoch seconds from epoch milliseconds.
// 1e11 seconds is far in the future; 1e11 milliseconds is 1973.
const epochMillisThreshold = 100_000_000_000

// parseTimestamp converts a stored created_at value into a UTC time. Values
// that cannot be interpreted fall back to now.
func parseTimestamp(v any, now time.Time) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case int64:
		return fromEpoch(t)
	case float64:
		return fromEpoch(int64(t))
	case []byte:
		return parseTimestamp(string(t), now)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			break
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return fromEpoch(n)
		}
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC()
			}
		}
	}
	return now.UTC()
}

func fromEpoch(n int64) time.Time {
	if n >= epochMillisThreshold {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}

// parseBool converts a stored flag (bool, 0/1, or text) into a bool. Missing
// values are false.
func parseBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case int64:
		return b != 0
	case float64:
		return b != 0
	case []byte:
		return parseBool(string(b))
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return err == nil && parsed
	}
	return false
}

// normalizeType defaults an empty type to found.
func normalizeType(t string) string {
	if t == "" {
		return model.ItemTypeFound
	}
	return t
}
