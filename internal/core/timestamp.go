package core

import (
	"strings"
	"time"
)

// ColumnLayouts are tried, in order, against a whole timestamp column. The
// first layout that parses every non-empty value is used for the column.
var ColumnLayouts = []string{
	"1/2/2006 15:04:05", // month/day/year, as exported by Google Forms
	"2006-1-2 15:04:05", // ISO-ish
	"2/1/2006 15:04:05", // day/month/year
	"1/2/2006 15:04",    // month/day/year without seconds
}

// fallbackLayouts extend ColumnLayouts for value-by-value coercion.
var fallbackLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-1-2T15:04:05",
	"2006-1-2 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"2006-1-2",
	"1/2/2006",
}

// ParseTimestamp coerces a single value, trying every known layout. Naive
// values are interpreted in loc. The boolean is false when nothing fits.
func ParseTimestamp(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range ColumnLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseTimestampColumn parses a column of values using a single layout when
// one fits all non-empty values, otherwise value by value. Failed values are
// returned as the zero time.
func ParseTimestampColumn(values []string, loc *time.Location) []time.Time {
	if loc == nil {
		loc = time.Local
	}
	out := make([]time.Time, len(values))
	for _, layout := range ColumnLayouts {
		if parseAll(values, layout, loc, out) {
			return out
		}
	}
	for i, v := range values {
		t, ok := ParseTimestamp(v, loc)
		if !ok {
			out[i] = time.Time{}
			continue
		}
		out[i] = t
	}
	return out
}

func parseAll(values []string, layout string, loc *time.Location, out []time.Time) bool {
	parsed := 0
	for i, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			out[i] = time.Time{}
			continue
		}
		t, err := time.ParseInLocation(layout, v, loc)
		if err != nil {
			return false
		}
		out[i] = t
		parsed++
	}
	return parsed > 0
}
