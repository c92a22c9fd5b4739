package core

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"3/4/2024 9:00:00", date(2024, 3, 4, 9, 0), true},
		{"03/04/2024 09:00:00", date(2024, 3, 4, 9, 0), true},
		{"2024-03-04 09:00:00", date(2024, 3, 4, 9, 0), true},
		{"3/4/2024 9:00", date(2024, 3, 4, 9, 0), true},
		{"2024-03-04T09:00:00Z", date(2024, 3, 4, 9, 0), true},
		{"2024-03-04", date(2024, 3, 4, 0, 0), true},
		{"3/4/2024 9:00:00 PM", date(2024, 3, 4, 21, 0), true},
		{"  ", time.Time{}, false},
		{"yesterday-ish", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.in, time.UTC)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseTimestamp_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	got, ok := ParseTimestamp("3/4/2024 9:00:00", loc)
	if !ok {
		t.Fatal("expected parse")
	}
	if got.Location() != loc || got.Hour() != 9 {
		t.Fatalf("naive timestamps must be read in the configured location, got %v", got)
	}
}

func TestParseTimestampColumn_DayFirstColumn(t *testing.T) {
	// 25/03 cannot be month-first, so the whole column is read day-first.
	col := []string{"25/03/2024 10:00:00", "04/03/2024 09:00:00", ""}
	got := ParseTimestampColumn(col, time.UTC)
	if !got[0].Equal(date(2024, 3, 25, 10, 0)) {
		t.Errorf("row 0 = %v", got[0])
	}
	if !got[1].Equal(date(2024, 3, 4, 9, 0)) {
		t.Errorf("row 1 = %v, want day-first reading", got[1])
	}
	if !got[2].IsZero() {
		t.Errorf("blank value should stay null, got %v", got[2])
	}
}

func TestParseTimestampColumn_MixedFallsBackPerValue(t *testing.T) {
	col := []string{"3/4/2024 9:00:00", "2024-03-05T10:00:00Z", "garbage"}
	got := ParseTimestampColumn(col, time.UTC)
	if !got[0].Equal(date(2024, 3, 4, 9, 0)) {
		t.Errorf("row 0 = %v", got[0])
	}
	if !got[1].Equal(date(2024, 3, 5, 10, 0)) {
		t.Errorf("row 1 = %v", got[1])
	}
	if !got[2].IsZero() {
		t.Errorf("garbage should be null, got %v", got[2])
	}
}
