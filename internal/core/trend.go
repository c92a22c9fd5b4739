package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Period selects the bucket size of a trend series.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// ParsePeriod maps a query value to a Period, defaulting to daily.
func ParsePeriod(s string) Period {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case PeriodWeekly:
		return PeriodWeekly
	case PeriodMonthly:
		return PeriodMonthly
	default:
		return PeriodDaily
	}
}

// TrendPoint is one bucket of a trend series.
type TrendPoint struct {
	Label     string `json:"label"`
	Transfers int    `json:"transfers"`
}

// Series is ordered oldest first.
type Series []TrendPoint

// Chartable reports whether the series has enough points to draw a line.
func (s Series) Chartable() bool {
	return len(s) > 1
}

// DailySeries counts transfers per calendar date.
func DailySeries(records []TransferRecord) Series {
	return bucket(records, func(t time.Time) string {
		return t.Format("2006-01-02")
	})
}

// WeeklySeries counts transfers per ISO week, labelled YYYY-Www.
func WeeklySeries(records []TransferRecord) Series {
	return bucket(records, func(t time.Time) string {
		y, w := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w)
	})
}

// MonthlySeries counts transfers per calendar month, labelled YYYY-MM.
func MonthlySeries(records []TransferRecord) Series {
	return bucket(records, func(t time.Time) string {
		return t.Format("2006-01")
	})
}

// SeriesFor dispatches on period.
func SeriesFor(p Period, records []TransferRecord) Series {
	switch p {
	case PeriodWeekly:
		return WeeklySeries(records)
	case PeriodMonthly:
		return MonthlySeries(records)
	default:
		return DailySeries(records)
	}
}

// Trend returns the snapshot's series for the given period.
func (s Snapshot) Trend(p Period) Series {
	return SeriesFor(p, s.Records)
}

// Labels are zero-padded so lexical order is chronological order.
func bucket(records []TransferRecord, label func(time.Time) string) Series {
	counts := make(map[string]int)
	for _, r := range records {
		if !r.HasTimestamp() {
			continue
		}
		counts[label(r.Timestamp)]++
	}
	out := make(Series, 0, len(counts))
	for l, n := range counts {
		out = append(out, TrendPoint{Label: l, Transfers: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}
