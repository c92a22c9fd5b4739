package core

import "time"

// Window names the calendar buckets used by the dashboard.
type Window string

const (
	WindowToday     Window = "today"
	WindowYesterday Window = "yesterday"
	WindowThisWeek  Window = "this_week"
	WindowLastWeek  Window = "last_week"
	WindowThisMonth Window = "this_month"
	WindowLastMonth Window = "last_month"
)

// AllWindows lists every window in display order.
var AllWindows = []Window{
	WindowToday, WindowYesterday,
	WindowThisWeek, WindowLastWeek,
	WindowThisMonth, WindowLastMonth,
}

// midnight returns the start of t's calendar day in t's location.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// TodayRange returns [midnight of now, next midnight).
func TodayRange(now time.Time) DateRange {
	start := midnight(now)
	return DateRange{Start: start, End: start.AddDate(0, 0, 1)}
}

// YesterdayRange is TodayRange one calendar day earlier.
func YesterdayRange(now time.Time) DateRange {
	return TodayRange(now.AddDate(0, 0, -1))
}

// WeekRange returns the Monday-start week containing now shifted back by
// offset weeks. offset 0 is the current week, 1 the previous one.
func WeekRange(now time.Time, offset int) DateRange {
	ref := now.AddDate(0, 0, -7*offset)
	// ISO weekday: Monday=1 .. Sunday=7
	weekday := int(ref.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	start := midnight(ref.AddDate(0, 0, -(weekday - 1)))
	return DateRange{Start: start, End: start.AddDate(0, 0, 7)}
}

// MonthRange returns the calendar month of now shifted back by offset months.
func MonthRange(now time.Time, offset int) DateRange {
	year := now.Year()
	month := int(now.Month()) - offset
	for month <= 0 {
		month += 12
		year--
	}
	for month > 12 {
		month -= 12
		year++
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, now.Location())
	var end time.Time
	if month == 12 {
		end = time.Date(year+1, time.January, 1, 0, 0, 0, 0, now.Location())
	} else {
		end = time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, now.Location())
	}
	return DateRange{Start: start, End: end}
}

// RangeFor resolves a named window relative to now.
func RangeFor(w Window, now time.Time) (DateRange, bool) {
	switch w {
	case WindowToday:
		return TodayRange(now), true
	case WindowYesterday:
		return YesterdayRange(now), true
	case WindowThisWeek:
		return WeekRange(now, 0), true
	case WindowLastWeek:
		return WeekRange(now, 1), true
	case WindowThisMonth:
		return MonthRange(now, 0), true
	case WindowLastMonth:
		return MonthRange(now, 1), true
	default:
		return DateRange{}, false
	}
}

// Windows returns all six named ranges for now.
func Windows(now time.Time) map[Window]DateRange {
	out := make(map[Window]DateRange, len(AllWindows))
	for _, w := range AllWindows {
		r, _ := RangeFor(w, now)
		out[w] = r
	}
	return out
}
