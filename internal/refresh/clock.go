package refresh

import "time"

// Clock abstracts the wall clock so cycles can be driven by tests.
type Clock struct {
	Now   func() time.Time
	After func(d time.Duration) <-chan time.Time
}

// SystemClock reads the wall clock in loc.
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return Clock{
		Now:   func() time.Time { return time.Now().In(loc) },
		After: time.After,
	}
}

// NextWait returns how long to wait after a cycle. With backoffMax above
// interval the wait doubles per consecutive failure up to backoffMax;
// otherwise it is always interval.
func NextWait(interval, backoffMax time.Duration, failures int) time.Duration {
	if failures <= 0 || backoffMax <= interval {
		return interval
	}
	wait := interval
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= backoffMax {
			return backoffMax
		}
	}
	return wait
}
