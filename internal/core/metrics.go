package core

import "time"

type (
	// Delta compares a window with the one before it. Percent is 0 when the
	// previous window is empty; NewActivity flags growth from zero.
	Delta struct {
		Current     int     `json:"current"`
		Previous    int     `json:"previous"`
		Percent     float64 `json:"percent"`
		NewActivity bool    `json:"new_activity"`
	}

	// Snapshot is the immutable result of one aggregation cycle.
	Snapshot struct {
		GeneratedAt time.Time            `json:"generated_at"`
		Empty       bool                 `json:"empty"`
		Total       int                  `json:"total"`
		Skipped     int                  `json:"skipped"`
		Counts      map[Window]int       `json:"counts"`
		Ranges      map[Window]DateRange `json:"ranges"`

		Destinations    Ranking `json:"destinations"`
		MostTransferred string  `json:"most_transferred"`

		AgentsToday Ranking `json:"agents_today"`
		AgentsWeek  Ranking `json:"agents_week"`
		AgentsMonth Ranking `json:"agents_month"`
		AgentsAll   Ranking `json:"agents_all"`

		TopAgentToday   string `json:"top_agent_today"`
		TopAgentWeek    string `json:"top_agent_week"`
		TopAgentMonth   string `json:"top_agent_month"`
		LowestPerformer string `json:"lowest_performer"`

		DailyChange   Delta `json:"daily_change"`
		WeeklyChange  Delta `json:"weekly_change"`
		MonthlyChange Delta `json:"monthly_change"`

		// Partitions, kept so views can filter without re-bucketing.
		Records      []TransferRecord `json:"-"`
		TodayRecords []TransferRecord `json:"-"`
		WeekRecords  []TransferRecord `json:"-"`
		MonthRecords []TransferRecord `json:"-"`
	}
)

// PercentChange returns (current-previous)/previous*100, or 0 when previous is 0.
func PercentChange(current, previous int) float64 {
	if previous == 0 {
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}

// NewDelta builds a Delta from two window counts.
func NewDelta(current, previous int) Delta {
	return Delta{
		Current:     current,
		Previous:    previous,
		Percent:     PercentChange(current, previous),
		NewActivity: previous == 0 && current > 0,
	}
}

// EmptySnapshot is the zero-data sentinel returned for empty input.
func EmptySnapshot(now time.Time) Snapshot {
	counts := make(map[Window]int, len(AllWindows))
	for _, w := range AllWindows {
		counts[w] = 0
	}
	return Snapshot{
		GeneratedAt:     now,
		Empty:           true,
		Counts:          counts,
		Ranges:          Windows(now),
		Destinations:    Ranking{},
		MostTransferred: NoData,
		AgentsToday:     Ranking{},
		AgentsWeek:      Ranking{},
		AgentsMonth:     Ranking{},
		AgentsAll:       Ranking{},
		TopAgentToday:   NoData,
		TopAgentWeek:    NoData,
		TopAgentMonth:   NoData,
		LowestPerformer: NoData,
	}
}

// Aggregate computes a Snapshot from the full record set as of now. Records
// without a timestamp are dropped and counted in Skipped. It never fails.
func Aggregate(records []TransferRecord, now time.Time) Snapshot {
	valid := make([]TransferRecord, 0, len(records))
	for _, r := range records {
		if r.HasTimestamp() {
			valid = append(valid, r)
		}
	}

	snap := EmptySnapshot(now)
	snap.Skipped = len(records) - len(valid)
	if len(valid) == 0 {
		return snap
	}

	parts := make(map[Window][]TransferRecord, len(AllWindows))
	for w, rng := range snap.Ranges {
		parts[w] = rng.Filter(valid)
		snap.Counts[w] = len(parts[w])
	}

	snap.Empty = false
	snap.Total = len(valid)
	snap.Records = valid
	snap.TodayRecords = parts[WindowToday]
	snap.WeekRecords = parts[WindowThisWeek]
	snap.MonthRecords = parts[WindowThisMonth]

	snap.Destinations = ByDestination(valid)
	snap.MostTransferred = snap.Destinations.Top()

	snap.AgentsToday = ByAgent(snap.TodayRecords)
	snap.AgentsWeek = ByAgent(snap.WeekRecords)
	snap.AgentsMonth = ByAgent(snap.MonthRecords)
	snap.AgentsAll = ByAgent(valid)

	snap.TopAgentToday = snap.AgentsToday.Top()
	snap.TopAgentWeek = snap.AgentsWeek.Top()
	snap.TopAgentMonth = snap.AgentsMonth.Top()
	snap.LowestPerformer = snap.AgentsAll.Bottom()

	snap.DailyChange = NewDelta(snap.Counts[WindowToday], snap.Counts[WindowYesterday])
	snap.WeeklyChange = NewDelta(snap.Counts[WindowThisWeek], snap.Counts[WindowLastWeek])
	snap.MonthlyChange = NewDelta(snap.Counts[WindowThisMonth], snap.Counts[WindowLastMonth])

	return snap
}

// Count returns the number of transfers in the named window.
func (s Snapshot) Count(w Window) int {
	return s.Counts[w]
}
