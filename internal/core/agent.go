package core

import (
	"sort"
	"strings"
)

// RecentLimit caps the recent-transfers table in agent views.
const RecentLimit = 10

type (
	// AgentDetail is the drill-down view for one agent, or for every agent
	// when Name is AllAgents.
	AgentDetail struct {
		Name      string           `json:"name"`
		Total     int              `json:"total"`
		Today     int              `json:"today"`
		ThisWeek  int              `json:"this_week"`
		ThisMonth int              `json:"this_month"`
		Recent    []TransferRecord `json:"recent"`
	}

	// LeaderboardEntry is one ranked row of the all-time agent table.
	LeaderboardEntry struct {
		Rank   int    `json:"rank"`
		Name   string `json:"name"`
		Count  int    `json:"count"`
		Lowest bool   `json:"lowest"`
	}
)

// Agent builds the drill-down view for name. An empty name or AllAgents
// selects every record.
func (s Snapshot) Agent(name string) AgentDetail {
	name = strings.TrimSpace(name)
	if name == "" || name == AllAgents {
		return AgentDetail{
			Name:      AllAgents,
			Total:     s.Total,
			Today:     s.Count(WindowToday),
			ThisWeek:  s.Count(WindowThisWeek),
			ThisMonth: s.Count(WindowThisMonth),
			Recent:    MostRecent(s.Records, RecentLimit),
		}
	}
	match := func(r TransferRecord) bool { return r.Agent() == name }
	return AgentDetail{
		Name:      name,
		Total:     countWhere(s.Records, match),
		Today:     countWhere(s.TodayRecords, match),
		ThisWeek:  countWhere(s.WeekRecords, match),
		ThisMonth: countWhere(s.MonthRecords, match),
		Recent:    MostRecent(filterWhere(s.Records, match), RecentLimit),
	}
}

// AgentNames returns every agent with at least one transfer, sorted by name.
func (s Snapshot) AgentNames() []string {
	names := make([]string, 0, len(s.AgentsAll))
	for _, c := range s.AgentsAll {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}

// HasAgent reports whether name appears in the all-time tally.
func (s Snapshot) HasAgent(name string) bool {
	for _, c := range s.AgentsAll {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Leaderboard returns the top n agents of all time. The lowest performer is
// flagged wherever it appears.
func (s Snapshot) Leaderboard(n int) []LeaderboardEntry {
	head := s.AgentsAll.Head(n)
	out := make([]LeaderboardEntry, 0, len(head))
	for i, c := range head {
		out = append(out, LeaderboardEntry{
			Rank:   i + 1,
			Name:   c.Name,
			Count:  c.Count,
			Lowest: c.Name == s.LowestPerformer,
		})
	}
	return out
}

// MostRecent returns up to n records, newest first. Equal timestamps keep
// their source order.
func MostRecent(records []TransferRecord, n int) []TransferRecord {
	out := make([]TransferRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func countWhere(records []TransferRecord, pred func(TransferRecord) bool) int {
	n := 0
	for _, r := range records {
		if pred(r) {
			n++
		}
	}
	return n
}

func filterWhere(records []TransferRecord, pred func(TransferRecord) bool) []TransferRecord {
	out := make([]TransferRecord, 0)
	for _, r := range records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}
