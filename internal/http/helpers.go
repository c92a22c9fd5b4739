package http

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"transferdash/internal/core"
	"transferdash/internal/refresh"
)

const displayLayout = "2006-01-02 15:04:05"

type card struct {
	Label string
	Count int
	Delta *core.Delta
}

type dashboardView struct {
	Status          refresh.Status
	Error           string
	HasData         bool
	UpdatedAt       string
	NextRefresh     string
	Interval        string
	IntervalSeconds int

	Cards           []card
	TopToday        string
	TopWeek         string
	TopMonth        string
	Lowest          string
	MostTransferred string
	Leaderboard     []core.LeaderboardEntry
	Destinations    core.Ranking

	AllAgents  string
	AgentNames []string
	Selected   string
	Agent      core.AgentDetail

	Trends map[core.Period]core.Series
}

func (s *Server) dashboardView(st refresh.State, agent string) dashboardView {
	snap := st.Snapshot
	interval := s.state.Interval()

	selected := strings.TrimSpace(agent)
	if selected == "" || !snap.HasAgent(selected) {
		selected = core.AllAgents
	}

	v := dashboardView{
		Status:          st.Status,
		Error:           st.Err,
		HasData:         st.HasData(),
		UpdatedAt:       formatTime(st.UpdatedAt, s.loc),
		NextRefresh:     formatTime(st.NextRefreshAt, s.loc),
		Interval:        interval.String(),
		IntervalSeconds: int(interval / time.Second),
		TopToday:        snap.TopAgentToday,
		TopWeek:         snap.TopAgentWeek,
		TopMonth:        snap.TopAgentMonth,
		Lowest:          snap.LowestPerformer,
		MostTransferred: snap.MostTransferred,
		Leaderboard:     snap.Leaderboard(leaderboardSize),
		Destinations:    snap.Destinations,
		AllAgents:       core.AllAgents,
		AgentNames:      snap.AgentNames(),
		Selected:        selected,
		Agent:           snap.Agent(selected),
		Trends: map[core.Period]core.Series{
			core.PeriodDaily:   snap.Trend(core.PeriodDaily),
			core.PeriodWeekly:  snap.Trend(core.PeriodWeekly),
			core.PeriodMonthly: snap.Trend(core.PeriodMonthly),
		},
	}
	if v.IntervalSeconds < 1 {
		v.IntervalSeconds = 1
	}

	daily, weekly, monthly := snap.DailyChange, snap.WeeklyChange, snap.MonthlyChange
	v.Cards = []card{
		{Label: "Today", Count: snap.Count(core.WindowToday), Delta: &daily},
		{Label: "This week", Count: snap.Count(core.WindowThisWeek), Delta: &weekly},
		{Label: "This month", Count: snap.Count(core.WindowThisMonth), Delta: &monthly},
		{Label: "All time", Count: snap.Total},
	}
	return v
}

func templateFuncs(loc *time.Location) template.FuncMap {
	return template.FuncMap{
		"delta":      formatDelta,
		"deltaClass": deltaClass,
		"fmtTime": func(t time.Time) string {
			return formatTime(t, loc)
		},
	}
}

// formatDelta renders a delta against the previous window.
func formatDelta(d *core.Delta) string {
	switch {
	case d.NewActivity:
		return fmt.Sprintf("New activity (+%d)", d.Current)
	case d.Percent > 0:
		return fmt.Sprintf("+%.1f%% vs previous", d.Percent)
	default:
		return fmt.Sprintf("%.1f%% vs previous", d.Percent)
	}
}

func deltaClass(d *core.Delta) string {
	switch {
	case d.NewActivity:
		return "new"
	case d.Percent > 0:
		return "up"
	case d.Percent < 0:
		return "down"
	default:
		return "flat"
	}
}

func formatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "never"
	}
	return t.In(loc).Format(displayLayout)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
