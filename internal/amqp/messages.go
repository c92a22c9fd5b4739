package amqp

import (
	"encoding/json"
	"time"

	"transferdash/internal/core"
	"transferdash/internal/refresh"
)

// RoutingKeyPrefix is followed by the cycle status, e.g. transfers.snapshot.ok.
const RoutingKeyPrefix = "transfers.snapshot."

// SnapshotMessage summarizes one refresh cycle for downstream consumers.
type SnapshotMessage struct {
	GeneratedAt     time.Time  `json:"generated_at"`
	Status          string     `json:"status"`
	Total           int        `json:"total"`
	Skipped         int        `json:"skipped"`
	Today           int        `json:"today"`
	ThisWeek        int        `json:"this_week"`
	ThisMonth       int        `json:"this_month"`
	DailyChange     core.Delta `json:"daily_change"`
	WeeklyChange    core.Delta `json:"weekly_change"`
	MonthlyChange   core.Delta `json:"monthly_change"`
	TopAgentToday   string     `json:"top_agent_today"`
	MostTransferred string     `json:"most_transferred"`
	Error           string     `json:"error,omitempty"`
}

// NewSnapshotMessage builds the message for a published state.
func NewSnapshotMessage(st refresh.State) *SnapshotMessage {
	s := st.Snapshot
	return &SnapshotMessage{
		GeneratedAt:     st.UpdatedAt,
		Status:          string(st.Status),
		Total:           s.Total,
		Skipped:         s.Skipped,
		Today:           s.Count(core.WindowToday),
		ThisWeek:        s.Count(core.WindowThisWeek),
		ThisMonth:       s.Count(core.WindowThisMonth),
		DailyChange:     s.DailyChange,
		WeeklyChange:    s.WeeklyChange,
		MonthlyChange:   s.MonthlyChange,
		TopAgentToday:   s.TopAgentToday,
		MostTransferred: s.MostTransferred,
		Error:           st.Err,
	}
}

// RoutingKey returns the topic key for the message status.
func (m *SnapshotMessage) RoutingKey() string {
	return RoutingKeyPrefix + m.Status
}

// ToJSON converts the message to JSON bytes
func (m *SnapshotMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotMessageFromJSON creates a message from JSON bytes
func SnapshotMessageFromJSON(data []byte) (*SnapshotMessage, error) {
	var msg SnapshotMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
