package refresh

import (
	"time"

	"transferdash/internal/core"
)

// Status describes the outcome of the latest cycle.
type Status string

const (
	// StatusPending means no cycle has finished yet.
	StatusPending Status = "pending"
	// StatusOK means the source returned at least one usable record.
	StatusOK Status = "ok"
	// StatusEmpty means the fetch worked but produced no usable records.
	StatusEmpty Status = "empty"
	// StatusError means the fetch failed. The snapshot is the empty sentinel.
	StatusError Status = "error"
)

// State is the immutable value published after every cycle.
type State struct {
	Status              Status        `json:"status"`
	Snapshot            core.Snapshot `json:"snapshot"`
	Err                 string        `json:"error,omitempty"`
	UpdatedAt           time.Time     `json:"updated_at"`
	NextRefreshAt       time.Time     `json:"next_refresh_at"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
	Took                time.Duration `json:"-"`
}

// Ready reports whether at least one cycle has completed.
func (s State) Ready() bool {
	return s.Status != StatusPending
}

// HasData reports whether the snapshot carries transfers worth rendering.
func (s State) HasData() bool {
	return s.Status == StatusOK
}

// PendingState is the state before the first cycle.
func PendingState(now time.Time) State {
	return State{
		Status:   StatusPending,
		Snapshot: core.EmptySnapshot(now),
	}
}
