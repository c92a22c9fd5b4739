// Package core holds the transfer domain: calendar windows, record
// aggregation, rankings and trend series. Everything here is pure.
package core

import (
	"strings"
	"time"
)

// NoData is the marker used for ranking fields when a window has no transfers.
const NoData = "N/A"

// AllAgents selects every record in agent drill-down views.
const AllAgents = "All Agents"

type (
	// TransferRecord is one row of the source table. Empty strings stand for
	// missing values; a zero Timestamp means the source value was missing or
	// could not be parsed.
	TransferRecord struct {
		Timestamp    time.Time `json:"timestamp"`
		AgentName    string    `json:"agent_name"`
		TransferTo   string    `json:"transfer_to"`
		CustomerName string    `json:"customer_name"`
		ElectricBill string    `json:"electric_bill"`
		CreditScore  string    `json:"credit_score"`
	}

	// DateRange is a half-open interval [Start, End).
	DateRange struct {
		Start time.Time `json:"start"`
		End   time.Time `json:"end"`
	}
)

// HasTimestamp reports whether the record carries a usable timestamp.
func (r TransferRecord) HasTimestamp() bool {
	return !r.Timestamp.IsZero()
}

// Agent returns the trimmed agent name.
func (r TransferRecord) Agent() string {
	return strings.TrimSpace(r.AgentName)
}

// Destination returns the trimmed transfer destination.
func (r TransferRecord) Destination() string {
	return strings.TrimSpace(r.TransferTo)
}

// Contains reports whether t falls in [Start, End).
func (d DateRange) Contains(t time.Time) bool {
	return !t.Before(d.Start) && t.Before(d.End)
}

// Valid reports whether Start is strictly before End.
func (d DateRange) Valid() bool {
	return d.Start.Before(d.End)
}

// Duration returns the wall-clock length of the range.
func (d DateRange) Duration() time.Duration {
	return d.End.Sub(d.Start)
}

// Filter returns the records whose timestamp falls in the range, preserving order.
func (d DateRange) Filter(records []TransferRecord) []TransferRecord {
	out := make([]TransferRecord, 0)
	for _, r := range records {
		if r.HasTimestamp() && d.Contains(r.Timestamp) {
			out = append(out, r)
		}
	}
	return out
}

func (d DateRange) String() string {
	return "[" + d.Start.Format(time.RFC3339) + ", " + d.End.Format(time.RFC3339) + ")"
}
