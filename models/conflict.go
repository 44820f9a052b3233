package models

import "time"

// ConflictSeverity classifies how badly a proposed interval collides with
// an existing calendar event.
type ConflictSeverity string

const (
	// SeverityBlocking means the unexpanded proposed interval intersects the event.
	SeverityBlocking ConflictSeverity = "blocking"
	// SeverityBufferViolation means only the buffer-expanded window intersects it.
	SeverityBufferViolation ConflictSeverity = "buffer_violation"
)

// ConflictRecord is one detected overlap between a proposed interval and an
// existing external event. Ephemeral; logged to the audit journal only.
type ConflictRecord struct {
	EventID    string           `json:"eventId"`
	EventTitle string           `json:"eventTitle"`
	EventStart time.Time        `json:"eventStart"`
	EventEnd   time.Time        `json:"eventEnd"`
	Severity   ConflictSeverity `json:"severity"`
	WorkerID   string           `json:"workerId"`
}

// ConflictReport is the outcome of a conflict check.
type ConflictReport struct {
	HasConflict  bool             `json:"hasConflict"`
	Conflicts    []ConflictRecord `json:"conflicts"`
	Alternatives []time.Time      `json:"alternatives,omitempty"`
}

// HasBlocking reports whether any detected conflict is blocking.
func (r ConflictReport) HasBlocking() bool {
	for _, c := range r.Conflicts {
		if c.Severity == SeverityBlocking {
			return true
		}
	}
	return false
}
