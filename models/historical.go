package models

import "time"

// HistoricalSnapshot is the versioned read model the offline batch job
// derives from the audit journal. The optimizer receives it as part of its
// input snapshot; it is never mutated in place.
type HistoricalSnapshot struct {
	Version           int64          `json:"version"` // unix seconds of the rebuild
	BookingCount      int            `json:"bookingCount"`
	CompletedByWorker map[string]int `json:"completedByWorker"`
	ConflictCount     int            `json:"conflictCount"`
	GeneratedAt       time.Time      `json:"generatedAt"`
}

// DataPoints returns how many historical bookings back the scoring weights.
func (s *HistoricalSnapshot) DataPoints() int {
	if s == nil {
		return 0
	}
	return s.BookingCount
}
