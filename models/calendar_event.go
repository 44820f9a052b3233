package models

import (
	"fmt"
	"strings"
	"time"
)

// CalendarEvent is the engine's view of an external calendar event. The ID
// is an opaque identifier owned by the external calendar.
type CalendarEvent struct {
	ID            string             `json:"id,omitempty"`
	Title         string             `json:"title"`
	Description   string             `json:"description,omitempty"`
	Start         time.Time          `json:"start"`
	End           time.Time          `json:"end"`
	Timezone      string             `json:"timezone,omitempty"` // IANA zone; business home zone when empty
	Location      string             `json:"location,omitempty"`
	Attendees     []string           `json:"attendees,omitempty"`
	AppointmentID string             `json:"appointmentId,omitempty"`
	Recurrence    *RecurrencePattern `json:"recurrence,omitempty"`
}

// Overlaps reports whether the event intersects [start, end).
func (e CalendarEvent) Overlaps(start, end time.Time) bool {
	return e.Start.Before(end) && start.Before(e.End)
}

// RecurrencePattern describes a repeating event.
type RecurrencePattern struct {
	Frequency  string     `json:"frequency"` // "daily", "weekly", "monthly"
	Interval   int        `json:"interval"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	DaysOfWeek []int      `json:"daysOfWeek,omitempty"` // 0 = Sunday
}

var rruleDayNames = [...]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// RRule serializes the pattern as an iCalendar RRULE string.
func (p RecurrencePattern) RRule() string {
	var b strings.Builder
	fmt.Fprintf(&b, "RRULE:FREQ=%s", strings.ToUpper(p.Frequency))
	if p.Interval > 1 {
		fmt.Fprintf(&b, ";INTERVAL=%d", p.Interval)
	}
	if p.EndDate != nil {
		fmt.Fprintf(&b, ";UNTIL=%s", p.EndDate.UTC().Format("20060102T150405Z"))
	}
	if len(p.DaysOfWeek) > 0 {
		days := make([]string, 0, len(p.DaysOfWeek))
		for _, d := range p.DaysOfWeek {
			if d >= 0 && d < len(rruleDayNames) {
				days = append(days, rruleDayNames[d])
			}
		}
		fmt.Fprintf(&b, ";BYDAY=%s", strings.Join(days, ","))
	}
	return b.String()
}

// EventPatch carries the fields an update intends to change. Nil fields are
// left untouched on the external event.
type EventPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
	Timezone    *string    `json:"timezone,omitempty"`
}

// IsZero reports whether the patch changes nothing.
func (p EventPatch) IsZero() bool {
	return p.Title == nil && p.Description == nil && p.Location == nil &&
		p.Start == nil && p.End == nil && p.Timezone == nil
}
