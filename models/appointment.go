package models

import "time"

// SyncStatus is the reconciliation state of an appointment with respect to
// its external calendar counterpart.
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusRemoved SyncStatus = "removed"
)

// ScheduledAppointment is the planning output for one placed request.
type ScheduledAppointment struct {
	RequestID          string    `bson:"requestId" json:"requestId"`
	WorkerID           string    `bson:"workerId" json:"workerId"`
	ServiceType        string    `bson:"serviceType" json:"serviceType"`
	ScheduledTime      time.Time `bson:"scheduledTime" json:"scheduledTime"`
	DurationMinutes    int       `bson:"durationMinutes" json:"durationMinutes"`
	Location           Location  `bson:"location" json:"location"`
	TravelTimeFromPrev int       `bson:"travelTimeFromPrev" json:"travelTimeFromPrev"` // minutes
	Price              float64   `bson:"price" json:"price"`
	ConfidenceScore    float64   `bson:"confidenceScore" json:"confidenceScore"`
	LeadBufferMinutes  int       `bson:"leadBufferMinutes" json:"leadBufferMinutes"`
	TrailBufferMinutes int       `bson:"trailBufferMinutes" json:"trailBufferMinutes"`
}

// End returns the exclusive end of the core interval.
func (a ScheduledAppointment) End() time.Time {
	return a.ScheduledTime.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// Appointment is the persisted record a finalized ScheduledAppointment
// becomes. It carries the durable reference to the external calendar event.
type Appointment struct {
	ID                 string     `bson:"id" json:"id"`
	RequestID          string     `bson:"requestId" json:"requestId"`
	WorkerID           string     `bson:"workerId" json:"workerId"`
	ServiceType        string     `bson:"serviceType" json:"serviceType"`
	ScheduledTime      time.Time  `bson:"scheduledTime" json:"scheduledTime"`
	DurationMinutes    int        `bson:"durationMinutes" json:"durationMinutes"`
	Location           Location   `bson:"location" json:"location"`
	CustomerName       string     `bson:"customerName,omitempty" json:"customerName,omitempty"`
	CustomerEmail      string     `bson:"customerEmail,omitempty" json:"customerEmail,omitempty"`
	Price              float64    `bson:"price" json:"price"`
	CalendarEventID    string     `bson:"calendarEventId,omitempty" json:"calendarEventId,omitempty"`
	SyncStatus         SyncStatus `bson:"syncStatus" json:"syncStatus"`
	LeadBufferMinutes  int        `bson:"leadBufferMinutes" json:"leadBufferMinutes"`
	TrailBufferMinutes int        `bson:"trailBufferMinutes" json:"trailBufferMinutes"`
	CreatedAt          time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// End returns the exclusive end of the appointment's core interval.
func (a Appointment) End() time.Time {
	return a.ScheduledTime.Add(time.Duration(a.DurationMinutes) * time.Minute)
}
