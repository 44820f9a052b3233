package calendarsync

import (
	"context"
	"errors"
	"time"

	"notaryops/models"
)

// ErrAlreadySynced rejects a duplicate create for an appointment that
// already holds a synced external event identifier.
var ErrAlreadySynced = errors.New("appointment already synced to an external event")

// ErrNotSynced signals an update against an appointment with no stored
// external event reference.
var ErrNotSynced = errors.New("appointment has no external event reference")

// CalendarAPI is the port to the external calendar system. All times
// crossing it carry an explicit time zone.
type CalendarAPI interface {
	ListEvents(ctx context.Context, workerID string, from, to time.Time) ([]models.CalendarEvent, error)
	GetEvent(ctx context.Context, workerID, eventID string) (*models.CalendarEvent, error)
	InsertEvent(ctx context.Context, workerID string, event models.CalendarEvent) (string, error)
	PatchEvent(ctx context.Context, workerID, eventID string, patch models.EventPatch) error
	DeleteEvent(ctx context.Context, workerID, eventID string) error
}

// SyncService keeps the canonical external calendar event in lock-step
// with the internal appointment record. It is the only component that
// performs externally-visible writes.
type SyncService interface {
	CreateEvent(ctx context.Context, appointmentID string) (string, error)
	UpdateEvent(ctx context.Context, appointmentID string, patch models.EventPatch) error
	DeleteEvent(ctx context.Context, appointmentID string) error
	SyncAllForWorker(ctx context.Context, workerID string) (int, error)
}
