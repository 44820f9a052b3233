package appointmentRepo

import (
	"context"
	"time"

	"notaryops/models"
)

// AppointmentRepository persists internal appointment records and their
// references to external calendar events.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	Update(ctx context.Context, appt *models.Appointment) error
	SetCalendarRef(ctx context.Context, id, eventID string, status models.SyncStatus) error
	ClearCalendarRef(ctx context.Context, id string) error
	ListByWorkerAndRange(ctx context.Context, workerID string, from, to time.Time) ([]models.Appointment, error)
	ListUnsyncedByWorker(ctx context.Context, workerID string) ([]models.Appointment, error)
}
