package workerRepo

import (
	"context"

	"notaryops/models"
)

// WorkerRepository persists worker profiles, including the stored calendar
// credential used to authenticate per-worker calendar access.
type WorkerRepository interface {
	GetByID(ctx context.Context, id string) (*models.WorkerProfile, error)
	Create(ctx context.Context, worker *models.WorkerProfile) error
	Update(ctx context.Context, worker *models.WorkerProfile) error
	UpdateLastLocation(ctx context.Context, id string, loc models.Location) error
	SetCalendarCredential(ctx context.Context, id, refreshToken string) error
}
