package auditRepo

import (
	"context"
	"time"

	"notaryops/models"
)

// AuditRepository is the append-only journal of calendar writes and
// detected conflicts. The historical read-model job replays it offline.
type AuditRepository interface {
	Append(ctx context.Context, entry models.AuditEntry) error
	ListSince(ctx context.Context, since time.Time) ([]models.AuditEntry, error)
}
