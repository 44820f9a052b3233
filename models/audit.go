package models

import "time"

// AuditAction is the closed set of journaled action kinds.
type AuditAction string

const (
	AuditEventCreated     AuditAction = "calendar_event_created"
	AuditEventUpdated     AuditAction = "calendar_event_updated"
	AuditEventDeleted     AuditAction = "calendar_event_deleted"
	AuditConflictDetected AuditAction = "conflict_detected"
	AuditOptimizationDone AuditAction = "optimization_completed"
)

// AuditEntry is one append-only journal record. The journal doubles as the
// source for the offline historical read-model job.
type AuditEntry struct {
	ID        string      `bson:"id" json:"id"`
	WorkerID  string      `bson:"workerId" json:"workerId"`
	Action    AuditAction `bson:"action" json:"action"`
	Details   string      `bson:"details" json:"details"` // serialized payload
	CreatedAt time.Time   `bson:"createdAt" json:"createdAt"`
}
