package calendarsync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	appointmentRepo "notaryops/database/repository/appointment"
	auditRepo "notaryops/database/repository/audit"
	"notaryops/models"
	"notaryops/services/scheduling"

	"go.uber.org/zap"
)

// DefaultSyncService implements SyncService.
type DefaultSyncService struct {
	Appointments appointmentRepo.AppointmentRepository
	Audit        auditRepo.AuditRepository
	Calendar     CalendarAPI
	Detector     *scheduling.ConflictDetector
	HomeZone     string
	Timeout      time.Duration

	locks *workerLocks
}

// NewSyncService wires the adapter with its per-worker commit locks.
func NewSyncService(appts appointmentRepo.AppointmentRepository, audit auditRepo.AuditRepository, cal CalendarAPI, detector *scheduling.ConflictDetector, homeZone string, timeout time.Duration) *DefaultSyncService {
	return &DefaultSyncService{
		Appointments: appts,
		Audit:        audit,
		Calendar:     cal,
		Detector:     detector,
		HomeZone:     homeZone,
		Timeout:      timeout,
		locks:        newWorkerLocks(),
	}
}

// CreateEvent re-checks conflicts (the schedule can go stale between
// planning and commit), writes the event to the external calendar and
// records the returned identifier against the appointment. The whole
// check-write-persist section holds the worker's commit lock. Re-issuing a
// create for an already-synced appointment is rejected, never duplicated.
func (s *DefaultSyncService) CreateEvent(ctx context.Context, appointmentID string) (string, error) {
	appt, err := s.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return "", fmt.Errorf("loading appointment %s: %w", appointmentID, err)
	}
	if appt.CalendarEventID != "" && appt.SyncStatus == models.SyncStatusSynced {
		return "", ErrAlreadySynced
	}

	lock := s.locks.get(appt.WorkerID)
	lock.Lock()
	defer lock.Unlock()

	// Re-load under the lock: a concurrent create for the same appointment
	// may have committed while this call waited on the lock.
	appt, err = s.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return "", fmt.Errorf("loading appointment %s: %w", appointmentID, err)
	}
	if appt.CalendarEventID != "" && appt.SyncStatus == models.SyncStatusSynced {
		return "", ErrAlreadySynced
	}

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	// Commit-time re-check. A read failure fails the create: the sync
	// status stays pending and nothing is written.
	report, err := s.Detector.Detect(ctx, appt.WorkerID, appt.ScheduledTime, appt.End(), appt.LeadBufferMinutes, appt.TrailBufferMinutes)
	if err != nil {
		return "", fmt.Errorf("commit-time conflict check for appointment %s: %w", appointmentID, err)
	}
	if report.HasBlocking() {
		first := report.Conflicts[0]
		return "", scheduling.BlockingConflictError{
			WorkerID:   appt.WorkerID,
			EventID:    first.EventID,
			EventTitle: first.EventTitle,
		}
	}

	event := eventForAppointment(appt, s.HomeZone)
	eventID, err := s.Calendar.InsertEvent(ctx, appt.WorkerID, event)
	if err != nil {
		// Includes timeouts: the write is treated as failed, never as
		// unknown-success, and the appointment stays pending.
		return "", fmt.Errorf("writing calendar event for appointment %s: %w", appointmentID, err)
	}

	if err := s.Appointments.SetCalendarRef(ctx, appointmentID, eventID, models.SyncStatusSynced); err != nil {
		return "", fmt.Errorf("recording event %s on appointment %s: %w", eventID, appointmentID, err)
	}

	s.journal(ctx, appt.WorkerID, models.AuditEventCreated, map[string]any{
		"eventId":       eventID,
		"appointmentId": appointmentID,
		"title":         event.Title,
		"start":         event.Start,
		"end":           event.End,
	})
	return eventID, nil
}

// UpdateEvent writes only the changed fields to the stored external event
// and mirrors any time or location change onto the appointment record.
func (s *DefaultSyncService) UpdateEvent(ctx context.Context, appointmentID string, patch models.EventPatch) error {
	appt, err := s.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return fmt.Errorf("loading appointment %s: %w", appointmentID, err)
	}
	if appt.CalendarEventID == "" {
		return ErrNotSynced
	}
	if patch.IsZero() {
		return nil
	}

	lock := s.locks.get(appt.WorkerID)
	lock.Lock()
	defer lock.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	// Confirm the event still exists before writing; the external system
	// can change state outside this engine's control.
	if _, err := s.Calendar.GetEvent(ctx, appt.WorkerID, appt.CalendarEventID); err != nil {
		return fmt.Errorf("fetching event %s for appointment %s: %w", appt.CalendarEventID, appointmentID, err)
	}
	if err := s.Calendar.PatchEvent(ctx, appt.WorkerID, appt.CalendarEventID, patch); err != nil {
		return fmt.Errorf("patching event for appointment %s: %w", appointmentID, err)
	}

	changed := false
	if patch.Start != nil {
		appt.ScheduledTime = *patch.Start
		changed = true
	}
	if patch.End != nil {
		// The duration is derived from the effective start, which is the
		// patched one when both ends move together.
		appt.DurationMinutes = int(patch.End.Sub(appt.ScheduledTime) / time.Minute)
		changed = true
	}
	if patch.Location != nil {
		appt.Location.Address = *patch.Location
		changed = true
	}
	if changed {
		if err := s.Appointments.Update(ctx, appt); err != nil {
			return fmt.Errorf("updating appointment %s after patch: %w", appointmentID, err)
		}
	}

	s.journal(ctx, appt.WorkerID, models.AuditEventUpdated, map[string]any{
		"eventId":       appt.CalendarEventID,
		"appointmentId": appointmentID,
		"patch":         patch,
	})
	return nil
}

// DeleteEvent removes the external event, clears the stored reference and
// marks the appointment removed. Retrying a delete after the reference was
// cleared is a no-op.
func (s *DefaultSyncService) DeleteEvent(ctx context.Context, appointmentID string) error {
	appt, err := s.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return fmt.Errorf("loading appointment %s: %w", appointmentID, err)
	}
	if appt.CalendarEventID == "" {
		return nil
	}

	lock := s.locks.get(appt.WorkerID)
	lock.Lock()
	defer lock.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	if err := s.Calendar.DeleteEvent(ctx, appt.WorkerID, appt.CalendarEventID); err != nil {
		return fmt.Errorf("deleting calendar event for appointment %s: %w", appointmentID, err)
	}
	if err := s.Appointments.ClearCalendarRef(ctx, appointmentID); err != nil {
		return fmt.Errorf("clearing event reference on appointment %s: %w", appointmentID, err)
	}

	s.journal(ctx, appt.WorkerID, models.AuditEventDeleted, map[string]any{
		"eventId":       appt.CalendarEventID,
		"appointmentId": appointmentID,
	})
	return nil
}

// SyncAllForWorker backfills external events for every pending appointment
// of one worker. One appointment's failure never blocks its siblings; the
// count of successful syncs is returned.
func (s *DefaultSyncService) SyncAllForWorker(ctx context.Context, workerID string) (int, error) {
	appts, err := s.Appointments.ListUnsyncedByWorker(ctx, workerID)
	if err != nil {
		return 0, fmt.Errorf("listing unsynced appointments for worker %s: %w", workerID, err)
	}

	synced := 0
	for _, appt := range appts {
		if _, err := s.CreateEvent(ctx, appt.ID); err != nil {
			zap.L().Warn("failed to sync appointment",
				zap.String("appointmentId", appt.ID),
				zap.String("workerId", workerID),
				zap.Error(err))
			continue
		}
		synced++
	}
	return synced, nil
}

// eventForAppointment builds the external representation of an appointment.
func eventForAppointment(appt *models.Appointment, homeZone string) models.CalendarEvent {
	title := appt.ServiceType
	if appt.CustomerName != "" {
		title = fmt.Sprintf("%s - %s", appt.ServiceType, appt.CustomerName)
	}
	event := models.CalendarEvent{
		Title:         title,
		Description:   fmt.Sprintf("Service: %s\nLocation: %s", appt.ServiceType, appt.Location.Address),
		Start:         appt.ScheduledTime,
		End:           appt.End(),
		Timezone:      homeZone,
		Location:      appt.Location.Address,
		AppointmentID: appt.ID,
	}
	if appt.CustomerEmail != "" {
		event.Attendees = []string{appt.CustomerEmail}
	}
	return event
}

func (s *DefaultSyncService) journal(ctx context.Context, workerID string, action models.AuditAction, details map[string]any) {
	if s.Audit == nil {
		return
	}
	payload, err := json.Marshal(details)
	if err != nil {
		return
	}
	entry := models.AuditEntry{
		WorkerID: workerID,
		Action:   action,
		Details:  string(payload),
	}
	if err := s.Audit.Append(ctx, entry); err != nil {
		zap.L().Warn("failed to append audit entry",
			zap.String("workerId", workerID),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}
