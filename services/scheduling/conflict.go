package scheduling

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	auditRepo "notaryops/database/repository/audit"
	"notaryops/models"

	"go.uber.org/zap"
)

// CalendarReader is the read port to a worker's external calendar.
type CalendarReader interface {
	ListEvents(ctx context.Context, workerID string, from, to time.Time) ([]models.CalendarEvent, error)
}

const maxAlternatives = 5

// ConflictDetector checks a proposed interval against a worker's external
// calendar, classifying overlaps and proposing alternative start times.
type ConflictDetector struct {
	Calendar      CalendarReader
	Audit         auditRepo.AuditRepository // optional; detected conflicts are journaled when set
	BusinessHours models.WorkingHours
	Logger        *zap.Logger
}

// Detect expands [start, end) by the worker's lead and trail buffers,
// fetches all events overlapping the expanded window and classifies each:
// blocking when the unexpanded interval intersects the event, otherwise a
// buffer violation. If the calendar cannot be read, Detect fails closed
// and returns the error rather than an empty report.
func (d *ConflictDetector) Detect(ctx context.Context, workerID string, start, end time.Time, leadBuffer, trailBuffer int) (*models.ConflictReport, error) {
	windowStart := start.Add(-time.Duration(leadBuffer) * time.Minute)
	windowEnd := end.Add(time.Duration(trailBuffer) * time.Minute)

	events, err := d.Calendar.ListEvents(ctx, workerID, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: listing events for worker %s: %v", ErrCalendarUnavailable, workerID, err)
	}

	report := &models.ConflictReport{}
	for _, ev := range events {
		if !ev.Overlaps(windowStart, windowEnd) {
			continue
		}
		severity := models.SeverityBufferViolation
		if ev.Overlaps(start, end) {
			severity = models.SeverityBlocking
		}
		report.Conflicts = append(report.Conflicts, models.ConflictRecord{
			EventID:    ev.ID,
			EventTitle: ev.Title,
			EventStart: ev.Start,
			EventEnd:   ev.End,
			Severity:   severity,
			WorkerID:   workerID,
		})
	}
	report.HasConflict = len(report.Conflicts) > 0

	if report.HasConflict {
		d.journalConflicts(ctx, workerID, report.Conflicts)
		alternatives, altErr := d.alternativeStarts(ctx, workerID, start, end.Sub(start))
		if altErr != nil {
			// Alternatives are advisory; the conflict verdict stands.
			if d.Logger != nil {
				d.Logger.Warn("failed to compute alternative slots",
					zap.String("workerId", workerID), zap.Error(altErr))
			}
		} else {
			report.Alternatives = alternatives
		}
	}

	return report, nil
}

// alternativeStarts scans forward across the next 7 days within business
// hours for up to 5 start times whose slot does not overlap any existing
// event for the same duration.
func (d *ConflictDetector) alternativeStarts(ctx context.Context, workerID string, from time.Time, duration time.Duration) ([]time.Time, error) {
	searchEnd := from.AddDate(0, 0, 7)
	events, err := d.Calendar.ListEvents(ctx, workerID, from, searchEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: listing events for worker %s: %v", ErrCalendarUnavailable, workerID, err)
	}

	startHour, startMin := parseHHMM(d.BusinessHours.Start, 8, 0)
	endHour, endMin := parseHHMM(d.BusinessHours.End, 18, 0)

	var alternatives []time.Time
	for day := 0; day < 7 && len(alternatives) < maxAlternatives; day++ {
		date := from.AddDate(0, 0, day)
		dayStart := time.Date(date.Year(), date.Month(), date.Day(), startHour, startMin, 0, 0, date.Location())
		dayEnd := time.Date(date.Year(), date.Month(), date.Day(), endHour, endMin, 0, 0, date.Location())

		for slotStart := dayStart; len(alternatives) < maxAlternatives; slotStart = slotStart.Add(time.Hour) {
			slotEnd := slotStart.Add(duration)
			if slotEnd.After(dayEnd) {
				break
			}
			if slotStart.Before(from) {
				continue
			}
			occupied := false
			for _, ev := range events {
				if ev.Overlaps(slotStart, slotEnd) {
					occupied = true
					break
				}
			}
			if !occupied {
				alternatives = append(alternatives, slotStart)
			}
		}
	}
	return alternatives, nil
}

func (d *ConflictDetector) journalConflicts(ctx context.Context, workerID string, conflicts []models.ConflictRecord) {
	if d.Audit == nil {
		return
	}
	detail, err := json.Marshal(conflicts)
	if err != nil {
		return
	}
	entry := models.AuditEntry{
		WorkerID: workerID,
		Action:   models.AuditConflictDetected,
		Details:  string(detail),
	}
	if err := d.Audit.Append(ctx, entry); err != nil && d.Logger != nil {
		d.Logger.Warn("failed to journal detected conflicts",
			zap.String("workerId", workerID), zap.Error(err))
	}
}

// parseHHMM parses "HH:MM"; malformed values fall back to the defaults.
func parseHHMM(s string, defHour, defMin int) (int, int) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return defHour, defMin
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return defHour, defMin
	}
	return hour, minute
}
