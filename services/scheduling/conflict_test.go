package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"notaryops/models"
)

type fakeCalendar struct {
	events []models.CalendarEvent
	err    error
}

func (f *fakeCalendar) ListEvents(ctx context.Context, workerID string, from, to time.Time) ([]models.CalendarEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func day(hour, min int) time.Time {
	return time.Date(2026, 9, 14, hour, min, 0, 0, time.UTC)
}

func TestDetectClassifiesSeverity(t *testing.T) {
	existing := models.CalendarEvent{
		ID:    "ev-1",
		Title: "Loan signing downtown",
		Start: day(14, 0),
		End:   day(15, 0),
	}
	detector := &ConflictDetector{
		Calendar:      &fakeCalendar{events: []models.CalendarEvent{existing}},
		BusinessHours: models.WorkingHours{Start: "08:00", End: "18:00"},
	}

	tests := []struct {
		name         string
		start, end   time.Time
		lead, trail  int
		wantConflict bool
		wantSeverity models.ConflictSeverity
	}{
		{
			name:  "direct overlap is blocking",
			start: day(14, 30), end: day(15, 30),
			wantConflict: true, wantSeverity: models.SeverityBlocking,
		},
		{
			name:  "overlap at tail of event is blocking",
			start: day(13, 30), end: day(14, 10),
			wantConflict: true, wantSeverity: models.SeverityBlocking,
		},
		{
			name:  "lead buffer reaching into event is a violation only",
			start: day(15, 5), end: day(16, 0),
			lead:         15,
			wantConflict: true, wantSeverity: models.SeverityBufferViolation,
		},
		{
			name:  "trail buffer reaching into event is a violation only",
			start: day(13, 0), end: day(13, 50),
			trail:        15,
			wantConflict: true, wantSeverity: models.SeverityBufferViolation,
		},
		{
			name:  "adjacent interval without buffers is clear",
			start: day(15, 0), end: day(16, 0),
			wantConflict: false,
		},
		{
			name:  "distant interval is clear",
			start: day(9, 0), end: day(10, 0),
			lead: 30, trail: 30,
			wantConflict: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := detector.Detect(context.Background(), "w-1", tt.start, tt.end, tt.lead, tt.trail)
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if report.HasConflict != tt.wantConflict {
				t.Fatalf("HasConflict = %v, want %v", report.HasConflict, tt.wantConflict)
			}
			if !tt.wantConflict {
				if len(report.Conflicts) != 0 {
					t.Errorf("expected no conflict records, got %d", len(report.Conflicts))
				}
				return
			}
			if len(report.Conflicts) != 1 {
				t.Fatalf("expected 1 conflict record, got %d", len(report.Conflicts))
			}
			got := report.Conflicts[0]
			if got.Severity != tt.wantSeverity {
				t.Errorf("severity = %s, want %s", got.Severity, tt.wantSeverity)
			}
			if got.EventID != existing.ID {
				t.Errorf("eventId = %s, want %s", got.EventID, existing.ID)
			}
			wantBlocking := tt.wantSeverity == models.SeverityBlocking
			if report.HasBlocking() != wantBlocking {
				t.Errorf("HasBlocking() = %v, want %v", report.HasBlocking(), wantBlocking)
			}
		})
	}
}

func TestDetectFailsClosedOnCalendarError(t *testing.T) {
	detector := &ConflictDetector{
		Calendar: &fakeCalendar{err: errors.New("connection refused")},
	}

	report, err := detector.Detect(context.Background(), "w-1", day(10, 0), day(11, 0), 15, 10)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrCalendarUnavailable) {
		t.Errorf("error = %v, want ErrCalendarUnavailable", err)
	}
	if report != nil {
		t.Errorf("expected nil report on failure, got %+v", report)
	}
}

func TestDetectProposesAlternatives(t *testing.T) {
	existing := models.CalendarEvent{
		ID:    "ev-1",
		Title: "Closing",
		Start: day(10, 0),
		End:   day(11, 0),
	}
	detector := &ConflictDetector{
		Calendar:      &fakeCalendar{events: []models.CalendarEvent{existing}},
		BusinessHours: models.WorkingHours{Start: "08:00", End: "18:00"},
	}

	report, err := detector.Detect(context.Background(), "w-1", day(10, 30), day(11, 30), 0, 0)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if !report.HasBlocking() {
		t.Fatal("expected a blocking conflict")
	}
	if len(report.Alternatives) == 0 {
		t.Fatal("expected alternative start times")
	}
	if len(report.Alternatives) > maxAlternatives {
		t.Fatalf("got %d alternatives, cap is %d", len(report.Alternatives), maxAlternatives)
	}
	duration := time.Hour
	for _, alt := range report.Alternatives {
		if alt.Before(day(10, 30)) {
			t.Errorf("alternative %v is before the requested start", alt)
		}
		if existing.Overlaps(alt, alt.Add(duration)) {
			t.Errorf("alternative %v overlaps the existing event", alt)
		}
		if alt.Hour() < 8 || alt.Add(duration).Hour() > 18 {
			t.Errorf("alternative %v falls outside business hours", alt)
		}
	}
}
