package calendarsync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"notaryops/models"
	"notaryops/services/scheduling"
)

type fakeApptRepo struct {
	mu    sync.Mutex
	appts map[string]models.Appointment
}

func newFakeApptRepo(appts ...models.Appointment) *fakeApptRepo {
	repo := &fakeApptRepo{appts: make(map[string]models.Appointment)}
	for _, a := range appts {
		repo.appts[a.ID] = a
	}
	return repo
}

func (r *fakeApptRepo) Create(ctx context.Context, appt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appts[appt.ID] = *appt
	return nil
}

func (r *fakeApptRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.appts[id]
	if !ok {
		return nil, fmt.Errorf("appointment %s not found", id)
	}
	out := appt
	return &out, nil
}

func (r *fakeApptRepo) Update(ctx context.Context, appt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appts[appt.ID] = *appt
	return nil
}

func (r *fakeApptRepo) SetCalendarRef(ctx context.Context, id, eventID string, status models.SyncStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt := r.appts[id]
	appt.CalendarEventID = eventID
	appt.SyncStatus = status
	r.appts[id] = appt
	return nil
}

func (r *fakeApptRepo) ClearCalendarRef(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt := r.appts[id]
	appt.CalendarEventID = ""
	appt.SyncStatus = models.SyncStatusRemoved
	r.appts[id] = appt
	return nil
}

func (r *fakeApptRepo) ListByWorkerAndRange(ctx context.Context, workerID string, from, to time.Time) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, a := range r.appts {
		if a.WorkerID == workerID && !a.ScheduledTime.Before(from) && a.ScheduledTime.Before(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeApptRepo) ListUnsyncedByWorker(ctx context.Context, workerID string) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, a := range r.appts {
		if a.WorkerID == workerID && a.SyncStatus == models.SyncStatusPending {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeApptRepo) get(id string) models.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.appts[id]
}

type fakeCalendarAPI struct {
	events    []models.CalendarEvent
	listErr   error
	insertErr func(event models.CalendarEvent) error

	inserted []models.CalendarEvent
	patches  map[string]models.EventPatch
	deleted  []string
	nextID   int
}

func newFakeCalendarAPI() *fakeCalendarAPI {
	return &fakeCalendarAPI{patches: make(map[string]models.EventPatch)}
}

func (f *fakeCalendarAPI) ListEvents(ctx context.Context, workerID string, from, to time.Time) ([]models.CalendarEvent, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.events, nil
}

func (f *fakeCalendarAPI) GetEvent(ctx context.Context, workerID, eventID string) (*models.CalendarEvent, error) {
	for _, ev := range f.inserted {
		if ev.ID == eventID {
			return &ev, nil
		}
	}
	return &models.CalendarEvent{ID: eventID}, nil
}

func (f *fakeCalendarAPI) InsertEvent(ctx context.Context, workerID string, event models.CalendarEvent) (string, error) {
	if f.insertErr != nil {
		if err := f.insertErr(event); err != nil {
			return "", err
		}
	}
	f.nextID++
	event.ID = fmt.Sprintf("gcal-%d", f.nextID)
	f.inserted = append(f.inserted, event)
	return event.ID, nil
}

func (f *fakeCalendarAPI) PatchEvent(ctx context.Context, workerID, eventID string, patch models.EventPatch) error {
	f.patches[eventID] = patch
	return nil
}

func (f *fakeCalendarAPI) DeleteEvent(ctx context.Context, workerID, eventID string) error {
	f.deleted = append(f.deleted, eventID)
	return nil
}

type fakeAudit struct {
	entries []models.AuditEntry
}

func (f *fakeAudit) Append(ctx context.Context, entry models.AuditEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAudit) ListSince(ctx context.Context, since time.Time) ([]models.AuditEntry, error) {
	return f.entries, nil
}

func pendingAppointment(id, workerID string) models.Appointment {
	return models.Appointment{
		ID:                 id,
		RequestID:          "req-" + id,
		WorkerID:           workerID,
		ServiceType:        "standard",
		ScheduledTime:      time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC),
		DurationMinutes:    60,
		Location:           models.Location{Address: "123 Main St, Houston, TX"},
		CustomerName:       "Jane Doe",
		CustomerEmail:      "jane@example.com",
		SyncStatus:         models.SyncStatusPending,
		LeadBufferMinutes:  30,
		TrailBufferMinutes: 10,
	}
}

func newTestService(repo *fakeApptRepo, cal *fakeCalendarAPI, audit *fakeAudit) *DefaultSyncService {
	detector := &scheduling.ConflictDetector{
		Calendar:      cal,
		BusinessHours: models.WorkingHours{Start: "08:00", End: "18:00"},
	}
	return NewSyncService(repo, audit, cal, detector, "America/Chicago", 5*time.Second)
}

func TestCreateEventWritesAndRecordsReference(t *testing.T) {
	repo := newFakeApptRepo(pendingAppointment("a-1", "w-1"))
	cal := newFakeCalendarAPI()
	audit := &fakeAudit{}
	svc := newTestService(repo, cal, audit)

	eventID, err := svc.CreateEvent(context.Background(), "a-1")
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	if eventID == "" {
		t.Fatal("expected a non-empty event id")
	}

	stored := repo.appts["a-1"]
	if stored.CalendarEventID != eventID {
		t.Errorf("stored event id = %q, want %q", stored.CalendarEventID, eventID)
	}
	if stored.SyncStatus != models.SyncStatusSynced {
		t.Errorf("sync status = %s, want %s", stored.SyncStatus, models.SyncStatusSynced)
	}

	if len(cal.inserted) != 1 {
		t.Fatalf("expected 1 inserted event, got %d", len(cal.inserted))
	}
	event := cal.inserted[0]
	if event.Title != "standard - Jane Doe" {
		t.Errorf("title = %q, want %q", event.Title, "standard - Jane Doe")
	}
	if event.Timezone != "America/Chicago" {
		t.Errorf("timezone = %q, want America/Chicago", event.Timezone)
	}
	if len(event.Attendees) != 1 || event.Attendees[0] != "jane@example.com" {
		t.Errorf("attendees = %v, want the customer email", event.Attendees)
	}
	if !strings.Contains(event.Description, "123 Main St") {
		t.Errorf("description %q missing the service address", event.Description)
	}

	if len(audit.entries) != 1 || audit.entries[0].Action != models.AuditEventCreated {
		t.Errorf("audit entries = %+v, want one %s", audit.entries, models.AuditEventCreated)
	}
}

func TestCreateEventRejectsDuplicateSync(t *testing.T) {
	appt := pendingAppointment("a-1", "w-1")
	appt.CalendarEventID = "gcal-existing"
	appt.SyncStatus = models.SyncStatusSynced
	repo := newFakeApptRepo(appt)
	cal := newFakeCalendarAPI()
	svc := newTestService(repo, cal, &fakeAudit{})

	_, err := svc.CreateEvent(context.Background(), "a-1")
	if !errors.Is(err, ErrAlreadySynced) {
		t.Fatalf("error = %v, want ErrAlreadySynced", err)
	}
	if len(cal.inserted) != 0 {
		t.Errorf("duplicate create must not write, got %d inserts", len(cal.inserted))
	}
	if repo.appts["a-1"].CalendarEventID != "gcal-existing" {
		t.Errorf("stored event id changed to %q", repo.appts["a-1"].CalendarEventID)
	}
}

func TestCreateEventFailedWriteStaysPending(t *testing.T) {
	repo := newFakeApptRepo(pendingAppointment("a-1", "w-1"))
	cal := newFakeCalendarAPI()
	cal.insertErr = func(models.CalendarEvent) error { return context.DeadlineExceeded }
	audit := &fakeAudit{}
	svc := newTestService(repo, cal, audit)

	_, err := svc.CreateEvent(context.Background(), "a-1")
	if err == nil {
		t.Fatal("expected error from the calendar write")
	}

	stored := repo.appts["a-1"]
	if stored.SyncStatus != models.SyncStatusPending {
		t.Errorf("sync status = %s, a failed write must leave it pending", stored.SyncStatus)
	}
	if stored.CalendarEventID != "" {
		t.Errorf("stored event id = %q, want empty", stored.CalendarEventID)
	}
	if len(audit.entries) != 0 {
		t.Errorf("no audit entry may be written for a failed create, got %+v", audit.entries)
	}
}

func TestCreateEventBlockedByCommitTimeConflict(t *testing.T) {
	repo := newFakeApptRepo(pendingAppointment("a-1", "w-1"))
	cal := newFakeCalendarAPI()
	cal.events = []models.CalendarEvent{{
		ID:    "ev-race",
		Title: "Booked elsewhere",
		Start: time.Date(2026, 9, 14, 10, 30, 0, 0, time.UTC),
		End:   time.Date(2026, 9, 14, 11, 30, 0, 0, time.UTC),
	}}
	svc := newTestService(repo, cal, &fakeAudit{})

	_, err := svc.CreateEvent(context.Background(), "a-1")
	var blocking scheduling.BlockingConflictError
	if !errors.As(err, &blocking) {
		t.Fatalf("error = %v, want BlockingConflictError", err)
	}
	if blocking.EventID != "ev-race" {
		t.Errorf("conflicting event = %s, want ev-race", blocking.EventID)
	}
	if len(cal.inserted) != 0 {
		t.Errorf("blocked create must not write, got %d inserts", len(cal.inserted))
	}
	if repo.appts["a-1"].SyncStatus != models.SyncStatusPending {
		t.Errorf("sync status = %s, want pending", repo.appts["a-1"].SyncStatus)
	}
}

func TestCreateEventFailsClosedOnUnreadableCalendar(t *testing.T) {
	repo := newFakeApptRepo(pendingAppointment("a-1", "w-1"))
	cal := newFakeCalendarAPI()
	cal.listErr = errors.New("oauth token revoked")
	svc := newTestService(repo, cal, &fakeAudit{})

	_, err := svc.CreateEvent(context.Background(), "a-1")
	if !errors.Is(err, scheduling.ErrCalendarUnavailable) {
		t.Fatalf("error = %v, want ErrCalendarUnavailable", err)
	}
	if len(cal.inserted) != 0 {
		t.Errorf("unverifiable create must not write, got %d inserts", len(cal.inserted))
	}
}

func TestCreateEventConcurrentRetrySyncsOnce(t *testing.T) {
	repo := newFakeApptRepo(pendingAppointment("a-1", "w-1"))
	cal := newFakeCalendarAPI()
	cal.insertErr = func(models.CalendarEvent) error {
		// Widen the window between the idempotence gate and the lock.
		time.Sleep(20 * time.Millisecond)
		return nil
	}
	svc := newTestService(repo, cal, &fakeAudit{})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateEvent(context.Background(), "a-1")
		}(i)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrAlreadySynced):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || rejected != 1 {
		t.Fatalf("got %d successes and %d rejections, want exactly one of each", succeeded, rejected)
	}
	if len(cal.inserted) != 1 {
		t.Fatalf("concurrent create wrote %d events, want 1", len(cal.inserted))
	}
	if stored := repo.get("a-1"); stored.CalendarEventID != cal.inserted[0].ID {
		t.Errorf("stored event id = %q, want %q", stored.CalendarEventID, cal.inserted[0].ID)
	}
}

func TestUpdateEventRequiresSyncedAppointment(t *testing.T) {
	repo := newFakeApptRepo(pendingAppointment("a-1", "w-1"))
	svc := newTestService(repo, newFakeCalendarAPI(), &fakeAudit{})

	title := "New title"
	err := svc.UpdateEvent(context.Background(), "a-1", models.EventPatch{Title: &title})
	if !errors.Is(err, ErrNotSynced) {
		t.Fatalf("error = %v, want ErrNotSynced", err)
	}
}

func TestUpdateEventEmptyPatchIsNoOp(t *testing.T) {
	appt := pendingAppointment("a-1", "w-1")
	appt.CalendarEventID = "gcal-1"
	appt.SyncStatus = models.SyncStatusSynced
	repo := newFakeApptRepo(appt)
	cal := newFakeCalendarAPI()
	svc := newTestService(repo, cal, &fakeAudit{})

	if err := svc.UpdateEvent(context.Background(), "a-1", models.EventPatch{}); err != nil {
		t.Fatalf("UpdateEvent() error = %v", err)
	}
	if len(cal.patches) != 0 {
		t.Errorf("empty patch must not reach the calendar, got %+v", cal.patches)
	}
}

func TestUpdateEventMirrorsTimeChange(t *testing.T) {
	appt := pendingAppointment("a-1", "w-1")
	appt.CalendarEventID = "gcal-1"
	appt.SyncStatus = models.SyncStatusSynced
	repo := newFakeApptRepo(appt)
	cal := newFakeCalendarAPI()
	audit := &fakeAudit{}
	svc := newTestService(repo, cal, audit)

	newStart := time.Date(2026, 9, 15, 13, 0, 0, 0, time.UTC)
	newEnd := newStart.Add(90 * time.Minute)
	patch := models.EventPatch{Start: &newStart, End: &newEnd}

	if err := svc.UpdateEvent(context.Background(), "a-1", patch); err != nil {
		t.Fatalf("UpdateEvent() error = %v", err)
	}

	sent, ok := cal.patches["gcal-1"]
	if !ok {
		t.Fatal("expected a patch against gcal-1")
	}
	if sent.Title != nil || sent.Location != nil {
		t.Errorf("patch carried unchanged fields: %+v", sent)
	}

	stored := repo.appts["a-1"]
	if !stored.ScheduledTime.Equal(newStart) {
		t.Errorf("stored start = %v, want %v", stored.ScheduledTime, newStart)
	}
	if stored.DurationMinutes != 90 {
		t.Errorf("stored duration = %d, want 90", stored.DurationMinutes)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != models.AuditEventUpdated {
		t.Errorf("audit entries = %+v, want one %s", audit.entries, models.AuditEventUpdated)
	}
}

func TestUpdateEventEndOnlyPatchMirrorsDuration(t *testing.T) {
	appt := pendingAppointment("a-1", "w-1")
	appt.CalendarEventID = "gcal-1"
	appt.SyncStatus = models.SyncStatusSynced
	repo := newFakeApptRepo(appt)
	cal := newFakeCalendarAPI()
	svc := newTestService(repo, cal, &fakeAudit{})

	newEnd := appt.ScheduledTime.Add(120 * time.Minute)
	if err := svc.UpdateEvent(context.Background(), "a-1", models.EventPatch{End: &newEnd}); err != nil {
		t.Fatalf("UpdateEvent() error = %v", err)
	}

	sent, ok := cal.patches["gcal-1"]
	if !ok {
		t.Fatal("expected a patch against gcal-1")
	}
	if sent.Start != nil || sent.End == nil {
		t.Errorf("patch = %+v, want only End set", sent)
	}

	stored := repo.appts["a-1"]
	if !stored.ScheduledTime.Equal(appt.ScheduledTime) {
		t.Errorf("start moved to %v", stored.ScheduledTime)
	}
	if stored.DurationMinutes != 120 {
		t.Errorf("stored duration = %d, want 120", stored.DurationMinutes)
	}
	if !stored.End().Equal(newEnd) {
		t.Errorf("stored end = %v, external event ends at %v", stored.End(), newEnd)
	}
}

func TestDeleteEventClearsReferenceAndIsIdempotent(t *testing.T) {
	appt := pendingAppointment("a-1", "w-1")
	appt.CalendarEventID = "gcal-1"
	appt.SyncStatus = models.SyncStatusSynced
	repo := newFakeApptRepo(appt)
	cal := newFakeCalendarAPI()
	audit := &fakeAudit{}
	svc := newTestService(repo, cal, audit)

	if err := svc.DeleteEvent(context.Background(), "a-1"); err != nil {
		t.Fatalf("DeleteEvent() error = %v", err)
	}

	stored := repo.appts["a-1"]
	if stored.CalendarEventID != "" {
		t.Errorf("event reference not cleared: %q", stored.CalendarEventID)
	}
	if stored.SyncStatus != models.SyncStatusRemoved {
		t.Errorf("sync status = %s, want %s", stored.SyncStatus, models.SyncStatusRemoved)
	}
	if len(cal.deleted) != 1 || cal.deleted[0] != "gcal-1" {
		t.Errorf("deleted = %v, want [gcal-1]", cal.deleted)
	}

	// Retrying after the reference is gone does nothing.
	if err := svc.DeleteEvent(context.Background(), "a-1"); err != nil {
		t.Fatalf("second DeleteEvent() error = %v", err)
	}
	if len(cal.deleted) != 1 {
		t.Errorf("retry issued another delete: %v", cal.deleted)
	}
	if len(audit.entries) != 1 {
		t.Errorf("retry journaled again: %+v", audit.entries)
	}
}

func TestSyncAllForWorkerIsolatesFailures(t *testing.T) {
	repo := newFakeApptRepo(
		pendingAppointment("a-1", "w-1"),
		pendingAppointment("a-2", "w-1"),
		pendingAppointment("a-other", "w-2"),
	)
	cal := newFakeCalendarAPI()
	cal.insertErr = func(event models.CalendarEvent) error {
		if event.AppointmentID == "a-2" {
			return errors.New("rate limited")
		}
		return nil
	}
	svc := newTestService(repo, cal, &fakeAudit{})

	synced, err := svc.SyncAllForWorker(context.Background(), "w-1")
	if err != nil {
		t.Fatalf("SyncAllForWorker() error = %v", err)
	}
	if synced != 1 {
		t.Errorf("synced = %d, want 1", synced)
	}
	if repo.appts["a-1"].SyncStatus != models.SyncStatusSynced {
		t.Errorf("a-1 status = %s, want synced", repo.appts["a-1"].SyncStatus)
	}
	if repo.appts["a-2"].SyncStatus != models.SyncStatusPending {
		t.Errorf("a-2 status = %s, want pending after its failure", repo.appts["a-2"].SyncStatus)
	}
	if repo.appts["a-other"].SyncStatus != models.SyncStatusPending {
		t.Errorf("a-other belongs to another worker and must stay pending")
	}
}
