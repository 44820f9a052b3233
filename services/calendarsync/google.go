package calendarsync

import (
	"context"
	"fmt"
	"time"

	"notaryops/config"
	workerRepo "notaryops/database/repository/worker"
	"notaryops/models"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

var calendarScopes = []string{calendar.CalendarScope, calendar.CalendarEventsScope}

// GoogleCalendarAPI implements CalendarAPI against Google Calendar v3,
// authenticating per worker with the stored refresh token.
type GoogleCalendarAPI struct {
	Workers  workerRepo.WorkerRepository
	OAuth    *oauth2.Config
	HomeZone string
}

// NewGoogleCalendarAPI builds the client from the configured OAuth
// credentials.
func NewGoogleCalendarAPI(workers workerRepo.WorkerRepository) *GoogleCalendarAPI {
	return &GoogleCalendarAPI{
		Workers: workers,
		OAuth: &oauth2.Config{
			ClientID:     config.AppConfig.GoogleClientID,
			ClientSecret: config.AppConfig.GoogleClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       calendarScopes,
		},
		HomeZone: config.AppConfig.HomeTimezone,
	}
}

// AuthorizationURL returns the consent URL for connecting a worker's
// calendar; the worker ID rides along in the state parameter.
func (g *GoogleCalendarAPI) AuthorizationURL(workerID string) string {
	return g.OAuth.AuthCodeURL(workerID, oauth2.AccessTypeOffline)
}

// HandleOAuthCallback exchanges the authorization code and stores the
// long-lived refresh token against the worker profile.
func (g *GoogleCalendarAPI) HandleOAuthCallback(ctx context.Context, code, workerID string) error {
	token, err := g.OAuth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchanging authorization code for worker %s: %w", workerID, err)
	}
	if token.RefreshToken == "" {
		return fmt.Errorf("no refresh token granted for worker %s", workerID)
	}
	return g.Workers.SetCalendarCredential(ctx, workerID, token.RefreshToken)
}

func (g *GoogleCalendarAPI) service(ctx context.Context, workerID string) (*calendar.Service, error) {
	worker, err := g.Workers.GetByID(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("loading worker %s: %w", workerID, err)
	}
	if worker.CalendarRefreshToken == "" {
		return nil, fmt.Errorf("calendar not connected for worker %s", workerID)
	}
	ts := g.OAuth.TokenSource(ctx, &oauth2.Token{RefreshToken: worker.CalendarRefreshToken})
	svc, err := calendar.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("building calendar client for worker %s: %w", workerID, err)
	}
	return svc, nil
}

func (g *GoogleCalendarAPI) ListEvents(ctx context.Context, workerID string, from, to time.Time) ([]models.CalendarEvent, error) {
	svc, err := g.service(ctx, workerID)
	if err != nil {
		return nil, err
	}
	resp, err := svc.Events.List("primary").
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("listing events for worker %s: %w", workerID, err)
	}

	events := make([]models.CalendarEvent, 0, len(resp.Items))
	for _, item := range resp.Items {
		ev, ok := fromGoogleEvent(item)
		if !ok {
			// All-day events carry no dateTime; they do not bound
			// appointment intervals here.
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func (g *GoogleCalendarAPI) GetEvent(ctx context.Context, workerID, eventID string) (*models.CalendarEvent, error) {
	svc, err := g.service(ctx, workerID)
	if err != nil {
		return nil, err
	}
	item, err := svc.Events.Get("primary", eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetching event %s for worker %s: %w", eventID, workerID, err)
	}
	ev, ok := fromGoogleEvent(item)
	if !ok {
		return nil, fmt.Errorf("event %s has no concrete time range", eventID)
	}
	return &ev, nil
}

func (g *GoogleCalendarAPI) InsertEvent(ctx context.Context, workerID string, event models.CalendarEvent) (string, error) {
	svc, err := g.service(ctx, workerID)
	if err != nil {
		return "", err
	}

	tz := event.Timezone
	if tz == "" {
		tz = g.HomeZone
	}
	gev := &calendar.Event{
		Summary:     event.Title,
		Description: event.Description,
		Location:    event.Location,
		Start:       &calendar.EventDateTime{DateTime: event.Start.Format(time.RFC3339), TimeZone: tz},
		End:         &calendar.EventDateTime{DateTime: event.End.Format(time.RFC3339), TimeZone: tz},
		Reminders: &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: "email", Minutes: 60},
				{Method: "popup", Minutes: 15},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}
	for _, email := range event.Attendees {
		gev.Attendees = append(gev.Attendees, &calendar.EventAttendee{Email: email})
	}
	if event.Recurrence != nil {
		gev.Recurrence = []string{event.Recurrence.RRule()}
	}

	created, err := svc.Events.Insert("primary", gev).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("inserting event for worker %s: %w", workerID, err)
	}
	return created.Id, nil
}

func (g *GoogleCalendarAPI) PatchEvent(ctx context.Context, workerID, eventID string, patch models.EventPatch) error {
	svc, err := g.service(ctx, workerID)
	if err != nil {
		return err
	}

	tz := g.HomeZone
	if patch.Timezone != nil {
		tz = *patch.Timezone
	}
	// Only the fields the caller set go on the wire; Google merges the
	// rest server-side, so untouched fields are preserved.
	gev := &calendar.Event{}
	if patch.Title != nil {
		gev.Summary = *patch.Title
	}
	if patch.Description != nil {
		gev.Description = *patch.Description
	}
	if patch.Location != nil {
		gev.Location = *patch.Location
	}
	if patch.Start != nil {
		gev.Start = &calendar.EventDateTime{DateTime: patch.Start.Format(time.RFC3339), TimeZone: tz}
	}
	if patch.End != nil {
		gev.End = &calendar.EventDateTime{DateTime: patch.End.Format(time.RFC3339), TimeZone: tz}
	}

	if _, err := svc.Events.Patch("primary", eventID, gev).Context(ctx).Do(); err != nil {
		return fmt.Errorf("patching event %s for worker %s: %w", eventID, workerID, err)
	}
	return nil
}

func (g *GoogleCalendarAPI) DeleteEvent(ctx context.Context, workerID, eventID string) error {
	svc, err := g.service(ctx, workerID)
	if err != nil {
		return err
	}
	if err := svc.Events.Delete("primary", eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("deleting event %s for worker %s: %w", eventID, workerID, err)
	}
	return nil
}

func fromGoogleEvent(item *calendar.Event) (models.CalendarEvent, bool) {
	if item.Start == nil || item.End == nil || item.Start.DateTime == "" || item.End.DateTime == "" {
		return models.CalendarEvent{}, false
	}
	start, err1 := time.Parse(time.RFC3339, item.Start.DateTime)
	end, err2 := time.Parse(time.RFC3339, item.End.DateTime)
	if err1 != nil || err2 != nil {
		return models.CalendarEvent{}, false
	}

	ev := models.CalendarEvent{
		ID:          item.Id,
		Title:       item.Summary,
		Description: item.Description,
		Location:    item.Location,
		Start:       start,
		End:         end,
		Timezone:    item.Start.TimeZone,
	}
	for _, a := range item.Attendees {
		ev.Attendees = append(ev.Attendees, a.Email)
	}
	return ev, true
}
