package models

import "time"

// WorkerProfile is the persisted record of one mobile worker, including the
// long-lived credential that authenticates calendar access on their behalf.
type WorkerProfile struct {
	ID                   string            `bson:"id" json:"id"`
	Name                 string            `bson:"name" json:"name"`
	Email                string            `bson:"email" json:"email"`
	SkillSet             []string          `bson:"skillSet" json:"skillSet"`
	Preferences          WorkerPreferences `bson:"preferences" json:"preferences"`
	LastKnownLocation    *Location         `bson:"lastKnownLocation,omitempty" json:"lastKnownLocation,omitempty"`
	CalendarRefreshToken string            `bson:"calendarRefreshToken,omitempty" json:"-"`
	CalendarSyncEnabled  bool              `bson:"calendarSyncEnabled" json:"calendarSyncEnabled"`
	CreatedAt            time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time         `bson:"updatedAt" json:"updatedAt"`
}
