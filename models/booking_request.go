package models

import "time"

// Priority classifies how urgently a booking request must be placed.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Weight returns the sort weight of the priority class. Unknown values
// weigh the same as "normal".
func (p Priority) Weight() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityLow:
		return 1
	default:
		return 2
	}
}

// TimeFlexibility describes how far a request may drift from its preferred time.
type TimeFlexibility string

const (
	FlexibilityRigid    TimeFlexibility = "rigid"
	FlexibilityModerate TimeFlexibility = "moderate"
	FlexibilityFlexible TimeFlexibility = "flexible"
)

// Location is a service stop: coordinates plus the free-text address they
// were geocoded from.
type Location struct {
	Lat     float64 `bson:"lat" json:"lat"`
	Lng     float64 `bson:"lng" json:"lng"`
	Address string  `bson:"address" json:"address"`
}

// WorkerSelectionPrefs carries optional customer preferences about who is sent.
type WorkerSelectionPrefs struct {
	LanguagePreference string `bson:"languagePreference,omitempty" json:"languagePreference,omitempty"`
	ExperienceLevel    string `bson:"experienceLevel,omitempty" json:"experienceLevel,omitempty"` // "any", "experienced", "senior"
}

// BookingRequest is one already-validated, already-priced service request
// handed to the optimizer. Immutable once submitted.
type BookingRequest struct {
	ID              string                `bson:"id" json:"id" binding:"required"`
	ServiceType     string                `bson:"serviceType" json:"serviceType" binding:"required"`
	DurationMinutes int                   `bson:"durationMinutes" json:"durationMinutes" binding:"required,gt=0"`
	Location        Location              `bson:"location" json:"location"`
	Price           float64               `bson:"price" json:"price"` // resolved upstream, consumed as-is
	PreferredTime   *time.Time            `bson:"preferredTime,omitempty" json:"preferredTime,omitempty"`
	TimeFlexibility TimeFlexibility       `bson:"timeFlexibility" json:"timeFlexibility"`
	Priority        Priority              `bson:"priority" json:"priority"`
	WorkerPrefs     *WorkerSelectionPrefs `bson:"workerPrefs,omitempty" json:"workerPrefs,omitempty"`
}
