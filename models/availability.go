package models

import "time"

// TimeSlot is a half-open interval [Start, End). Within one worker's
// availability, slots never overlap.
type TimeSlot struct {
	Start  time.Time `bson:"start" json:"start"`
	End    time.Time `bson:"end" json:"end"`
	Booked bool      `bson:"booked" json:"booked"`
}

// Overlaps reports whether the slot intersects [start, end).
func (s TimeSlot) Overlaps(start, end time.Time) bool {
	return s.Start.Before(end) && start.Before(s.End)
}

// WorkingHours is a daily working window in "HH:MM" local time.
type WorkingHours struct {
	Start string `bson:"start" json:"start"` // e.g. "08:00"
	End   string `bson:"end" json:"end"`     // e.g. "18:00"
}

// WorkerPreferences are per-worker routing and assignment preferences.
type WorkerPreferences struct {
	MaxDailyTravelMinutes int          `bson:"maxDailyTravelMinutes" json:"maxDailyTravelMinutes"`
	PreferredServiceTypes []string     `bson:"preferredServiceTypes" json:"preferredServiceTypes"`
	WorkingHours          WorkingHours `bson:"workingHours" json:"workingHours"`
}

// PrefersServiceType reports whether the service type is one the worker
// asked to be favored for. An empty list favors nothing in particular.
func (p WorkerPreferences) PrefersServiceType(serviceType string) bool {
	for _, s := range p.PreferredServiceTypes {
		if s == serviceType {
			return true
		}
	}
	return false
}

// WorkerAvailability is a read-only snapshot of one worker's open slots,
// skills and preferences, supplied fresh per optimization run.
type WorkerAvailability struct {
	WorkerID        string            `bson:"workerId" json:"workerId"`
	AvailableSlots  []TimeSlot        `bson:"availableSlots" json:"availableSlots"`
	SkillSet        []string          `bson:"skillSet" json:"skillSet"`
	Languages       []string          `bson:"languages,omitempty" json:"languages,omitempty"`
	ExperienceLevel string            `bson:"experienceLevel,omitempty" json:"experienceLevel,omitempty"` // "junior", "experienced", "senior"
	Preferences     WorkerPreferences `bson:"preferences" json:"preferences"`
	CurrentLocation *Location         `bson:"currentLocation,omitempty" json:"currentLocation,omitempty"`
}

// SpeaksLanguage reports whether the worker lists the language.
func (w WorkerAvailability) SpeaksLanguage(lang string) bool {
	for _, l := range w.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// MeetsExperience reports whether the worker's level satisfies the asked
// one. "any", empty and unknown asks match every worker.
func (w WorkerAvailability) MeetsExperience(asked string) bool {
	switch asked {
	case "senior":
		return w.ExperienceLevel == "senior"
	case "experienced":
		return w.ExperienceLevel == "experienced" || w.ExperienceLevel == "senior"
	default:
		return true
	}
}

// HasSkill reports whether the worker's skill set contains the service type.
func (w WorkerAvailability) HasSkill(serviceType string) bool {
	for _, s := range w.SkillSet {
		if s == serviceType {
			return true
		}
	}
	return false
}
