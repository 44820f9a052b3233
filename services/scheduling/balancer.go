package scheduling

import (
	"sort"

	"notaryops/models"

	"go.uber.org/zap"
)

// Scoring constants for worker selection. Preference matches are soft
// bonuses: they steer ties, never exclude a worker.
const (
	baseScore       = 10.0
	loadPenalty     = 2.0
	skillMatchBonus = 5.0
	preferenceBonus = 1.0
)

// Assignment is the outcome of distributing a batch across workers.
type Assignment struct {
	ByWorker   map[string][]models.BookingRequest
	Unassigned []models.UnassignedRequest
}

// LoadBalancer distributes pending requests across available workers by
// priority, skill match, declared preferences and current load. Greedy,
// not globally optimal.
type LoadBalancer struct {
	// MandatorySkills lists service kinds that may only go to workers whose
	// skill set contains them.
	MandatorySkills map[string]bool
	Logger          *zap.Logger
}

// Assign walks the requests in priority order (urgent > high > normal >
// low) and gives each to the highest-scoring worker under its daily
// capacity cap. Requests no worker can take are returned as unassigned.
func (lb *LoadBalancer) Assign(requests []models.BookingRequest, workers []models.WorkerAvailability, maxDaily int) Assignment {
	result := Assignment{ByWorker: make(map[string][]models.BookingRequest, len(workers))}
	for _, w := range workers {
		result.ByWorker[w.WorkerID] = nil
	}

	ordered := make([]models.BookingRequest, len(requests))
	copy(ordered, requests)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority.Weight() > ordered[j].Priority.Weight()
	})

	for _, req := range ordered {
		bestIdx := -1
		bestScore := 0.0
		skillRequired := lb.MandatorySkills[req.ServiceType]

		for i, w := range workers {
			load := len(result.ByWorker[w.WorkerID])
			if maxDaily > 0 && load >= maxDaily {
				continue
			}
			hasSkill := w.HasSkill(req.ServiceType)
			if skillRequired && !hasSkill {
				continue
			}
			score := baseScore - loadPenalty*float64(load)
			if hasSkill {
				score += skillMatchBonus
			}
			if w.Preferences.PrefersServiceType(req.ServiceType) {
				score += preferenceBonus
			}
			if prefs := req.WorkerPrefs; prefs != nil {
				if prefs.LanguagePreference != "" && w.SpeaksLanguage(prefs.LanguagePreference) {
					score += preferenceBonus
				}
				if prefs.ExperienceLevel != "" && w.MeetsExperience(prefs.ExperienceLevel) {
					score += preferenceBonus
				}
			}
			if bestIdx == -1 || score > bestScore {
				bestIdx = i
				bestScore = score
			}
		}

		if bestIdx == -1 {
			reason := models.ReasonNoCapacity
			if skillRequired {
				reason = models.ReasonNoSkillMatch
			}
			result.Unassigned = append(result.Unassigned, models.UnassignedRequest{
				Request: req,
				Reason:  reason,
			})
			if lb.Logger != nil {
				lb.Logger.Debug("request left unassigned",
					zap.String("requestId", req.ID), zap.String("reason", string(reason)))
			}
			continue
		}

		workerID := workers[bestIdx].WorkerID
		result.ByWorker[workerID] = append(result.ByWorker[workerID], req)
	}

	return result
}
