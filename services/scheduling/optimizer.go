package scheduling

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	auditRepo "notaryops/database/repository/audit"
	"notaryops/models"

	"go.uber.org/zap"
)

// Strategy names one candidate-generation heuristic.
type Strategy string

const (
	StrategyByTime      Strategy = "greedy_by_time"
	StrategyByProximity Strategy = "greedy_by_proximity"
	StrategyByProfit    Strategy = "greedy_by_profitability"
)

// Candidate scoring factor weights.
const (
	weightTravel       = 0.30
	weightPreference   = 0.20
	weightSatisfaction = 0.25
	weightProfit       = 0.15
	weightUtilization  = 0.10
)

// MinHistoricalDataPoints is the booking count below which the scoring
// weights are considered weakly backed and confidence drops.
const MinHistoricalDataPoints = 50

type candidate struct {
	strategy   Strategy
	schedule   []models.ScheduledAppointment
	routePlans []models.RoutePlan
	unassigned []models.UnassignedRequest
	metrics    models.OptimizationMetrics
	score      float64
}

// ScheduleOptimizer generates candidate full-batch schedules via distinct
// heuristics, scores each and selects the best. It is a pure planning step
// over the snapshot it was given; it performs no external writes.
type ScheduleOptimizer struct {
	Balancer *LoadBalancer
	Planner  *RoutePlanner
	Detector *ConflictDetector
	Buffers  *BufferCalculator
	Audit    auditRepo.AuditRepository // optional; run completion is journaled when set
	Logger   *zap.Logger
}

// Optimize runs the full batch: validate, generate candidates under each
// strategy, score, and pick the primary plus up to 3 ranked alternatives.
// Every input request surfaces in the result exactly once, either in the
// schedule or in Unassigned.
func (o *ScheduleOptimizer) Optimize(ctx context.Context, req models.OptimizationRequest) (*models.OptimizationResult, error) {
	valid, invalid := o.validateRequests(req.Requests)

	if o.Logger != nil {
		o.Logger.Info("starting schedule optimization",
			zap.Int("requests", len(req.Requests)),
			zap.Int("invalid", len(invalid)),
			zap.Int("workers", len(req.Constraints.WorkerAvailability)))
	}

	workers := req.Constraints.WorkerAvailability
	if len(workers) == 0 {
		result := &models.OptimizationResult{Unassigned: invalid}
		for _, r := range valid {
			result.Unassigned = append(result.Unassigned, models.UnassignedRequest{
				Request: r,
				Reason:  models.ReasonNoCapacity,
				Detail:  "no worker availability in snapshot",
			})
		}
		return result, nil
	}

	strategies := []Strategy{StrategyByTime, StrategyByProximity, StrategyByProfit}
	candidates := make([]candidate, 0, len(strategies))
	for _, strategy := range strategies {
		cand := o.buildCandidate(ctx, strategy, valid, req)
		cand.score = o.scoreCandidate(cand, valid, req.Preferences)
		candidates = append(candidates, cand)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	primary := candidates[0]

	result := &models.OptimizationResult{
		Schedule:     primary.schedule,
		RoutePlans:   primary.routePlans,
		Unassigned:   append(invalid, primary.unassigned...),
		Metrics:      primary.metrics,
		Alternatives: describeAlternatives(candidates[1:], primary),
		Confidence:   o.confidence(req.History, primary, len(valid)),
	}

	o.journalRun(ctx, req, result)

	if o.Logger != nil {
		o.Logger.Info("schedule optimization completed",
			zap.String("strategy", string(primary.strategy)),
			zap.Int("scheduled", len(result.Schedule)),
			zap.Int("unassigned", len(result.Unassigned)),
			zap.Float64("confidence", result.Confidence))
	}
	return result, nil
}

// validateRequests rejects malformed items individually; the batch
// continues for the rest.
func (o *ScheduleOptimizer) validateRequests(requests []models.BookingRequest) ([]models.BookingRequest, []models.UnassignedRequest) {
	var valid []models.BookingRequest
	var invalid []models.UnassignedRequest
	for _, r := range requests {
		var reason string
		switch {
		case r.ID == "":
			reason = "missing request id"
		case r.ServiceType == "":
			reason = "missing service type"
		case r.DurationMinutes <= 0:
			reason = "non-positive duration"
		}
		if reason != "" {
			invalid = append(invalid, models.UnassignedRequest{
				Request: r,
				Reason:  models.ReasonInvalidRequest,
				Detail:  ValidationError{RequestID: r.ID, Reason: reason}.Error(),
			})
			continue
		}
		valid = append(valid, r)
	}
	return valid, invalid
}

func (o *ScheduleOptimizer) buildCandidate(ctx context.Context, strategy Strategy, requests []models.BookingRequest, req models.OptimizationRequest) candidate {
	ordered := orderRequests(strategy, requests, req.Constraints.WorkerAvailability, o.Buffers)
	assignment := o.Balancer.Assign(ordered, req.Constraints.WorkerAvailability, req.Constraints.MaxDailyBookings)

	cand := candidate{strategy: strategy, unassigned: assignment.Unassigned}
	byID := make(map[string]models.BookingRequest, len(requests))
	for _, r := range requests {
		byID[r.ID] = r
	}

	for _, worker := range req.Constraints.WorkerAvailability {
		assigned := assignment.ByWorker[worker.WorkerID]
		if len(assigned) == 0 {
			continue
		}
		placed, unplaced := o.buildWorkerSchedule(ctx, worker, assigned, byID, req)
		cand.unassigned = append(cand.unassigned, unplaced...)
		if len(placed) == 0 {
			continue
		}
		cand.schedule = append(cand.schedule, placed...)
		cand.routePlans = append(cand.routePlans, assembleRoutePlan(worker.WorkerID, placed, o.Buffers))
	}

	cand.metrics = o.computeMetrics(cand, req.Constraints.WorkerAvailability)
	return cand
}

// buildWorkerSchedule orders one worker's assigned requests into a route
// and walks the worker's open slots placing each stop with its buffers.
// Every placement is gated by the conflict detector when one is wired.
func (o *ScheduleOptimizer) buildWorkerSchedule(ctx context.Context, worker models.WorkerAvailability, assigned []models.BookingRequest, byID map[string]models.BookingRequest, run models.OptimizationRequest) ([]models.ScheduledAppointment, []models.UnassignedRequest) {
	history := run.History
	appts := make([]models.ScheduledAppointment, 0, len(assigned))
	for _, r := range assigned {
		appts = append(appts, models.ScheduledAppointment{
			RequestID:       r.ID,
			WorkerID:        worker.WorkerID,
			ServiceType:     r.ServiceType,
			DurationMinutes: r.DurationMinutes,
			Location:        r.Location,
			Price:           r.Price,
		})
	}

	start := worker.CurrentLocation
	if start == nil {
		start = &assigned[0].Location
	}

	// A worker's own travel cap tightens the global one, never loosens it.
	planner := o.Planner
	if limit := worker.Preferences.MaxDailyTravelMinutes; limit > 0 && (planner.MaxTravelMinutes == 0 || limit < planner.MaxTravelMinutes) {
		tighter := *o.Planner
		tighter.MaxTravelMinutes = limit
		planner = &tighter
	}
	routed, capExcess := planner.Plan(worker.WorkerID, *start, appts)

	var unplaced []models.UnassignedRequest
	for _, a := range capExcess {
		unplaced = append(unplaced, models.UnassignedRequest{
			Request: byID[a.RequestID],
			Reason:  models.ReasonRouteCap,
		})
	}

	slots := openSlots(worker.AvailableSlots, run.TimeRange, worker.Preferences.WorkingHours)
	var placed []models.ScheduledAppointment
	var earliest time.Time
	prev := *start

	for _, appt := range routed.Appointments {
		req := byID[appt.RequestID]
		buffers := o.Buffers.Compute(appt.ServiceType, &prev, &appt.Location)
		lead := buffers.Lead()
		trail := buffers.Trail()
		duration := time.Duration(appt.DurationMinutes) * time.Minute

		startTime, ok := placeInSlots(slots, earliest, lead, trail, duration)
		if !ok {
			unplaced = append(unplaced, models.UnassignedRequest{
				Request: req,
				Reason:  models.ReasonNoOpenSlot,
			})
			continue
		}
		endTime := startTime.Add(duration)

		bufferViolated := false
		if o.Detector != nil {
			report, err := o.Detector.Detect(ctx, worker.WorkerID, startTime, endTime, lead, trail)
			if err != nil {
				// Planning degrades gracefully: the request is reported
				// back, never scheduled on an unverifiable slot.
				unplaced = append(unplaced, models.UnassignedRequest{
					Request: req,
					Reason:  models.ReasonConflict,
					Detail:  err.Error(),
				})
				continue
			}
			if report.HasBlocking() {
				unplaced = append(unplaced, models.UnassignedRequest{
					Request: req,
					Reason:  models.ReasonConflict,
					Detail:  fmt.Sprintf("%d blocking calendar conflict(s)", len(report.Conflicts)),
				})
				continue
			}
			bufferViolated = report.HasConflict
		}

		appt.ScheduledTime = startTime
		appt.LeadBufferMinutes = lead
		appt.TrailBufferMinutes = trail
		appt.ConfidenceScore = placementConfidence(req, startTime, bufferViolated, history)
		placed = append(placed, appt)

		gap := trail
		if run.Constraints.MinMinutesBetween > gap {
			gap = run.Constraints.MinMinutesBetween
		}
		earliest = endTime.Add(time.Duration(gap) * time.Minute)
		prev = appt.Location
	}

	return placed, unplaced
}

// placeInSlots finds the earliest start inside the open slots such that
// lead buffer, core interval and trail buffer all fit within one slot and
// the whole expanded block starts no earlier than earliest.
func placeInSlots(slots []models.TimeSlot, earliest time.Time, lead, trail int, duration time.Duration) (time.Time, bool) {
	leadDur := time.Duration(lead) * time.Minute
	trailDur := time.Duration(trail) * time.Minute
	for _, slot := range slots {
		blockStart := slot.Start
		if blockStart.Before(earliest) {
			blockStart = earliest
		}
		start := blockStart.Add(leadDur)
		if !start.Add(duration).Add(trailDur).After(slot.End) {
			return start, true
		}
	}
	return time.Time{}, false
}

// openSlots keeps the unbooked slots, clipped to the run's time range and
// the worker's own daily working hours, sorted by start.
func openSlots(slots []models.TimeSlot, window models.TimeRange, hours models.WorkingHours) []models.TimeSlot {
	open := make([]models.TimeSlot, 0, len(slots))
	for _, s := range slots {
		if s.Booked {
			continue
		}
		s = clipToWindow(s, window)
		s = clipToWorkingHours(s, hours)
		if !s.Start.Before(s.End) {
			continue
		}
		open = append(open, s)
	}
	sort.SliceStable(open, func(i, j int) bool { return open[i].Start.Before(open[j].Start) })
	return open
}

func clipToWindow(s models.TimeSlot, w models.TimeRange) models.TimeSlot {
	if !w.Start.IsZero() && s.Start.Before(w.Start) {
		s.Start = w.Start
	}
	if !w.End.IsZero() && s.End.After(w.End) {
		s.End = w.End
	}
	return s
}

// clipToWorkingHours narrows a slot to the worker's "HH:MM" daily window,
// interpreted in the slot's own timezone. Unset hours leave the slot as is.
func clipToWorkingHours(s models.TimeSlot, hours models.WorkingHours) models.TimeSlot {
	if hours.Start == "" && hours.End == "" {
		return s
	}
	y, m, d := s.Start.Date()
	if hours.Start != "" {
		h, min := parseHHMM(hours.Start, 0, 0)
		dayStart := time.Date(y, m, d, h, min, 0, 0, s.Start.Location())
		if s.Start.Before(dayStart) {
			s.Start = dayStart
		}
	}
	if hours.End != "" {
		h, min := parseHHMM(hours.End, 23, 59)
		dayEnd := time.Date(y, m, d, h, min, 0, 0, s.Start.Location())
		if s.End.After(dayEnd) {
			s.End = dayEnd
		}
	}
	return s
}

// placementConfidence scores one placement deterministically from time
// flexibility, preferred-time drift, buffer pressure and history depth.
func placementConfidence(req models.BookingRequest, start time.Time, bufferViolated bool, history *models.HistoricalSnapshot) float64 {
	score := 0.9
	if req.PreferredTime != nil {
		drift := start.Sub(*req.PreferredTime)
		if drift < 0 {
			drift = -drift
		}
		switch {
		case drift <= 30*time.Minute:
			// close enough to the ask, keep the base
		case req.TimeFlexibility == models.FlexibilityRigid:
			score -= 0.4
		case req.TimeFlexibility == models.FlexibilityModerate:
			score -= 0.2
		default:
			score -= 0.1
		}
	}
	if bufferViolated {
		score -= 0.2
	}
	if history.DataPoints() < MinHistoricalDataPoints {
		score -= 0.1
	}
	if score < 0.1 {
		score = 0.1
	}
	return score
}

// orderRequests produces the strategy-specific submission order fed to the
// load balancer. All orderings are deterministic.
func orderRequests(strategy Strategy, requests []models.BookingRequest, workers []models.WorkerAvailability, buffers *BufferCalculator) []models.BookingRequest {
	ordered := make([]models.BookingRequest, len(requests))
	copy(ordered, requests)

	switch strategy {
	case StrategyByTime:
		sort.SliceStable(ordered, func(i, j int) bool {
			a, b := ordered[i].PreferredTime, ordered[j].PreferredTime
			switch {
			case a == nil && b == nil:
				return ordered[i].ID < ordered[j].ID
			case a == nil:
				return false
			case b == nil:
				return true
			case a.Equal(*b):
				return ordered[i].ID < ordered[j].ID
			default:
				return a.Before(*b)
			}
		})
	case StrategyByProximity:
		anchor := workerAnchor(workers, requests)
		sort.SliceStable(ordered, func(i, j int) bool {
			di := buffers.Distance.DistanceKm(anchor, ordered[i].Location)
			dj := buffers.Distance.DistanceKm(anchor, ordered[j].Location)
			if di == dj {
				return ordered[i].ID < ordered[j].ID
			}
			return di < dj
		})
	case StrategyByProfit:
		sort.SliceStable(ordered, func(i, j int) bool {
			if ordered[i].Price == ordered[j].Price {
				return ordered[i].ID < ordered[j].ID
			}
			return ordered[i].Price > ordered[j].Price
		})
	}
	return ordered
}

// workerAnchor is the centroid of known worker locations, falling back to
// the first request's stop when no worker reports a location.
func workerAnchor(workers []models.WorkerAvailability, requests []models.BookingRequest) models.Location {
	var sumLat, sumLng float64
	var n int
	for _, w := range workers {
		if w.CurrentLocation != nil {
			sumLat += w.CurrentLocation.Lat
			sumLng += w.CurrentLocation.Lng
			n++
		}
	}
	if n == 0 {
		if len(requests) > 0 {
			return requests[0].Location
		}
		return models.Location{}
	}
	return models.Location{Lat: sumLat / float64(n), Lng: sumLng / float64(n)}
}

// assembleRoutePlan rebuilds the per-worker aggregate view from the placed
// appointments, preserving their scheduled order.
func assembleRoutePlan(workerID string, placed []models.ScheduledAppointment, buffers *BufferCalculator) models.RoutePlan {
	plan := models.RoutePlan{WorkerID: workerID, Appointments: placed}
	for i, a := range placed {
		plan.TotalTravelMinutes += a.TravelTimeFromPrev
		plan.EstimatedRevenue += a.Price
		if i > 0 {
			plan.TotalDistanceKm += buffers.Distance.DistanceKm(placed[i-1].Location, a.Location)
		}
	}
	plan.Efficiency = routeEfficiency(plan)
	return plan
}

func (o *ScheduleOptimizer) computeMetrics(cand candidate, workers []models.WorkerAvailability) models.OptimizationMetrics {
	m := models.OptimizationMetrics{}
	for _, a := range cand.schedule {
		m.TotalRevenue += a.Price
		m.SatisfactionScore += a.ConfidenceScore
	}
	if len(cand.schedule) > 0 {
		m.SatisfactionScore /= float64(len(cand.schedule))
	}
	for _, p := range cand.routePlans {
		m.TotalTravelMinutes += p.TotalTravelMinutes
		m.RouteEfficiency += p.Efficiency
	}
	if len(cand.routePlans) > 0 {
		m.RouteEfficiency /= float64(len(cand.routePlans))
	}
	m.AvgWorkerUtilization = avgUtilization(cand, workers)
	return m
}

// avgUtilization is booked minutes (service plus travel) over open slot
// minutes, averaged across workers that had any open time.
func avgUtilization(cand candidate, workers []models.WorkerAvailability) float64 {
	busyByWorker := make(map[string]int)
	for _, a := range cand.schedule {
		busyByWorker[a.WorkerID] += a.DurationMinutes + a.TravelTimeFromPrev
	}

	var sum float64
	var n int
	for _, w := range workers {
		var openMinutes int
		for _, s := range w.AvailableSlots {
			if !s.Booked {
				openMinutes += int(s.End.Sub(s.Start) / time.Minute)
			}
		}
		if openMinutes == 0 {
			continue
		}
		u := float64(busyByWorker[w.WorkerID]) / float64(openMinutes)
		if u > 1 {
			u = 1
		}
		sum += u
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// scoreCandidate computes the deterministic weighted-factor score on a
// 0..100 scale.
func (o *ScheduleOptimizer) scoreCandidate(cand candidate, valid []models.BookingRequest, prefs models.OptimizationPreferences) float64 {
	if len(valid) == 0 {
		return 0
	}

	placementRate := float64(len(cand.schedule)) / float64(len(valid))

	var possibleRevenue float64
	for _, r := range valid {
		possibleRevenue += r.Price
	}
	profitScore := 0.0
	if possibleRevenue > 0 {
		profitScore = cand.metrics.TotalRevenue / possibleRevenue
	}

	travelScore := 1.0
	if len(cand.schedule) > 0 {
		avgTravel := float64(cand.metrics.TotalTravelMinutes) / float64(len(cand.schedule))
		travelScore = 1 - avgTravel/float64(travelCrossTown)
		if travelScore < 0 {
			travelScore = 0
		}
	}

	wTravel, wPref, wSat, wProfit, wUtil := weightTravel, weightPreference, weightSatisfaction, weightProfit, weightUtilization
	if prefs.PrioritizeProfit {
		wProfit += 0.10
	}
	if prefs.PrioritizeSatisfaction {
		wSat += 0.10
	}
	if prefs.PrioritizeWorkerUtilization {
		wUtil += 0.10
	}

	weighted := wTravel*travelScore +
		wPref*placementRate +
		wSat*cand.metrics.SatisfactionScore +
		wProfit*profitScore +
		wUtil*cand.metrics.AvgWorkerUtilization
	return 100 * weighted
}

// confidence reflects how much historical data backs the scoring weights
// and how complete the chosen schedule is.
func (o *ScheduleOptimizer) confidence(history *models.HistoricalSnapshot, primary candidate, validCount int) float64 {
	dataQuality := float64(history.DataPoints()) / float64(MinHistoricalDataPoints)
	if dataQuality > 1 {
		dataQuality = 1
	}
	completeness := 0.0
	if validCount > 0 {
		completeness = float64(len(primary.schedule)) / float64(validCount)
	}
	return (dataQuality + completeness) / 2
}

func describeAlternatives(rest []candidate, primary candidate) []models.AlternativeOption {
	var alts []models.AlternativeOption
	for _, c := range rest {
		if len(alts) == 3 {
			break
		}
		alts = append(alts, models.AlternativeOption{
			Description: fmt.Sprintf("%s: %d appointments, %d min travel, %.0f revenue",
				c.strategy, len(c.schedule), c.metrics.TotalTravelMinutes, c.metrics.TotalRevenue),
			Schedule:    c.schedule,
			TradeOffs:   tradeOffs(c, primary),
			ImpactScore: c.score,
		})
	}
	return alts
}

func tradeOffs(alt, primary candidate) []string {
	var offs []string
	if len(alt.schedule) < len(primary.schedule) {
		offs = append(offs, "fewer appointments scheduled")
	}
	if len(alt.schedule) > len(primary.schedule) {
		offs = append(offs, "more appointments but lower overall score")
	}
	if alt.metrics.TotalTravelMinutes > primary.metrics.TotalTravelMinutes {
		offs = append(offs, "more total travel time")
	}
	if alt.metrics.TotalRevenue < primary.metrics.TotalRevenue {
		offs = append(offs, "lower projected revenue")
	}
	return offs
}

func (o *ScheduleOptimizer) journalRun(ctx context.Context, req models.OptimizationRequest, result *models.OptimizationResult) {
	if o.Audit == nil {
		return
	}
	detail, err := json.Marshal(map[string]any{
		"requestCount":   len(req.Requests),
		"scheduledCount": len(result.Schedule),
		"confidence":     result.Confidence,
		"metrics":        result.Metrics,
	})
	if err != nil {
		return
	}
	entry := models.AuditEntry{
		WorkerID: "system",
		Action:   models.AuditOptimizationDone,
		Details:  string(detail),
	}
	if err := o.Audit.Append(ctx, entry); err != nil && o.Logger != nil {
		o.Logger.Warn("failed to journal optimization run", zap.Error(err))
	}
}
