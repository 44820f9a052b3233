package scheduling

import (
	"notaryops/models"
)

// RoutePlanner orders one worker's appointments for a day using a
// nearest-next heuristic. The ordering is an approximation, not an optimal
// tour; it is deterministic for a given input set.
type RoutePlanner struct {
	Buffers          *BufferCalculator
	MaxStops         int
	MaxTravelMinutes int
}

// Plan repeatedly appends the unvisited stop closest to the current
// position, starting from start. Appointments that would exceed the stop
// cap or the travel-minutes cap are returned as unplaced rather than
// silently dropped.
func (p *RoutePlanner) Plan(workerID string, start models.Location, appts []models.ScheduledAppointment) (models.RoutePlan, []models.ScheduledAppointment) {
	plan := models.RoutePlan{WorkerID: workerID}
	if len(appts) == 0 {
		return plan, nil
	}

	remaining := make([]models.ScheduledAppointment, len(appts))
	copy(remaining, appts)

	current := start
	var unplaced []models.ScheduledAppointment

	for len(remaining) > 0 {
		if p.MaxStops > 0 && len(plan.Appointments) >= p.MaxStops {
			unplaced = append(unplaced, remaining...)
			break
		}

		// Nearest unvisited stop; ties broken by request ID so reruns
		// on the same input produce the same ordering.
		best := 0
		bestDist := p.Buffers.Distance.DistanceKm(current, remaining[0].Location)
		for i := 1; i < len(remaining); i++ {
			d := p.Buffers.Distance.DistanceKm(current, remaining[i].Location)
			if d < bestDist || (d == bestDist && remaining[i].RequestID < remaining[best].RequestID) {
				best = i
				bestDist = d
			}
		}

		next := remaining[best]
		travel := p.Buffers.TravelMinutes(current, next.Location)
		if p.MaxTravelMinutes > 0 && plan.TotalTravelMinutes+travel > p.MaxTravelMinutes {
			unplaced = append(unplaced, remaining...)
			break
		}

		next.TravelTimeFromPrev = travel
		plan.Appointments = append(plan.Appointments, next)
		plan.TotalTravelMinutes += travel
		plan.TotalDistanceKm += bestDist
		plan.EstimatedRevenue += next.Price

		current = next.Location
		remaining = append(remaining[:best], remaining[best+1:]...)
	}

	plan.Efficiency = routeEfficiency(plan)
	return plan, unplaced
}

// routeEfficiency is revenue produced per working hour on the route.
func routeEfficiency(plan models.RoutePlan) float64 {
	totalMinutes := plan.TotalTravelMinutes
	for _, a := range plan.Appointments {
		totalMinutes += a.DurationMinutes
	}
	if totalMinutes == 0 {
		return 0
	}
	return plan.EstimatedRevenue / (float64(totalMinutes) / 60)
}
