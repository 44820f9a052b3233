package scheduling

import (
	"math"
	"testing"

	"notaryops/models"
)

// lineDistance treats Lat as a position on a line, which keeps route
// geometry easy to reason about in tests.
type lineDistance struct{}

func (lineDistance) DistanceKm(a, b models.Location) float64 {
	return math.Abs(a.Lat - b.Lat)
}

func testPlanner(maxStops, maxTravel int) *RoutePlanner {
	return &RoutePlanner{
		Buffers:          &BufferCalculator{Distance: lineDistance{}},
		MaxStops:         maxStops,
		MaxTravelMinutes: maxTravel,
	}
}

func stop(requestID string, lat, price float64) models.ScheduledAppointment {
	return models.ScheduledAppointment{
		RequestID:       requestID,
		ServiceType:     "standard",
		DurationMinutes: 60,
		Location:        models.Location{Lat: lat},
		Price:           price,
	}
}

func TestPlanVisitsNearestNext(t *testing.T) {
	planner := testPlanner(8, 0)
	appts := []models.ScheduledAppointment{
		stop("r-far", 5, 100),
		stop("r-near", 2, 100),
		stop("r-mid", 3, 100),
	}

	plan, unplaced := planner.Plan("w-1", models.Location{Lat: 0}, appts)
	if len(unplaced) != 0 {
		t.Fatalf("expected no unplaced stops, got %d", len(unplaced))
	}

	wantOrder := []string{"r-near", "r-mid", "r-far"}
	if len(plan.Appointments) != len(wantOrder) {
		t.Fatalf("got %d stops, want %d", len(plan.Appointments), len(wantOrder))
	}
	for i, want := range wantOrder {
		if plan.Appointments[i].RequestID != want {
			t.Errorf("stop %d = %s, want %s", i, plan.Appointments[i].RequestID, want)
		}
	}

	// All hops are within the lowest distance tier.
	if plan.TotalTravelMinutes != 3*travelSameCity {
		t.Errorf("TotalTravelMinutes = %d, want %d", plan.TotalTravelMinutes, 3*travelSameCity)
	}
	if plan.EstimatedRevenue != 300 {
		t.Errorf("EstimatedRevenue = %.0f, want 300", plan.EstimatedRevenue)
	}
	for _, a := range plan.Appointments {
		if a.TravelTimeFromPrev != travelSameCity {
			t.Errorf("stop %s travel = %d, want %d", a.RequestID, a.TravelTimeFromPrev, travelSameCity)
		}
	}
}

func TestPlanBreaksDistanceTiesByRequestID(t *testing.T) {
	planner := testPlanner(8, 0)
	appts := []models.ScheduledAppointment{
		stop("r-b", 2, 100),
		stop("r-a", 2, 100),
	}

	plan, _ := planner.Plan("w-1", models.Location{Lat: 0}, appts)
	if plan.Appointments[0].RequestID != "r-a" {
		t.Errorf("first stop = %s, want r-a", plan.Appointments[0].RequestID)
	}
}

func TestPlanEnforcesStopCap(t *testing.T) {
	planner := testPlanner(2, 0)
	appts := []models.ScheduledAppointment{
		stop("r-1", 1, 100),
		stop("r-2", 2, 100),
		stop("r-3", 3, 100),
	}

	plan, unplaced := planner.Plan("w-1", models.Location{Lat: 0}, appts)
	if len(plan.Appointments) != 2 {
		t.Errorf("got %d stops, cap is 2", len(plan.Appointments))
	}
	if len(unplaced) != 1 || unplaced[0].RequestID != "r-3" {
		t.Errorf("unplaced = %+v, want the farthest stop r-3", unplaced)
	}
}

func TestPlanEnforcesTravelCap(t *testing.T) {
	planner := testPlanner(8, 2*travelSameCity)
	appts := []models.ScheduledAppointment{
		stop("r-1", 1, 100),
		stop("r-2", 2, 100),
		stop("r-3", 3, 100),
	}

	plan, unplaced := planner.Plan("w-1", models.Location{Lat: 0}, appts)
	if len(plan.Appointments) != 2 {
		t.Errorf("got %d stops, want 2 under the travel cap", len(plan.Appointments))
	}
	if plan.TotalTravelMinutes > 2*travelSameCity {
		t.Errorf("TotalTravelMinutes = %d exceeds cap", plan.TotalTravelMinutes)
	}
	if len(unplaced) != 1 {
		t.Errorf("expected 1 unplaced stop, got %d", len(unplaced))
	}
}

func TestPlanEmptyInput(t *testing.T) {
	planner := testPlanner(8, 45)
	plan, unplaced := planner.Plan("w-1", models.Location{}, nil)
	if len(plan.Appointments) != 0 || len(unplaced) != 0 {
		t.Errorf("expected empty plan, got %d stops and %d unplaced", len(plan.Appointments), len(unplaced))
	}
	if plan.Efficiency != 0 {
		t.Errorf("Efficiency = %.2f, want 0", plan.Efficiency)
	}
}

func TestRouteEfficiencyIsRevenuePerHour(t *testing.T) {
	planner := testPlanner(8, 0)
	appts := []models.ScheduledAppointment{stop("r-1", 1, 90)}

	plan, _ := planner.Plan("w-1", models.Location{Lat: 0}, appts)
	// 60 service minutes plus one same-city hop of 15 minutes.
	want := 90 / (75.0 / 60)
	if math.Abs(plan.Efficiency-want) > 1e-9 {
		t.Errorf("Efficiency = %.4f, want %.4f", plan.Efficiency, want)
	}
}
