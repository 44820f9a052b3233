package models

import "time"

// SchedulingConstraints bound one optimization run.
type SchedulingConstraints struct {
	BusinessHours        WorkingHours         `json:"businessHours"`
	DefaultBufferMinutes int                  `json:"defaultBufferMinutes"`
	MaxDailyBookings     int                  `json:"maxDailyBookings"`
	MinMinutesBetween    int                  `json:"minMinutesBetween"`
	WorkerAvailability   []WorkerAvailability `json:"workerAvailability"`
}

// OptimizationPreferences weight the optimizer's candidate scoring.
type OptimizationPreferences struct {
	PrioritizeProfit            bool `json:"prioritizeProfit"`
	PrioritizeSatisfaction      bool `json:"prioritizeSatisfaction"`
	PrioritizeWorkerUtilization bool `json:"prioritizeWorkerUtilization"`
}

// OptimizationRequest is the full input snapshot of one batch run.
type OptimizationRequest struct {
	Requests    []BookingRequest        `json:"requests" binding:"required"`
	TimeRange   TimeRange               `json:"timeRange"`
	Constraints SchedulingConstraints   `json:"constraints"`
	Preferences OptimizationPreferences `json:"preferences"`
	History     *HistoricalSnapshot     `json:"history,omitempty"`
}

// TimeRange is a half-open window [Start, End).
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// OptimizationMetrics aggregate a candidate schedule's quality.
type OptimizationMetrics struct {
	TotalRevenue         float64 `json:"totalRevenue"`
	TotalTravelMinutes   int     `json:"totalTravelMinutes"`
	AvgWorkerUtilization float64 `json:"avgWorkerUtilization"`
	SatisfactionScore    float64 `json:"satisfactionScore"`
	RouteEfficiency      float64 `json:"routeEfficiency"`
}

// AlternativeOption is a non-selected candidate schedule kept for the caller.
type AlternativeOption struct {
	Description string                 `json:"description"`
	Schedule    []ScheduledAppointment `json:"schedule"`
	TradeOffs   []string               `json:"tradeOffs"`
	ImpactScore float64                `json:"impactScore"`
}

// UnassignedReason tells the caller why a request was not placed.
type UnassignedReason string

const (
	ReasonNoCapacity     UnassignedReason = "no_worker_capacity"
	ReasonNoSkillMatch   UnassignedReason = "no_skill_match"
	ReasonRouteCap       UnassignedReason = "route_cap_exceeded"
	ReasonNoOpenSlot     UnassignedReason = "no_open_slot"
	ReasonConflict       UnassignedReason = "calendar_conflict"
	ReasonInvalidRequest UnassignedReason = "invalid_request"
)

// UnassignedRequest pairs a request with the reason it could not be placed.
// Every input request surfaces either here or in the schedule; never dropped.
type UnassignedRequest struct {
	Request BookingRequest   `json:"request"`
	Reason  UnassignedReason `json:"reason"`
	Detail  string           `json:"detail,omitempty"`
}

// OptimizationResult is the outcome of one batch run.
type OptimizationResult struct {
	Schedule     []ScheduledAppointment `json:"schedule"`
	RoutePlans   []RoutePlan            `json:"routePlans"`
	Unassigned   []UnassignedRequest    `json:"unassigned"`
	Metrics      OptimizationMetrics    `json:"metrics"`
	Alternatives []AlternativeOption    `json:"alternatives"`
	Confidence   float64                `json:"confidence"`
}
