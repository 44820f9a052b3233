package models

// RoutePlan is one worker's ordered appointment list for a day.
// Owned transiently by the optimizer; only its constituent appointments
// and calendar events are persisted.
type RoutePlan struct {
	WorkerID           string                 `json:"workerId"`
	Appointments       []ScheduledAppointment `json:"appointments"`
	TotalTravelMinutes int                    `json:"totalTravelMinutes"`
	TotalDistanceKm    float64                `json:"totalDistanceKm"`
	EstimatedRevenue   float64                `json:"estimatedRevenue"`
	Efficiency         float64                `json:"efficiency"` // revenue per working hour
}
