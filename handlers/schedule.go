package handlers

import (
	"errors"
	"net/http"
	"time"

	"notaryops/config"
	"notaryops/cron"
	"notaryops/models"
	"notaryops/services/scheduling"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OptimizeSchedule runs one batch optimization over the posted snapshot.
func OptimizeSchedule(optimizer *scheduling.ScheduleOptimizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.OptimizationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}

		applyConstraintDefaults(&req.Constraints)

		// The caller may pin a specific snapshot version; otherwise use the
		// latest one published by the batch job.
		if req.History == nil {
			snapshot, err := cron.LoadSnapshot(c.Request.Context())
			if err != nil {
				zap.L().Warn("failed to load historical snapshot", zap.Error(err))
			} else {
				req.History = snapshot
			}
		}

		result, err := optimizer.Optimize(c.Request.Context(), req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "optimization failed", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// CheckConflict checks one proposed interval against a worker's external
// calendar.
func CheckConflict(detector *scheduling.ConflictDetector) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			WorkerID           string    `json:"workerId" binding:"required"`
			Start              time.Time `json:"start" binding:"required"`
			End                time.Time `json:"end" binding:"required"`
			LeadBufferMinutes  int       `json:"leadBufferMinutes"`
			TrailBufferMinutes int       `json:"trailBufferMinutes"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}
		if !input.Start.Before(input.End) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start must be before end"})
			return
		}

		report, err := detector.Detect(c.Request.Context(), input.WorkerID, input.Start, input.End, input.LeadBufferMinutes, input.TrailBufferMinutes)
		if err != nil {
			if errors.Is(err, scheduling.ErrCalendarUnavailable) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "external calendar unavailable", "details": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "conflict check failed", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, report)
	}
}

// RebuildReadModel enqueues an offline rebuild of the historical snapshot.
func RebuildReadModel() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := cron.EnqueueRebuild(getRequester(c)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue rebuild", "details": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "rebuild enqueued"})
	}
}

func getRequester(c *gin.Context) string {
	if v := c.GetHeader("X-Requested-By"); v != "" {
		return v
	}
	return c.ClientIP()
}

// applyConstraintDefaults fills unset constraint fields from configuration.
func applyConstraintDefaults(constraints *models.SchedulingConstraints) {
	if constraints.BusinessHours.Start == "" {
		constraints.BusinessHours.Start = config.AppConfig.BusinessHoursStart
	}
	if constraints.BusinessHours.End == "" {
		constraints.BusinessHours.End = config.AppConfig.BusinessHoursEnd
	}
	if constraints.DefaultBufferMinutes <= 0 {
		constraints.DefaultBufferMinutes = config.AppConfig.DefaultBufferMinutes
	}
	if constraints.MaxDailyBookings <= 0 {
		constraints.MaxDailyBookings = config.AppConfig.MaxDailyBookings
	}
}
