package handlers

import (
	"errors"
	"net/http"

	"notaryops/models"
	"notaryops/services/calendarsync"
	"notaryops/services/scheduling"

	"github.com/gin-gonic/gin"
)

// SyncCreate pushes one appointment to the worker's external calendar.
func SyncCreate(svc calendarsync.SyncService) gin.HandlerFunc {
	return func(c *gin.Context) {
		appointmentID := c.Param("id")

		eventID, err := svc.CreateEvent(c.Request.Context(), appointmentID)
		if err != nil {
			var blocking scheduling.BlockingConflictError
			switch {
			case errors.Is(err, calendarsync.ErrAlreadySynced):
				c.JSON(http.StatusConflict, gin.H{"error": "appointment already synced"})
			case errors.As(err, &blocking):
				c.JSON(http.StatusConflict, gin.H{"error": "blocking calendar conflict", "details": blocking.Error()})
			case errors.Is(err, scheduling.ErrCalendarUnavailable):
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "external calendar unavailable", "details": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create calendar event", "details": err.Error()})
			}
			return
		}

		c.JSON(http.StatusCreated, gin.H{"eventId": eventID})
	}
}

// SyncUpdate patches the external event behind one appointment.
func SyncUpdate(svc calendarsync.SyncService) gin.HandlerFunc {
	return func(c *gin.Context) {
		appointmentID := c.Param("id")

		var patch models.EventPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}

		if err := svc.UpdateEvent(c.Request.Context(), appointmentID, patch); err != nil {
			if errors.Is(err, calendarsync.ErrNotSynced) {
				c.JSON(http.StatusConflict, gin.H{"error": "appointment has no calendar event"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update calendar event", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "updated"})
	}
}

// SyncDelete removes the external event behind one appointment. Deleting an
// appointment that has no event reference succeeds quietly.
func SyncDelete(svc calendarsync.SyncService) gin.HandlerFunc {
	return func(c *gin.Context) {
		appointmentID := c.Param("id")

		if err := svc.DeleteEvent(c.Request.Context(), appointmentID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete calendar event", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	}
}

// SyncWorker backfills calendar events for all of a worker's pending
// appointments.
func SyncWorker(svc calendarsync.SyncService) gin.HandlerFunc {
	return func(c *gin.Context) {
		workerID := c.Param("workerId")

		synced, err := svc.SyncAllForWorker(c.Request.Context(), workerID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sync worker appointments", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"synced": synced})
	}
}
