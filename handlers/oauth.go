package handlers

import (
	"net/http"

	"notaryops/services/calendarsync"

	"github.com/gin-gonic/gin"
)

// ConnectCalendar returns the consent URL a worker must visit to link their
// Google Calendar.
func ConnectCalendar(api *calendarsync.GoogleCalendarAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		workerID := c.Param("workerId")
		if workerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing worker id"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"authUrl": api.AuthorizationURL(workerID)})
	}
}

// OAuthCallback finishes the consent flow and stores the worker's calendar
// credential. The state parameter carries the worker id set at connect time.
func OAuthCallback(api *calendarsync.GoogleCalendarAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Query("code")
		workerID := c.Query("state")
		if code == "" || workerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing code or state"})
			return
		}

		if err := api.HandleOAuthCallback(c.Request.Context(), code, workerID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete calendar authorization", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "calendar connected", "workerId": workerID})
	}
}
