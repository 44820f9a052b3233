package handlers

import (
	"net/http"

	workerRepoPkg "notaryops/database/repository/worker"
	"notaryops/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegisterWorker creates a worker profile.
func RegisterWorker(repo workerRepoPkg.WorkerRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var worker models.WorkerProfile
		if err := c.ShouldBindJSON(&worker); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}
		if worker.ID == "" {
			worker.ID = uuid.New().String()
		}

		if err := repo.Create(c.Request.Context(), &worker); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create worker", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, worker)
	}
}

// GetWorker fetches one worker profile.
func GetWorker(repo workerRepoPkg.WorkerRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		worker, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "worker not found", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, worker)
	}
}

// UpdateWorkerLocation records the worker's latest known position, used as
// the route anchor for the next optimization run.
func UpdateWorkerLocation(repo workerRepoPkg.WorkerRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var loc models.Location
		if err := c.ShouldBindJSON(&loc); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}

		if err := repo.UpdateLastLocation(c.Request.Context(), c.Param("id"), loc); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update location", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "location updated"})
	}
}
