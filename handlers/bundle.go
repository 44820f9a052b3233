package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Scheduling endpoints
	OptimizeScheduleHandler gin.HandlerFunc
	CheckConflictHandler    gin.HandlerFunc

	// Calendar sync endpoints
	SyncCreateHandler gin.HandlerFunc
	SyncUpdateHandler gin.HandlerFunc
	SyncDeleteHandler gin.HandlerFunc
	SyncWorkerHandler gin.HandlerFunc
	ConnectCalendar   gin.HandlerFunc
	OAuthCallback     gin.HandlerFunc

	// Worker endpoints
	RegisterWorkerHandler       gin.HandlerFunc
	GetWorkerHandler            gin.HandlerFunc
	UpdateWorkerLocationHandler gin.HandlerFunc

	// Read model endpoints
	RebuildReadModelHandler gin.HandlerFunc
}
