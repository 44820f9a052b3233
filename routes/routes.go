package routes

import (
	"net/http"
	"time"

	"notaryops/handlers"
	"notaryops/middleware"
	"notaryops/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterScheduleRoutes registers the batch optimization endpoints.
func RegisterScheduleRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/schedule")
	{
		api.POST("/optimize", hb.OptimizeScheduleHandler)
		api.POST("/conflicts/check", hb.CheckConflictHandler)
		api.POST("/readmodel/rebuild", hb.RebuildReadModelHandler)
	}
}

// RegisterSyncRoutes registers the calendar synchronization endpoints.
func RegisterSyncRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/sync")
	{
		api.POST("/appointments/:id/event", hb.SyncCreateHandler)
		api.PATCH("/appointments/:id/event", hb.SyncUpdateHandler)
		api.DELETE("/appointments/:id/event", hb.SyncDeleteHandler)
		api.POST("/workers/:workerId/backfill", hb.SyncWorkerHandler)
	}
}

// RegisterCalendarRoutes registers the OAuth consent endpoints.
func RegisterCalendarRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/calendar")
	{
		api.GET("/connect/:workerId", hb.ConnectCalendar)
		api.GET("/oauth/callback", hb.OAuthCallback)
	}
}

// RegisterWorkerRoutes registers worker profile endpoints.
func RegisterWorkerRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/workers")
	{
		api.POST("/register", hb.RegisterWorkerHandler)
		api.GET("/id/:id", hb.GetWorkerHandler)
		api.PUT("/location/:id", hb.UpdateWorkerLocationHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.Mongo || !status.Redis {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": "ok", "mongo": status.Mongo, "redis": status.Redis})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())
	r.Use(utils.ErrorHandler())

	RegisterScheduleRoutes(r, hb)
	RegisterSyncRoutes(r, hb)
	RegisterCalendarRoutes(r, hb)
	RegisterWorkerRoutes(r, hb)
	RegisterHealthRoute(r)
}
