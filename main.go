package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notaryops/config"
	"notaryops/cron"
	"notaryops/database"
	appointmentRepoPkg "notaryops/database/repository/appointment"
	auditRepoPkg "notaryops/database/repository/audit"
	workerRepoPkg "notaryops/database/repository/worker"
	"notaryops/handlers"
	"notaryops/models"
	"notaryops/routes"
	"notaryops/services/calendarsync"
	"notaryops/services/scheduling"
	"notaryops/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	// repositories.
	apptRepo := appointmentRepoPkg.NewMongoAppointmentRepo()
	workerRepo := workerRepoPkg.NewMongoWorkerRepo()
	auditRepo := auditRepoPkg.NewMongoAuditRepo()

	// services.
	calendarAPI := calendarsync.NewGoogleCalendarAPI(workerRepo)

	detector := &scheduling.ConflictDetector{
		Calendar: calendarAPI,
		Audit:    auditRepo,
		BusinessHours: models.WorkingHours{
			Start: config.AppConfig.BusinessHoursStart,
			End:   config.AppConfig.BusinessHoursEnd,
		},
		Logger: logger,
	}

	buffers := scheduling.NewBufferCalculator()
	optimizer := &scheduling.ScheduleOptimizer{
		Balancer: &scheduling.LoadBalancer{
			MandatorySkills: map[string]bool{"loan_signing": true, "specialty": true},
			Logger:          logger,
		},
		Planner: &scheduling.RoutePlanner{
			Buffers:          buffers,
			MaxStops:         config.AppConfig.MaxStopsPerRoute,
			MaxTravelMinutes: config.AppConfig.MaxRouteTravelMins,
		},
		Detector: detector,
		Buffers:  buffers,
		Audit:    auditRepo,
		Logger:   logger,
	}

	syncService := calendarsync.NewSyncService(
		apptRepo,
		auditRepo,
		calendarAPI,
		detector,
		config.AppConfig.HomeTimezone,
		time.Duration(config.AppConfig.CalendarTimeoutSecs)*time.Second,
	)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		// Scheduling endpoints.
		OptimizeScheduleHandler: handlers.OptimizeSchedule(optimizer),
		CheckConflictHandler:    handlers.CheckConflict(detector),
		RebuildReadModelHandler: handlers.RebuildReadModel(),

		// Calendar sync endpoints.
		SyncCreateHandler: handlers.SyncCreate(syncService),
		SyncUpdateHandler: handlers.SyncUpdate(syncService),
		SyncDeleteHandler: handlers.SyncDelete(syncService),
		SyncWorkerHandler: handlers.SyncWorker(syncService),
		ConnectCalendar:   handlers.ConnectCalendar(calendarAPI),
		OAuthCallback:     handlers.OAuthCallback(calendarAPI),

		// Worker endpoints.
		RegisterWorkerHandler:       handlers.RegisterWorker(workerRepo),
		GetWorkerHandler:            handlers.GetWorker(workerRepo),
		UpdateWorkerLocationHandler: handlers.UpdateWorkerLocation(workerRepo),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Background workers and monitors.
	cron.InitReadModelWorker(auditRepo)
	utils.StartHealthMonitor(utils.GetCacheClient(), database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
