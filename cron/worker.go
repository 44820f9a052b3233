package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"notaryops/config"
	auditRepo "notaryops/database/repository/audit"
	"notaryops/models"
	"notaryops/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

const TypeReadModelRebuild = "readmodel:rebuild"

// snapshotCacheKey is where the latest historical snapshot lives in Redis.
const snapshotCacheKey = "readmodel:historical:latest"

// rebuildWindow bounds how far back the journal replay reaches.
const rebuildWindow = 90 * 24 * time.Hour

// RebuildPayload is the task payload for a read-model rebuild.
type RebuildPayload struct {
	RequestedBy string `json:"requestedBy,omitempty"`
}

// InitReadModelWorker runs the async worker in background.
func InitReadModelWorker(audit auditRepo.AuditRepository) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisJobQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeReadModelRebuild, handleRebuildTask(audit))

	go monitorRedisConnection()

	go func() {
		log.Println("[ReadModelWorker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReadModelWorker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ReadModelWorker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

// EnqueueRebuild schedules a read-model rebuild on the job queue.
func EnqueueRebuild(requestedBy string) error {
	payload, err := json.Marshal(RebuildPayload{RequestedBy: requestedBy})
	if err != nil {
		return err
	}

	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisJobQueueDB,
	})
	defer client.Close()

	_, err = client.Enqueue(asynq.NewTask(TypeReadModelRebuild, payload))
	return err
}

func handleRebuildTask(audit auditRepo.AuditRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p RebuildPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReadModelWorker] 🔴 Invalid payload: %v", err)
			return err
		}

		since := time.Now().Add(-rebuildWindow)
		entries, err := audit.ListSince(ctx, since)
		if err != nil {
			log.Printf("[ReadModelWorker] ❌ Failed to read audit journal: %v", err)
			return err
		}

		snapshot := BuildSnapshot(entries, time.Now())

		data, err := json.Marshal(snapshot)
		if err != nil {
			return err
		}
		if err := utils.GetCacheClient().Set(ctx, snapshotCacheKey, data, 0).Err(); err != nil {
			log.Printf("[ReadModelWorker] ❌ Failed to store snapshot: %v", err)
			return err
		}

		log.Printf("[ReadModelWorker] ✅ Rebuilt snapshot v%d from %d journal entries (%d bookings, %d conflicts)",
			snapshot.Version, len(entries), snapshot.BookingCount, snapshot.ConflictCount)
		return nil
	}
}

// BuildSnapshot derives a fresh versioned snapshot from journal entries.
// Each rebuild produces a new value; nothing is mutated in place.
func BuildSnapshot(entries []models.AuditEntry, now time.Time) models.HistoricalSnapshot {
	snapshot := models.HistoricalSnapshot{
		Version:           now.Unix(),
		CompletedByWorker: make(map[string]int),
		GeneratedAt:       now,
	}
	for _, entry := range entries {
		switch entry.Action {
		case models.AuditEventCreated:
			snapshot.BookingCount++
			snapshot.CompletedByWorker[entry.WorkerID]++
		case models.AuditConflictDetected:
			snapshot.ConflictCount++
		}
	}
	return snapshot
}

// LoadSnapshot returns the latest cached snapshot, or nil when no rebuild
// has run yet. The optimizer tolerates a nil snapshot.
func LoadSnapshot(ctx context.Context) (*models.HistoricalSnapshot, error) {
	data, err := utils.GetCacheClient().Get(ctx, snapshotCacheKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snapshot models.HistoricalSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisJobQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[ReadModelWorker] ⚠️ Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
