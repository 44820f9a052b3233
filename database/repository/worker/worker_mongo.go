package workerRepo

import (
	"context"
	"fmt"
	"time"

	"notaryops/database"
	"notaryops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoWorkerRepo implements WorkerRepository using MongoDB.
type MongoWorkerRepo struct {
	coll *mongo.Collection
}

// NewMongoWorkerRepo constructs a new instance of MongoWorkerRepo.
func NewMongoWorkerRepo() WorkerRepository {
	db := database.MongoClient.Database("notaryops")
	return &MongoWorkerRepo{
		coll: db.Collection("workers"),
	}
}

func (repo *MongoWorkerRepo) GetByID(ctx context.Context, id string) (*models.WorkerProfile, error) {
	var worker models.WorkerProfile
	filter := bson.M{"id": id}
	if err := repo.coll.FindOne(ctx, filter).Decode(&worker); err != nil {
		return nil, fmt.Errorf("error fetching worker with id %s: %w", id, err)
	}
	return &worker, nil
}

func (repo *MongoWorkerRepo) Create(ctx context.Context, worker *models.WorkerProfile) error {
	now := time.Now()
	worker.CreatedAt = now
	worker.UpdatedAt = now
	if _, err := repo.coll.InsertOne(ctx, worker); err != nil {
		return fmt.Errorf("error inserting worker %s: %w", worker.ID, err)
	}
	return nil
}

func (repo *MongoWorkerRepo) Update(ctx context.Context, worker *models.WorkerProfile) error {
	worker.UpdatedAt = time.Now()
	filter := bson.M{"id": worker.ID}
	res, err := repo.coll.ReplaceOne(ctx, filter, worker)
	if err != nil {
		return fmt.Errorf("error updating worker %s: %w", worker.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("worker %s not found", worker.ID)
	}
	return nil
}

func (repo *MongoWorkerRepo) UpdateLastLocation(ctx context.Context, id string, loc models.Location) error {
	filter := bson.M{"id": id}
	update := bson.M{"$set": bson.M{
		"lastKnownLocation": loc,
		"updatedAt":         time.Now(),
	}}
	if _, err := repo.coll.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("error updating location for worker %s: %w", id, err)
	}
	return nil
}

func (repo *MongoWorkerRepo) SetCalendarCredential(ctx context.Context, id, refreshToken string) error {
	filter := bson.M{"id": id}
	update := bson.M{"$set": bson.M{
		"calendarRefreshToken": refreshToken,
		"calendarSyncEnabled":  true,
		"updatedAt":            time.Now(),
	}}
	res, err := repo.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error storing calendar credential for worker %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("worker %s not found", id)
	}
	return nil
}
