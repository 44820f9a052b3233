package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"notaryops/database"
	"notaryops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoAppointmentRepo implements AppointmentRepository using MongoDB.
type MongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo constructs a new instance of MongoAppointmentRepo.
func NewMongoAppointmentRepo() AppointmentRepository {
	db := database.MongoClient.Database("notaryops")
	return &MongoAppointmentRepo{
		coll: db.Collection("appointments"),
	}
}

func (repo *MongoAppointmentRepo) Create(ctx context.Context, appt *models.Appointment) error {
	now := time.Now()
	appt.CreatedAt = now
	appt.UpdatedAt = now
	if appt.SyncStatus == "" {
		appt.SyncStatus = models.SyncStatusPending
	}
	if _, err := repo.coll.InsertOne(ctx, appt); err != nil {
		return fmt.Errorf("error inserting appointment %s: %w", appt.ID, err)
	}
	return nil
}

func (repo *MongoAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	filter := bson.M{"id": id}
	if err := repo.coll.FindOne(ctx, filter).Decode(&appt); err != nil {
		return nil, fmt.Errorf("error fetching appointment with id %s: %w", id, err)
	}
	return &appt, nil
}

func (repo *MongoAppointmentRepo) Update(ctx context.Context, appt *models.Appointment) error {
	appt.UpdatedAt = time.Now()
	filter := bson.M{"id": appt.ID}
	res, err := repo.coll.ReplaceOne(ctx, filter, appt)
	if err != nil {
		return fmt.Errorf("error updating appointment %s: %w", appt.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("appointment %s not found", appt.ID)
	}
	return nil
}

func (repo *MongoAppointmentRepo) SetCalendarRef(ctx context.Context, id, eventID string, status models.SyncStatus) error {
	filter := bson.M{"id": id}
	update := bson.M{"$set": bson.M{
		"calendarEventId": eventID,
		"syncStatus":      status,
		"updatedAt":       time.Now(),
	}}
	res, err := repo.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error setting calendar ref on appointment %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("appointment %s not found", id)
	}
	return nil
}

func (repo *MongoAppointmentRepo) ClearCalendarRef(ctx context.Context, id string) error {
	filter := bson.M{"id": id}
	update := bson.M{
		"$unset": bson.M{"calendarEventId": ""},
		"$set": bson.M{
			"syncStatus": models.SyncStatusRemoved,
			"updatedAt":  time.Now(),
		},
	}
	res, err := repo.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error clearing calendar ref on appointment %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("appointment %s not found", id)
	}
	return nil
}

func (repo *MongoAppointmentRepo) ListByWorkerAndRange(ctx context.Context, workerID string, from, to time.Time) ([]models.Appointment, error) {
	filter := bson.M{
		"workerId":      workerID,
		"scheduledTime": bson.M{"$gte": from, "$lt": to},
	}
	cursor, err := repo.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing appointments for worker %s: %w", workerID, err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("error decoding appointments for worker %s: %w", workerID, err)
	}
	return appts, nil
}

func (repo *MongoAppointmentRepo) ListUnsyncedByWorker(ctx context.Context, workerID string) ([]models.Appointment, error) {
	filter := bson.M{
		"workerId":   workerID,
		"syncStatus": models.SyncStatusPending,
	}
	cursor, err := repo.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing unsynced appointments for worker %s: %w", workerID, err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("error decoding unsynced appointments for worker %s: %w", workerID, err)
	}
	return appts, nil
}
