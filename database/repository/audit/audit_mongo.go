package auditRepo

import (
	"context"
	"fmt"
	"time"

	"notaryops/database"
	"notaryops/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAuditRepo implements AuditRepository using MongoDB.
type MongoAuditRepo struct {
	coll *mongo.Collection
}

// NewMongoAuditRepo constructs a new instance of MongoAuditRepo.
func NewMongoAuditRepo() AuditRepository {
	db := database.MongoClient.Database("notaryops")
	return &MongoAuditRepo{
		coll: db.Collection("audit_journal"),
	}
}

func (repo *MongoAuditRepo) Append(ctx context.Context, entry models.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if _, err := repo.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("error appending audit entry: %w", err)
	}
	return nil
}

func (repo *MongoAuditRepo) ListSince(ctx context.Context, since time.Time) ([]models.AuditEntry, error) {
	filter := bson.M{"createdAt": bson.M{"$gte": since}}
	opts := options.Find().SetSort(bson.M{"createdAt": 1})
	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.AuditEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("error decoding audit entries: %w", err)
	}
	return entries, nil
}
