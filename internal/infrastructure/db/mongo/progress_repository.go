package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inkpress/production-system/internal/core/domain"
	"github.com/inkpress/production-system/internal/core/ports"
)

const collectionProgress = "progress_updates"

// ProgressRepository implements ports.ProgressRepository using MongoDB.
// The collection is append-only: there is no update or delete path.
type ProgressRepository struct {
	col *mongo.Collection
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(db *mongo.Database) ports.ProgressRepository {
	return &ProgressRepository{col: db.Collection(collectionProgress)}
}

// Append persists one audit-trail entry.
func (r *ProgressRepository) Append(ctx context.Context, update *domain.ProgressUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"job_id":     update.JobID,
		"user_id":    update.UserID,
		"content":    update.Content,
		"created_at": update.CreatedAt.UTC(),
	}

	_, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("append progress update: %w", err)
	}
	return nil
}

// ListByJob returns a job's audit trail in chronological order.
func (r *ProgressRepository) ListByJob(ctx context.Context, jobID string) ([]*domain.ProgressUpdate, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"job_id": jobID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var updates []*domain.ProgressUpdate
	for cursor.Next(ctx) {
		var doc struct {
			ID        primitive.ObjectID `bson:"_id"`
			JobID     string             `bson:"job_id"`
			UserID    string             `bson:"user_id"`
			Content   string             `bson:"content"`
			CreatedAt time.Time          `bson:"created_at"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		updates = append(updates, &domain.ProgressUpdate{
			ID:        doc.ID.Hex(),
			JobID:     doc.JobID,
			UserID:    doc.UserID,
			Content:   doc.Content,
			CreatedAt: doc.CreatedAt,
		})
	}
	return updates, cursor.Err()
}
