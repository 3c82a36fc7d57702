package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inkpress/production-system/internal/core/domain"
	"github.com/inkpress/production-system/internal/core/ports"
)

const collectionHourLogs = "hour_logs"

// HourLogRepository implements ports.HourLogRepository on MongoDB.
type HourLogRepository struct {
	col *mongo.Collection
}

func NewHourLogRepository(db *mongo.Database) *HourLogRepository {
	return &HourLogRepository{col: db.Collection(collectionHourLogs)}
}

type hourLogDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"user_id"`
	JobID       string             `bson:"job_id,omitempty"`
	StartTime   time.Time          `bson:"start_time"`
	EndTime     *time.Time         `bson:"end_time,omitempty"`
	Hours       float64            `bson:"hours,omitempty"`
	IsActive    bool               `bson:"is_active"`
	AutoStopped bool               `bson:"auto_stopped"`
	Notes       string             `bson:"notes,omitempty"`
}

func (d *hourLogDoc) toDomain() *domain.HourLog {
	return &domain.HourLog{
		ID:          d.ID.Hex(),
		UserID:      d.UserID,
		JobID:       d.JobID,
		StartTime:   d.StartTime,
		EndTime:     d.EndTime,
		Hours:       d.Hours,
		IsActive:    d.IsActive,
		AutoStopped: d.AutoStopped,
		Notes:       d.Notes,
	}
}

// Create inserts a new active time entry.
func (r *HourLogRepository) Create(ctx context.Context, log *domain.HourLog) (*domain.HourLog, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := hourLogDoc{
		UserID:    log.UserID,
		JobID:     log.JobID,
		StartTime: log.StartTime.UTC(),
		IsActive:  true,
		Notes:     log.Notes,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert hour log: %w", err)
	}

	created := *log
	created.IsActive = true
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *HourLogRepository) FindByID(ctx context.Context, id string) (*domain.HourLog, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrHourLogNotFound
	}

	var doc hourLogDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrHourLogNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// FindActive returns every log still open. This is the sweep's selection
// predicate: is_active and no end_time.
func (r *HourLogRepository) FindActive(ctx context.Context) ([]*domain.HourLog, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, bson.M{
		"is_active": true,
		"end_time":  bson.M{"$exists": false},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeLogs(ctx, cursor)
}

func (r *HourLogRepository) ListByUser(ctx context.Context, userID string) ([]*domain.HourLog, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeLogs(ctx, cursor)
}

// CloseIfActive writes the terminal state only if the row is still active.
// The is_active precondition in the filter makes the close exactly-once under
// racing writers: whichever update matches first wins, the loser matches
// nothing and reports closed=false.
func (r *HourLogRepository) CloseIfActive(ctx context.Context, id string, close ports.HourLogClose) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, domain.ErrHourLogNotFound
	}

	set := bson.M{
		"is_active":    false,
		"end_time":     close.EndTime.UTC(),
		"hours":        close.Hours,
		"auto_stopped": close.AutoStopped,
	}

	current, err := r.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	if close.Note != "" {
		set["notes"] = domain.AppendNote(current.Notes, close.Note)
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "is_active": true},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, fmt.Errorf("close hour log: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

// EnsureIndexes creates the sweep and listing indexes.
func (r *HourLogRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "is_active", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "start_time", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func decodeLogs(ctx context.Context, cursor *mongo.Cursor) ([]*domain.HourLog, error) {
	var logs []*domain.HourLog
	for cursor.Next(ctx) {
		var doc hourLogDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		logs = append(logs, doc.toDomain())
	}
	return logs, cursor.Err()
}
