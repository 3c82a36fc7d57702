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

const collectionJobs = "jobs"

// JobRepository implements ports.JobRepository on MongoDB.
type JobRepository struct {
	col *mongo.Collection
}

func NewJobRepository(db *mongo.Database) *JobRepository {
	return &JobRepository{col: db.Collection(collectionJobs)}
}

// Create inserts a new job document.
func (r *JobRepository) Create(ctx context.Context, j *domain.Job) (*domain.Job, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := *j
	doc.ID = ""
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	created := *j
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

// FindByID retrieves a job by id. When customerID is non-empty an additional
// filter by customer_id is applied (portal RBAC at the query level).
func (r *JobRepository) FindByID(ctx context.Context, id string, customerID string) (*domain.Job, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrJobNotFound
	}

	filter := bson.M{"_id": oid}
	if customerID != "" {
		filter["customer_id"] = customerID
	}

	var doc jobDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrJobNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// List returns a page of jobs matching filter and the total count.
func (r *JobRepository) List(ctx context.Context, filter ports.ListJobsFilter) ([]*domain.Job, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.CustomerID != "" {
		query["customer_id"] = filter.CustomerID
	}
	if filter.AssignedToID != "" {
		query["assigned_to_id"] = filter.AssignedToID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Priority != "" {
		query["priority"] = filter.Priority
	}
	if filter.Search != "" {
		query["title"] = bson.M{"$regex": filter.Search, "$options": "i"}
	}
	if !filter.DueFrom.IsZero() || !filter.DueTo.IsZero() {
		due := bson.M{}
		if !filter.DueFrom.IsZero() {
			due["$gte"] = filter.DueFrom
		}
		if !filter.DueTo.IsZero() {
			due["$lte"] = filter.DueTo
		}
		query["due_date"] = due
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var jobs []*domain.Job
	for cursor.Next(ctx) {
		var doc jobDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// UpdateStatus atomically sets the job's status and returns the status the
// row held immediately before the write (FindOneAndUpdate with
// ReturnDocument=Before), giving the service layer a race-free basis for the
// audit-append decision.
func (r *JobRepository) UpdateStatus(ctx context.Context, id string, status domain.JobStatus) (domain.JobStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", domain.ErrJobNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)
	var before jobDoc
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": string(status)}},
		opts,
	).Decode(&before)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", domain.ErrJobNotFound
		}
		return "", err
	}
	return before.Status, nil
}

// UpdateProducts replaces the job's line items.
func (r *JobRepository) UpdateProducts(ctx context.Context, id string, products []domain.JobProduct) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrJobNotFound
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"products": products}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

// EnsureIndexes creates the query indexes on the jobs collection.
func (r *JobRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "customer_id", Value: 1}}},
		{Keys: bson.D{{Key: "assigned_to_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// jobDoc is the persisted shape of a job; _id is an ObjectID rather than the
// hex string the domain carries.
type jobDoc struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty"`
	Title        string              `bson:"title"`
	Status       domain.JobStatus    `bson:"status"`
	Priority     string              `bson:"priority"`
	CustomerID   string              `bson:"customer_id"`
	AssignedToID string              `bson:"assigned_to_id,omitempty"`
	CreatedByID  string              `bson:"created_by_id"`
	Products     []domain.JobProduct `bson:"products,omitempty"`
	DueDate      *time.Time          `bson:"due_date,omitempty"`
	CreatedAt    time.Time           `bson:"created_at"`
}

func (d *jobDoc) toDomain() *domain.Job {
	return &domain.Job{
		ID:           d.ID.Hex(),
		Title:        d.Title,
		Status:       d.Status,
		Priority:     d.Priority,
		CustomerID:   d.CustomerID,
		AssignedToID: d.AssignedToID,
		CreatedByID:  d.CreatedByID,
		Products:     d.Products,
		DueDate:      d.DueDate,
		CreatedAt:    d.CreatedAt,
	}
}
