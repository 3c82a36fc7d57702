package ports

import (
	"context"
	"time"

	"github.com/inkpress/production-system/internal/core/domain"
)

// ListJobsFilter carries all query parameters for listing jobs.
// CustomerID and AssignedToID are enforced by the service layer (RBAC).
type ListJobsFilter struct {
	CustomerID   string    // non-empty = scoped to one customer (portal)
	AssignedToID string    // non-empty = scoped to one employee (staff)
	Status       string    // optional: filter by job status
	Priority     string    // optional: filter by priority
	Search       string    // optional: partial match on title
	DueFrom      time.Time // optional: due_date >= DueFrom
	DueTo        time.Time // optional: due_date <= DueTo
	Page         int       // 1-based
	Limit        int       // max rows per page (capped at 100 by service)
}

// JobRepository defines persistence operations for jobs.
type JobRepository interface {
	Create(ctx context.Context, j *domain.Job) (*domain.Job, error)
	// FindByID retrieves a job by id. When customerID is non-empty, the query
	// is additionally filtered by customer_id (for portal RBAC).
	FindByID(ctx context.Context, id string, customerID string) (*domain.Job, error)
	// List returns a page of jobs matching filter and the total count.
	List(ctx context.Context, filter ListJobsFilter) ([]*domain.Job, int64, error)
	// UpdateStatus atomically sets the job's status and returns the status the
	// row held immediately before the write. The audit-append decision must be
	// based on that returned value, never on a previously loaded copy.
	UpdateStatus(ctx context.Context, id string, status domain.JobStatus) (domain.JobStatus, error)
	// UpdateProducts replaces the job's line items (completion quantities).
	UpdateProducts(ctx context.Context, id string, products []domain.JobProduct) error
}

// ProgressRepository handles the append-only audit trail.
type ProgressRepository interface {
	Append(ctx context.Context, update *domain.ProgressUpdate) error
	ListByJob(ctx context.Context, jobID string) ([]*domain.ProgressUpdate, error)
}
