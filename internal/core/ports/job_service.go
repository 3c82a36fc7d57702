package ports

import (
	"context"
	"time"

	"github.com/inkpress/production-system/internal/core/domain"
)

// CreateJobInput carries all data needed to open a new job.
type CreateJobInput struct {
	Title        string
	Priority     string
	CustomerID   string
	AssignedToID string
	CreatedByID  string
	Products     []ProductInput
	DueDate      *time.Time
}

// ProductInput is one line item on a job.
type ProductInput struct {
	ProductID         string
	Description       string
	Quantity          int
	CompletedQuantity int
}

// GetJobInput carries the parameters for retrieving a single job.
// Role and CustomerID enforce RBAC: the customer role only sees own jobs.
type GetJobInput struct {
	JobID      string
	Role       string
	CustomerID string
}

// JobDetail is the full job view returned by GetJob.
type JobDetail struct {
	Job      *domain.Job
	Progress []*domain.ProgressUpdate
}

// SetStatusInput carries a direct status-machine invocation.
type SetStatusInput struct {
	JobID        string
	NewStatus    string
	ActingUserID string
}

// TransitionResult reports what the status machine did.
type TransitionResult struct {
	Previous domain.JobStatus
	Current  domain.JobStatus
	// Audited is true when this call appended a progress entry; false for
	// re-submissions of the current status and for transitions to pending.
	Audited bool
}

// ProgressReportInput carries a shop-floor completion report for one job.
type ProgressReportInput struct {
	JobID        string
	ActingUserID string
	Items        []ProgressItemInput
}

// ProgressItemInput updates the completed quantity of one line item.
type ProgressItemInput struct {
	ProductID         string
	CompletedQuantity int
}

// ListJobsInput carries all parameters for the list endpoint.
type ListJobsInput struct {
	Role         string
	CustomerID   string
	AssignedToID string
	Status       string
	Priority     string
	Search       string
	DueFrom      time.Time
	DueTo        time.Time
	Page         int
	Limit        int
}

// ListJobsResult is returned by ListJobs.
type ListJobsResult struct {
	Items      []*domain.Job
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// JobService defines use-case operations for the job lifecycle.
type JobService interface {
	CreateJob(ctx context.Context, input CreateJobInput) (*domain.Job, error)
	GetJob(ctx context.Context, input GetJobInput) (*JobDetail, error)
	ListJobs(ctx context.Context, input ListJobsInput) (*ListJobsResult, error)
	// SetStatus is the single entry point of the status machine. It updates
	// the job's status unconditionally and appends at most one audit entry
	// per genuine transition; re-issuing the current status is a no-op with
	// respect to the trail.
	SetStatus(ctx context.Context, input SetStatusInput) (*TransitionResult, error)
	// RecordProgress persists completion quantities and derives the target
	// status from them, funnelled through SetStatus so the audit guarantee is
	// enforced in one place.
	RecordProgress(ctx context.Context, input ProgressReportInput) (*TransitionResult, error)
}
