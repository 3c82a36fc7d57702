package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/inkpress/production-system/internal/api/metrics"
	"github.com/inkpress/production-system/internal/core/domain"
	"github.com/inkpress/production-system/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// JobService owns the job status state machine and its audit trail.
type JobService struct {
	jobs     ports.JobRepository
	progress ports.ProgressRepository
	logger   zerolog.Logger
}

func NewJobService(jobs ports.JobRepository, progress ports.ProgressRepository, logger zerolog.Logger) *JobService {
	return &JobService{jobs: jobs, progress: progress, logger: logger}
}

// CreateJob opens a new job in the pending state.
func (s *JobService) CreateJob(ctx context.Context, input ports.CreateJobInput) (*domain.Job, error) {
	if input.Title == "" || input.CustomerID == "" || input.CreatedByID == "" {
		return nil, fmt.Errorf("%w: title, customer and creator are required", domain.ErrValidation)
	}

	products := make([]domain.JobProduct, 0, len(input.Products))
	for _, p := range input.Products {
		products = append(products, domain.JobProduct{
			ProductID:         p.ProductID,
			Description:       p.Description,
			Quantity:          p.Quantity,
			CompletedQuantity: p.CompletedQuantity,
		})
	}

	job := &domain.Job{
		Title:        input.Title,
		Status:       domain.StatusPending,
		Priority:     input.Priority,
		CustomerID:   input.CustomerID,
		AssignedToID: input.AssignedToID,
		CreatedByID:  input.CreatedByID,
		Products:     products,
		DueDate:      input.DueDate,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.jobs.Create(ctx, job)
	if err != nil {
		s.logger.Error().Err(err).Str("title", input.Title).Msg("failed to create job")
		return nil, err
	}

	metrics.JobsCreatedTotal.WithLabelValues(job.Priority).Inc()
	s.logger.Info().Str("job_id", created.ID).Str("customer_id", created.CustomerID).Msg("job created")
	return created, nil
}

// GetJob retrieves a job and its progress trail. The customer role only sees
// jobs belonging to its own customer record.
func (s *JobService) GetJob(ctx context.Context, input ports.GetJobInput) (*ports.JobDetail, error) {
	customerFilter := ""
	if input.Role == domain.RoleCustomer {
		if input.CustomerID == "" {
			return nil, domain.ErrForbidden
		}
		customerFilter = input.CustomerID
	}

	job, err := s.jobs.FindByID(ctx, input.JobID, customerFilter)
	if err != nil {
		return nil, err
	}

	trail, err := s.progress.ListByJob(ctx, job.ID)
	if err != nil {
		return nil, fmt.Errorf("load progress trail: %w", err)
	}

	return &ports.JobDetail{Job: job, Progress: trail}, nil
}

// ListJobs returns a page of jobs. Customer and employee roles are forcibly
// scoped to their own records regardless of the requested filter.
func (s *JobService) ListJobs(ctx context.Context, input ports.ListJobsInput) (*ports.ListJobsResult, error) {
	filter := ports.ListJobsFilter{
		CustomerID:   input.CustomerID,
		AssignedToID: input.AssignedToID,
		Status:       input.Status,
		Priority:     input.Priority,
		Search:       input.Search,
		DueFrom:      input.DueFrom,
		DueTo:        input.DueTo,
		Page:         input.Page,
		Limit:        input.Limit,
	}

	switch input.Role {
	case domain.RoleCustomer:
		if input.CustomerID == "" {
			return nil, domain.ErrForbidden
		}
		filter.CustomerID = input.CustomerID
		filter.AssignedToID = ""
	case domain.RoleEmployee:
		filter.AssignedToID = input.AssignedToID
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	items, total, err := s.jobs.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &ports.ListJobsResult{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

// SetStatus is the single entry point of the status machine.
//
// The repository update atomically returns the status the row held immediately
// before the write; the audit decision is made against that value, so a
// retried call (at-least-once delivery) observes its own previous write and
// appends nothing, while a genuine transition is never dropped.
func (s *JobService) SetStatus(ctx context.Context, input ports.SetStatusInput) (*ports.TransitionResult, error) {
	newStatus := domain.JobStatus(input.NewStatus)
	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, input.NewStatus)
	}

	// Load first for existence and audit authorship (assigned employee,
	// falling back to the creator).
	job, err := s.jobs.FindByID(ctx, input.JobID, "")
	if err != nil {
		return nil, err
	}

	previous, err := s.jobs.UpdateStatus(ctx, input.JobID, newStatus)
	if err != nil {
		return nil, fmt.Errorf("set status: %w", err)
	}

	result := &ports.TransitionResult{Previous: previous, Current: newStatus}
	if previous == newStatus {
		return result, nil
	}

	metrics.JobTransitionsTotal.WithLabelValues(string(previous), string(newStatus)).Inc()

	msg := newStatus.AuditMessage()
	if msg == "" {
		// Transitions to pending are not audited.
		return result, nil
	}

	update := &domain.ProgressUpdate{
		JobID:     job.ID,
		UserID:    job.AuditAuthorID(),
		Content:   msg,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.progress.Append(ctx, update); err != nil {
		return nil, fmt.Errorf("append audit entry: %w", err)
	}
	result.Audited = true
	metrics.ProgressEntriesTotal.WithLabelValues(string(newStatus)).Inc()

	s.logger.Info().
		Str("job_id", job.ID).
		Str("from", string(previous)).
		Str("to", string(newStatus)).
		Str("author_id", update.UserID).
		Msg("job status changed")

	return result, nil
}

// RecordProgress persists line-item completion quantities and derives the
// resulting status, funnelled through SetStatus so the audit guarantee lives
// in exactly one place.
func (s *JobService) RecordProgress(ctx context.Context, input ports.ProgressReportInput) (*ports.TransitionResult, error) {
	job, err := s.jobs.FindByID(ctx, input.JobID, "")
	if err != nil {
		return nil, err
	}

	merged := mergeProgress(job.Products, input.Items)
	if err := s.jobs.UpdateProducts(ctx, job.ID, merged); err != nil {
		return nil, fmt.Errorf("record progress: %w", err)
	}

	target := domain.DeriveStatus(job.Status, merged)
	if target == job.Status {
		return &ports.TransitionResult{Previous: job.Status, Current: job.Status}, nil
	}

	return s.SetStatus(ctx, ports.SetStatusInput{
		JobID:        job.ID,
		NewStatus:    string(target),
		ActingUserID: input.ActingUserID,
	})
}

// mergeProgress applies reported completion quantities onto the job's line
// items. Unknown product ids are ignored.
func mergeProgress(products []domain.JobProduct, items []ports.ProgressItemInput) []domain.JobProduct {
	merged := make([]domain.JobProduct, len(products))
	copy(merged, products)
	for _, item := range items {
		for i := range merged {
			if merged[i].ProductID == item.ProductID {
				merged[i].CompletedQuantity = item.CompletedQuantity
				break
			}
		}
	}
	return merged
}
