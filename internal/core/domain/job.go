package domain

import "time"

// JobStatus represents the lifecycle state of a production job.
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusInProgress JobStatus = "in_progress"
	StatusCompleted  JobStatus = "completed"
)

// Audit messages recorded on genuine transitions. Transitions to pending and
// re-submissions of the current status produce no entry.
const (
	MsgJobStarted   = "Job started"
	MsgJobCompleted = "Job completed"
)

// Valid reports whether s is a recognised job status. The state machine is
// deliberately permissive: any recognised status may follow any other,
// including completed back to pending.
func (s JobStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// AuditMessage returns the progress-trail message for a genuine transition to
// s, or "" when the transition is not audited.
func (s JobStatus) AuditMessage() string {
	switch s {
	case StatusInProgress:
		return MsgJobStarted
	case StatusCompleted:
		return MsgJobCompleted
	}
	return ""
}

// JobProduct is a single line item on a job: how many units were ordered and
// how many the shop floor has finished so far.
type JobProduct struct {
	ProductID         string `json:"product_id" bson:"product_id"`
	Description       string `json:"description,omitempty" bson:"description,omitempty"`
	Quantity          int    `json:"quantity" bson:"quantity"`
	CompletedQuantity int    `json:"completed_quantity" bson:"completed_quantity"`
}

// Job is the core aggregate of the tracking system.
type Job struct {
	ID           string       `json:"id" bson:"_id,omitempty"`
	Title        string       `json:"title" bson:"title"`
	Status       JobStatus    `json:"status" bson:"status"`
	Priority     string       `json:"priority" bson:"priority"`
	CustomerID   string       `json:"customer_id" bson:"customer_id"`
	AssignedToID string       `json:"assigned_to_id,omitempty" bson:"assigned_to_id,omitempty"`
	CreatedByID  string       `json:"created_by_id" bson:"created_by_id"`
	Products     []JobProduct `json:"products,omitempty" bson:"products,omitempty"`
	DueDate      *time.Time   `json:"due_date,omitempty" bson:"due_date,omitempty"`
	CreatedAt    time.Time    `json:"created_at" bson:"created_at"`
}

// AuditAuthorID resolves who a lifecycle audit entry is attributed to: the
// assigned employee, falling back to the job's creator when unassigned.
func (j *Job) AuditAuthorID() string {
	if j.AssignedToID != "" {
		return j.AssignedToID
	}
	return j.CreatedByID
}

// DeriveStatus computes the target status from line-item completion: every
// item fully completed means completed, otherwise in_progress. An already
// completed job is not demoted by a partial report, and jobs without line
// items stay where they are.
func DeriveStatus(current JobStatus, products []JobProduct) JobStatus {
	if len(products) == 0 {
		return current
	}
	done := true
	for _, p := range products {
		if p.CompletedQuantity < p.Quantity {
			done = false
			break
		}
	}
	if done {
		return StatusCompleted
	}
	if current == StatusCompleted {
		return current
	}
	return StatusInProgress
}

// ProgressUpdate is one append-only entry in a job's audit trail. Entries are
// never updated or deleted.
type ProgressUpdate struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	JobID     string    `json:"job_id" bson:"job_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
