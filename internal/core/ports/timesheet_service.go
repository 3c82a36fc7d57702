package ports

import (
	"context"
	"time"

	"github.com/inkpress/production-system/internal/core/domain"
)

// StartLogInput opens a new active time entry.
type StartLogInput struct {
	UserID string
	JobID  string
	Notes  string
}

// SweepReport summarises one auto-stop pass.
type SweepReport struct {
	Examined int `json:"examined"`
	Stopped  int `json:"stopped"`
	Failed   int `json:"failed"`
}

// TimesheetService owns time-entry state and the auto-stop sweep.
type TimesheetService interface {
	StartLog(ctx context.Context, input StartLogInput) (*domain.HourLog, error)
	// StopLog closes an active log at now. Stopping an already-closed log is
	// a no-op: the log is returned unchanged. Closed logs are terminal.
	StopLog(ctx context.Context, id string, now time.Time) (*domain.HourLog, error)
	ListLogs(ctx context.Context, userID string) ([]*domain.HourLog, error)
	// Sweep force-closes every active log whose elapsed time exceeds the
	// configured cap. Rows are processed independently: one failed update
	// does not abort the batch. Safe to invoke repeatedly and overlapping.
	Sweep(ctx context.Context, now time.Time) (*SweepReport, error)
}
