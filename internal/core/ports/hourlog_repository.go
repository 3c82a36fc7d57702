package ports

import (
	"context"
	"time"

	"github.com/inkpress/production-system/internal/core/domain"
)

// HourLogClose carries the terminal state written when a log is closed.
type HourLogClose struct {
	EndTime     time.Time
	Hours       float64
	AutoStopped bool
	// Note, when non-empty, is appended to the log's existing notes.
	Note string
}

// HourLogRepository defines persistence operations for time entries.
type HourLogRepository interface {
	Create(ctx context.Context, log *domain.HourLog) (*domain.HourLog, error)
	FindByID(ctx context.Context, id string) (*domain.HourLog, error)
	// FindActive returns every log with is_active=true and no end time.
	FindActive(ctx context.Context) ([]*domain.HourLog, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.HourLog, error)
	// CloseIfActive applies close to the log only if the row is still active,
	// returning whether this call performed the close. A false result with a
	// nil error means another writer (manual stop or a concurrent sweep) got
	// there first; closed rows are terminal.
	CloseIfActive(ctx context.Context, id string, close HourLogClose) (bool, error)
}
