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

// DefaultCapHours is the maximum duration an hour log may stay open before
// the sweep force-closes it.
const DefaultCapHours = 8

// TimesheetService owns time-entry state and the periodic auto-stop sweep.
type TimesheetService struct {
	logs     ports.HourLogRepository
	capHours float64
	logger   zerolog.Logger
}

func NewTimesheetService(logs ports.HourLogRepository, capHours float64, logger zerolog.Logger) *TimesheetService {
	if capHours <= 0 {
		capHours = DefaultCapHours
	}
	return &TimesheetService{logs: logs, capHours: capHours, logger: logger}
}

// StartLog opens a new active time entry.
func (s *TimesheetService) StartLog(ctx context.Context, input ports.StartLogInput) (*domain.HourLog, error) {
	if input.UserID == "" {
		return nil, fmt.Errorf("%w: user is required", domain.ErrValidation)
	}

	log := &domain.HourLog{
		UserID:    input.UserID,
		JobID:     input.JobID,
		StartTime: time.Now().UTC(),
		IsActive:  true,
		Notes:     input.Notes,
	}

	created, err := s.logs.Create(ctx, log)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", input.UserID).Msg("failed to start hour log")
		return nil, err
	}

	metrics.HourLogsStartedTotal.Inc()
	s.logger.Info().Str("log_id", created.ID).Str("user_id", created.UserID).Msg("hour log started")
	return created, nil
}

// StopLog closes an active log at now. The close is gated on the row still
// being active, so a stop racing an auto-stop sweep results in exactly one
// terminal state; the loser simply observes the already-closed row. Stopping
// a closed log is a no-op.
func (s *TimesheetService) StopLog(ctx context.Context, id string, now time.Time) (*domain.HourLog, error) {
	log, err := s.logs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !log.IsActive {
		return log, nil
	}

	hours := now.Sub(log.StartTime).Hours()
	if hours < 0 {
		hours = 0
	}

	closed, err := s.logs.CloseIfActive(ctx, id, ports.HourLogClose{
		EndTime: now,
		Hours:   hours,
	})
	if err != nil {
		return nil, fmt.Errorf("stop hour log: %w", err)
	}
	if !closed {
		// Another writer closed it between our read and the update.
		return s.logs.FindByID(ctx, id)
	}

	s.logger.Info().Str("log_id", id).Float64("hours", hours).Msg("hour log stopped")
	return s.logs.FindByID(ctx, id)
}

// ListLogs returns all time entries for one user.
func (s *TimesheetService) ListLogs(ctx context.Context, userID string) ([]*domain.HourLog, error) {
	return s.logs.ListByUser(ctx, userID)
}

// Sweep force-closes every active log older than the cap.
//
// The selection predicate (active, no end time) and the conditional per-row
// close make the pass safe under retry and overlap: a log stopped by one
// invocation no longer matches any other. Rows are processed independently;
// a single failed update is counted and logged, never aborting the batch.
func (s *TimesheetService) Sweep(ctx context.Context, now time.Time) (*ports.SweepReport, error) {
	timer := time.Now()
	active, err := s.logs.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("sweep: find active logs: %w", err)
	}

	capDuration := time.Duration(s.capHours * float64(time.Hour))
	report := &ports.SweepReport{Examined: len(active)}

	for _, log := range active {
		elapsed := now.Sub(log.StartTime)
		if elapsed <= capDuration {
			continue
		}

		hours := elapsed.Hours()
		if hours > s.capHours {
			hours = s.capHours
		}

		closed, err := s.logs.CloseIfActive(ctx, log.ID, ports.HourLogClose{
			EndTime:     log.StartTime.Add(capDuration),
			Hours:       hours,
			AutoStopped: true,
			Note:        domain.AutoStopNote(s.capHours),
		})
		if err != nil {
			report.Failed++
			s.logger.Error().Err(err).Str("log_id", log.ID).Msg("sweep: failed to close hour log")
			continue
		}
		if !closed {
			// Raced with a manual stop or another sweep; nothing to do.
			continue
		}

		report.Stopped++
		s.logger.Info().
			Str("log_id", log.ID).
			Str("user_id", log.UserID).
			Time("started_at", log.StartTime).
			Msg("hour log auto-stopped")
	}

	metrics.SweepRunsTotal.Inc()
	metrics.SweepStoppedTotal.Add(float64(report.Stopped))
	metrics.SweepErrorsTotal.Add(float64(report.Failed))
	metrics.SweepDuration.Observe(time.Since(timer).Seconds())

	s.logger.Info().
		Int("examined", report.Examined).
		Int("stopped", report.Stopped).
		Int("failed", report.Failed).
		Msg("auto-stop sweep finished")

	return report, nil
}
