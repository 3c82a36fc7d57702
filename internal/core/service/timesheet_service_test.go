package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/inkpress/production-system/internal/core/domain"
	"github.com/inkpress/production-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubHourLogRepo struct {
	byID     map[string]*domain.HourLog
	nextID   int
	closeErr map[string]error // per-id CloseIfActive failures
}

func newStubHourLogRepo() *stubHourLogRepo {
	return &stubHourLogRepo{
		byID:     make(map[string]*domain.HourLog),
		closeErr: make(map[string]error),
	}
}

func (r *stubHourLogRepo) Create(_ context.Context, log *domain.HourLog) (*domain.HourLog, error) {
	r.nextID++
	clone := *log
	clone.ID = "log_" + strconv.Itoa(r.nextID)
	clone.IsActive = true
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubHourLogRepo) FindByID(_ context.Context, id string) (*domain.HourLog, error) {
	log, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrHourLogNotFound
	}
	clone := *log
	return &clone, nil
}

func (r *stubHourLogRepo) FindActive(_ context.Context) ([]*domain.HourLog, error) {
	var out []*domain.HourLog
	for _, log := range r.byID {
		if log.IsActive && log.EndTime == nil {
			clone := *log
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubHourLogRepo) ListByUser(_ context.Context, userID string) ([]*domain.HourLog, error) {
	var out []*domain.HourLog
	for _, log := range r.byID {
		if log.UserID == userID {
			clone := *log
			out = append(out, &clone)
		}
	}
	return out, nil
}

// CloseIfActive mirrors the conditional Mongo update: the write only lands
// when the row is still active.
func (r *stubHourLogRepo) CloseIfActive(_ context.Context, id string, close ports.HourLogClose) (bool, error) {
	if err := r.closeErr[id]; err != nil {
		return false, err
	}
	log, ok := r.byID[id]
	if !ok {
		return false, domain.ErrHourLogNotFound
	}
	if !log.IsActive {
		return false, nil
	}
	end := close.EndTime
	log.IsActive = false
	log.EndTime = &end
	log.Hours = close.Hours
	log.AutoStopped = close.AutoStopped
	if close.Note != "" {
		log.Notes = domain.AppendNote(log.Notes, close.Note)
	}
	return true, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTimesheetSvc(repo *stubHourLogRepo) *TimesheetService {
	return NewTimesheetService(repo, 8, zerolog.Nop())
}

func activeLog(repo *stubHourLogRepo, userID string, start time.Time) *domain.HourLog {
	log, _ := repo.Create(context.Background(), &domain.HourLog{
		UserID:    userID,
		StartTime: start,
	})
	return log
}

// ---------------------------------------------------------------------------
// Sweep
// ---------------------------------------------------------------------------

func TestTimesheetService_Sweep_UnderCapUntouched(t *testing.T) {
	repo := newStubHourLogRepo()
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	log := activeLog(repo, "emp_1", start)
	svc := newTimesheetSvc(repo)

	report, err := svc.Sweep(context.Background(), start.Add(7*time.Hour))
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if report.Examined != 1 || report.Stopped != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	got := repo.byID[log.ID]
	if !got.IsActive || got.EndTime != nil || got.AutoStopped {
		t.Fatalf("log under cap must stay untouched: %+v", got)
	}
}

func TestTimesheetService_Sweep_OverCapClosed(t *testing.T) {
	repo := newStubHourLogRepo()
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	log := activeLog(repo, "emp_1", start)
	svc := newTimesheetSvc(repo)

	report, err := svc.Sweep(context.Background(), start.Add(9*time.Hour))
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if report.Examined != 1 || report.Stopped != 1 || report.Failed != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	got := repo.byID[log.ID]
	if got.IsActive {
		t.Fatalf("log must be closed")
	}
	if got.EndTime == nil || !got.EndTime.Equal(start.Add(8*time.Hour)) {
		t.Fatalf("end time must be start+cap, got %v", got.EndTime)
	}
	if got.Hours != 8 {
		t.Fatalf("hours must be capped at 8, got %v", got.Hours)
	}
	if !got.AutoStopped {
		t.Fatalf("auto_stopped must be set")
	}
	if !strings.Contains(got.Notes, "Auto-stopped after 8 hours") {
		t.Fatalf("notes must carry the auto-stop suffix, got %q", got.Notes)
	}
}

func TestTimesheetService_Sweep_NotesSuffixAppended(t *testing.T) {
	repo := newStubHourLogRepo()
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	log, _ := repo.Create(context.Background(), &domain.HourLog{
		UserID:    "emp_1",
		StartTime: start,
		Notes:     "press 2 maintenance",
	})
	svc := newTimesheetSvc(repo)

	if _, err := svc.Sweep(context.Background(), start.Add(10*time.Hour)); err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	notes := repo.byID[log.ID].Notes
	if !strings.HasPrefix(notes, "press 2 maintenance") || !strings.Contains(notes, "Auto-stopped after 8 hours") {
		t.Fatalf("existing notes must be preserved with the suffix appended, got %q", notes)
	}
}

// Running the sweep twice must close each over-cap log exactly once: the
// second pass no longer selects the row.
func TestTimesheetService_Sweep_Idempotent(t *testing.T) {
	repo := newStubHourLogRepo()
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	activeLog(repo, "emp_1", start)
	svc := newTimesheetSvc(repo)
	ctx := context.Background()

	first, err := svc.Sweep(ctx, start.Add(9*time.Hour))
	if err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if first.Stopped != 1 {
		t.Fatalf("first sweep should stop the log: %+v", first)
	}

	second, err := svc.Sweep(ctx, start.Add(10*time.Hour))
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if second.Examined != 0 || second.Stopped != 0 {
		t.Fatalf("second sweep must select nothing: %+v", second)
	}
}

// One bad row must not prevent the remaining logs from being stopped.
func TestTimesheetService_Sweep_PartialFailureIsolated(t *testing.T) {
	repo := newStubHourLogRepo()
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	bad := activeLog(repo, "emp_1", start)
	good := activeLog(repo, "emp_2", start)
	repo.closeErr[bad.ID] = errors.New("write conflict")
	svc := newTimesheetSvc(repo)

	report, err := svc.Sweep(context.Background(), start.Add(9*time.Hour))
	if err != nil {
		t.Fatalf("Sweep must not fail the batch: %v", err)
	}
	if report.Examined != 2 || report.Stopped != 1 || report.Failed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if repo.byID[good.ID].IsActive {
		t.Fatalf("healthy log must still be stopped")
	}
}

// ---------------------------------------------------------------------------
// Start / Stop
// ---------------------------------------------------------------------------

func TestTimesheetService_StartLog_RequiresUser(t *testing.T) {
	svc := newTimesheetSvc(newStubHourLogRepo())
	if _, err := svc.StartLog(context.Background(), ports.StartLogInput{}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestTimesheetService_StopLog_ClosesOnce(t *testing.T) {
	repo := newStubHourLogRepo()
	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	log := activeLog(repo, "emp_1", start)
	svc := newTimesheetSvc(repo)
	ctx := context.Background()

	now := start.Add(90 * time.Minute)
	stopped, err := svc.StopLog(ctx, log.ID, now)
	if err != nil {
		t.Fatalf("StopLog: %v", err)
	}
	if stopped.IsActive || stopped.EndTime == nil || !stopped.EndTime.Equal(now) {
		t.Fatalf("log not closed: %+v", stopped)
	}
	if stopped.Hours != 1.5 {
		t.Fatalf("expected 1.5 hours, got %v", stopped.Hours)
	}
	if stopped.AutoStopped {
		t.Fatalf("manual stop must not mark auto_stopped")
	}

	// Stopping again is a no-op, not an error; the terminal state survives.
	again, err := svc.StopLog(ctx, log.ID, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("second stop: %v", err)
	}
	if !again.EndTime.Equal(now) || again.Hours != 1.5 {
		t.Fatalf("closed log must stay unchanged: %+v", again)
	}
}

func TestTimesheetService_StopLog_Unknown(t *testing.T) {
	svc := newTimesheetSvc(newStubHourLogRepo())
	if _, err := svc.StopLog(context.Background(), "missing", time.Now()); !errors.Is(err, domain.ErrHourLogNotFound) {
		t.Fatalf("expected ErrHourLogNotFound, got %v", err)
	}
}

// A sweep landing between StopLog's read and its conditional update wins the
// race; the manual stop degrades to a no-op read of the terminal state.
func TestTimesheetService_StopLog_LosesRaceGracefully(t *testing.T) {
	repo := newStubHourLogRepo()
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	log := activeLog(repo, "emp_1", start)
	svc := newTimesheetSvc(repo)

	// Simulate the sweep committing first.
	end := start.Add(8 * time.Hour)
	if closed, _ := repo.CloseIfActive(context.Background(), log.ID, ports.HourLogClose{
		EndTime: end, Hours: 8, AutoStopped: true, Note: domain.AutoStopNote(8),
	}); !closed {
		t.Fatalf("setup: sweep close failed")
	}

	got, err := svc.StopLog(context.Background(), log.ID, start.Add(9*time.Hour))
	if err != nil {
		t.Fatalf("StopLog after race: %v", err)
	}
	if !got.AutoStopped || !got.EndTime.Equal(end) {
		t.Fatalf("sweep's terminal state must survive: %+v", got)
	}
}
