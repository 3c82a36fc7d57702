package domain

import (
	"fmt"
	"time"
)

// HourLog is a single time entry. A log is created active (EndTime nil) and
// transitions exactly once to closed, either by an explicit stop or by the
// auto-stop sweep. Invariant: IsActive == (EndTime == nil); closed logs are
// never reopened.
type HourLog struct {
	ID          string     `json:"id" bson:"_id,omitempty"`
	UserID      string     `json:"user_id" bson:"user_id"`
	JobID       string     `json:"job_id,omitempty" bson:"job_id,omitempty"`
	StartTime   time.Time  `json:"start_time" bson:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty" bson:"end_time,omitempty"`
	Hours       float64    `json:"hours,omitempty" bson:"hours,omitempty"`
	IsActive    bool       `json:"is_active" bson:"is_active"`
	AutoStopped bool       `json:"auto_stopped" bson:"auto_stopped"`
	Notes       string     `json:"notes,omitempty" bson:"notes,omitempty"`
}

// AutoStopNote returns the suffix appended to a log's notes when the sweep
// force-closes it.
func AutoStopNote(capHours float64) string {
	return fmt.Sprintf("Auto-stopped after %g hours", capHours)
}

// AppendNote joins an existing notes field with an additional line.
func AppendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
