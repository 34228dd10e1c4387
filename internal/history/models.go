package history

import (
	"strings"
	"time"

	"spreadgen/internal/spread"
)

// Status is the lifecycle of a recorded run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// AbandonedReason is recorded for runs left running by a process that exited.
const AbandonedReason = "Run abandoned before completion"

// ParseStatus parses a status name case-insensitively.
func ParseStatus(value string) (Status, bool) {
	switch status := Status(strings.ToLower(strings.TrimSpace(value))); status {
	case StatusRunning, StatusCompleted, StatusFailed:
		return status, true
	default:
		return "", false
	}
}

// Run is one generation attempt.
type Run struct {
	ID           int64
	SessionID    string
	Owner        string
	CardCount    int
	Favorite     string
	CommandCount int
	Status       Status
	ErrorMessage string
	OutputPath   string
	OutputBytes  int64
	CreatedAt    time.Time
	FinishedAt   *time.Time
}

// Elapsed returns the run duration, or zero while it is running.
func (r Run) Elapsed() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.CreatedAt)
}

// CommandRecord is the stored outcome of one queued command.
type CommandRecord struct {
	Position int
	Title    string
	State    string
	Elapsed  time.Duration
}

// RunStart describes a run about to execute.
type RunStart struct {
	SessionID string
	Owner     string
	CardCount int
	Favorite  string
	Commands  []string
}

// Outcome describes how a run ended.
type Outcome struct {
	Commands    []CommandRecord
	OutputPath  string
	OutputBytes int64
	Err         error
}

// CommandsFromStatus converts a queue snapshot into stored command records.
func CommandsFromStatus(statuses []spread.Status) []CommandRecord {
	records := make([]CommandRecord, 0, len(statuses))
	for _, status := range statuses {
		records = append(records, CommandRecord{
			Position: status.Index,
			Title:    status.Title,
			State:    status.State.String(),
			Elapsed:  status.Elapsed(),
		})
	}
	return records
}

// Titles returns the titles of queued commands in order.
func Titles(queue *spread.Queue) []string {
	if queue == nil {
		return nil
	}
	titles := make([]string, 0, queue.Len())
	for _, cmd := range queue.Commands() {
		titles = append(titles, cmd.Title)
	}
	return titles
}
