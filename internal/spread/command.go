package spread

import (
	"fmt"
	"sync"
	"time"
)

// InputRef names a file a command reads from its working directory. A
// non-empty Path is a static asset location; an empty Path means the file is
// an artifact produced by an earlier command.
type InputRef struct {
	Name string `json:"name"`
	Path string `json:"path,omitempty"`
}

// IsArtifact reports whether the input must come from the artifact store.
func (r InputRef) IsArtifact() bool {
	return r.Path == ""
}

// Command is one media engine invocation. The final argument is always the
// output file name.
type Command struct {
	Title  string     `json:"title"`
	Inputs []InputRef `json:"inputs"`
	Args   []string   `json:"args"`
}

// Output returns the artifact name the command writes.
func (c Command) Output() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[len(c.Args)-1]
}

// State is the lifecycle of one queued command.
type State int

const (
	StatePending State = iota
	StateRunning
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Status is the runtime view of a queued command.
type Status struct {
	Index      int
	Title      string
	State      State
	Progress   float64
	StartedAt  time.Time
	FinishedAt time.Time
}

// Elapsed returns the command's run time, or zero if it has not finished.
func (s Status) Elapsed() time.Duration {
	if s.StartedAt.IsZero() || s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Queue is the ordered command list for one run. Commands are fixed at
// construction; only their runtime status changes.
type Queue struct {
	commands []Command

	mu     sync.RWMutex
	status []Status
}

// NewQueue wraps commands in a Queue with every status pending.
func NewQueue(commands []Command) *Queue {
	q := &Queue{commands: commands, status: make([]Status, len(commands))}
	for i, cmd := range commands {
		q.status[i] = Status{Index: i, Title: cmd.Title}
	}
	return q
}

// Len returns the number of commands.
func (q *Queue) Len() int {
	return len(q.commands)
}

// Command returns command i.
func (q *Queue) Command(i int) Command {
	return q.commands[i]
}

// Commands returns the commands in execution order.
func (q *Queue) Commands() []Command {
	return append([]Command(nil), q.commands...)
}

// Result returns the name of the published artifact.
func (q *Queue) Result() string {
	if len(q.commands) == 0 {
		return ""
	}
	return q.commands[len(q.commands)-1].Output()
}

// Snapshot returns a copy of every command's status.
func (q *Queue) Snapshot() []Status {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return append([]Status(nil), q.status...)
}

// Overall returns the mean progress across the queue.
func (q *Queue) Overall() float64 {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if len(q.status) == 0 {
		return 0
	}
	var total float64
	for _, s := range q.status {
		total += s.Progress
	}
	return total / float64(len(q.status))
}

// MarkStarted records the start of command i.
func (q *Queue) MarkStarted(i int, at time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.status[i].State = StateRunning
	q.status[i].StartedAt = at
	q.status[i].Progress = 0
}

// SetProgress records fractional progress for command i, clamped to [0, 1].
func (q *Queue) SetProgress(i int, fraction float64) {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.status[i].Progress = fraction
}

// MarkFinished records successful completion of command i.
func (q *Queue) MarkFinished(i int, at time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.status[i].State = StateDone
	q.status[i].Progress = 1
	q.status[i].FinishedAt = at
}

// MarkFailed records that command i did not complete.
func (q *Queue) MarkFailed(i int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.status[i].State = StateFailed
}
