package render

import (
	"fmt"
)

// CommandError identifies the queued command that stopped a run.
type CommandError struct {
	Index int
	Title string
	Err   error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %d (%s): %v", e.Index+1, e.Title, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
