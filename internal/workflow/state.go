package workflow

import (
	"fmt"

	"spreadgen/internal/services"
)

// ProcessStage is the user-facing progress of a session.
type ProcessStage int

const (
	StageStart ProcessStage = iota
	StageConfiguring
	StageGenerating
	StagePresenting
)

func (s ProcessStage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageConfiguring:
		return "configuring"
	case StageGenerating:
		return "generating"
	case StagePresenting:
		return "presenting"
	default:
		return fmt.Sprintf("ProcessStage(%d)", int(s))
	}
}

// next returns the only stage reachable from s.
func (s ProcessStage) next() (ProcessStage, bool) {
	switch s {
	case StageStart:
		return StageConfiguring, true
	case StageConfiguring:
		return StageGenerating, true
	case StageGenerating:
		return StagePresenting, true
	case StagePresenting:
		return s, false
	default:
		return s, false
	}
}

// EngineReadiness tracks the media engine and command queue.
type EngineReadiness int

const (
	EngineUninitialized EngineReadiness = iota
	EngineLoading
	EngineLoaded
	EngineCommandsBuilt
)

func (r EngineReadiness) String() string {
	switch r {
	case EngineUninitialized:
		return "uninitialized"
	case EngineLoading:
		return "loading"
	case EngineLoaded:
		return "loaded"
	case EngineCommandsBuilt:
		return "commands_built"
	default:
		return fmt.Sprintf("EngineReadiness(%d)", int(r))
	}
}

// allows reports whether r may move to target. Rebuilding commands keeps
// the readiness at COMMANDS_BUILT.
func (r EngineReadiness) allows(target EngineReadiness) bool {
	switch r {
	case EngineUninitialized:
		return target == EngineLoading
	case EngineLoading:
		return target == EngineLoaded || target == EngineUninitialized
	case EngineLoaded:
		return target == EngineCommandsBuilt
	case EngineCommandsBuilt:
		return target == EngineCommandsBuilt
	default:
		return false
	}
}

// AtLeast reports whether r has reached min.
func (r EngineReadiness) AtLeast(min EngineReadiness) bool {
	return r >= min
}

func stageError(operation string, from, to ProcessStage) error {
	return services.Wrap(services.ErrInvalidTransition, "workflow", operation, fmt.Sprintf("stage %s cannot advance to %s", from, to), nil)
}

func readinessError(operation string, from, to EngineReadiness) error {
	return services.Wrap(services.ErrInvalidTransition, "workflow", operation, fmt.Sprintf("engine %s cannot move to %s", from, to), nil)
}
