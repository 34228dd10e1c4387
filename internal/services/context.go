package services

import "context"

type contextKey string

const (
	runIDKey        contextKey = "run_id"
	stageKey        contextKey = "stage"
	commandIndexKey contextKey = "command_index"
	commandTitleKey contextKey = "command_title"
)

// WithRunID annotates context with the generation run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the generation run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the workflow stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithCommand annotates context with the zero-based queue index and title of
// the command being executed.
func WithCommand(ctx context.Context, index int, title string) context.Context {
	ctx = context.WithValue(ctx, commandIndexKey, index)
	if title != "" {
		ctx = context.WithValue(ctx, commandTitleKey, title)
	}
	return ctx
}

// CommandFromContext returns the command index and title if present.
func CommandFromContext(ctx context.Context) (int, string, bool) {
	idx, ok := ctx.Value(commandIndexKey).(int)
	if !ok {
		return 0, "", false
	}
	title, _ := ctx.Value(commandTitleKey).(string)
	return idx, title, true
}
