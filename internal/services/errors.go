package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMetadataFetch      = errors.New("metadata fetch error")
	ErrEngineInit         = errors.New("engine initialization error")
	ErrArtifactResolution = errors.New("artifact resolution error")
	ErrInvocation         = errors.New("invocation error")
	ErrInvalidTransition  = errors.New("invalid workflow transition")
	ErrValidation         = errors.New("validation error")
	ErrConfiguration      = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrInvocation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Recoverable reports whether err belongs to the class of failures that are
// surfaced to the user without abandoning the session. Artifact resolution and
// invocation failures abort the generation run and are never recoverable.
func Recoverable(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrArtifactResolution), errors.Is(err, ErrInvocation):
		return false
	case errors.Is(err, ErrMetadataFetch), errors.Is(err, ErrEngineInit):
		return true
	default:
		return false
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
