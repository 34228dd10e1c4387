package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"spreadgen/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrInvocation, "render", "exec", "ffmpeg failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrInvocation) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"render", "exec", "ffmpeg failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrInvocation) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestRecoverable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"fetch", services.Wrap(services.ErrMetadataFetch, "ownership", "list", "timeout", nil), true},
		{"init", services.Wrap(services.ErrEngineInit, "engine", "load", "missing binary", nil), true},
		{"artifact", services.Wrap(services.ErrArtifactResolution, "render", "resolve", "audio_0.wav", nil), false},
		{"invocation", fmt.Errorf("outer: %w", services.Wrap(services.ErrInvocation, "render", "exec", "", nil)), false},
		{"plain", errors.New("other"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.Recoverable(tc.err); got != tc.want {
				t.Fatalf("Recoverable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
