package render_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"spreadgen/internal/cards"
	"spreadgen/internal/placement"
	"spreadgen/internal/render"
	"spreadgen/internal/services"
	"spreadgen/internal/spread"
	"spreadgen/internal/testsupport"
)

func buildQueue(t *testing.T, n, favorite int) *spread.Queue {
	t.Helper()
	assets := make([]cards.CardAsset, n)
	for i := range assets {
		meta := cards.Metadata{ID: fmt.Sprintf("%04d", i+1), Rarity: 1, Faction: cards.FakeTech}
		assets[i] = cards.NewCardAsset(meta, placement.At(0.3, 0.3, float64(i)))
		assets[i].Favorite = i == favorite
	}
	queue, err := spread.Build(assets, spread.DefaultOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return queue
}

func stepClock() func() time.Time {
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func TestRunExecutesQueueInOrder(t *testing.T) {
	queue := buildQueue(t, 10, 3)
	engine := testsupport.NewFakeEngine()
	runner := render.NewRunner(engine, testsupport.EchoAssets{}, render.WithClock(stepClock()))

	result, err := runner.Run(context.Background(), queue)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Name != "output.mp4" {
		t.Fatalf("unexpected result name %q", result.Name)
	}
	if !strings.HasPrefix(string(result.Data), "output.mp4<-video_final.mp4,audio_final.wav") {
		t.Fatalf("unexpected result payload %q", result.Data)
	}
	if result.Elapsed() <= 0 {
		t.Fatalf("expected positive elapsed time, got %v", result.Elapsed())
	}

	calls := engine.Calls()
	if len(calls) != queue.Len() {
		t.Fatalf("expected %d invocations, got %d", queue.Len(), len(calls))
	}
	for i, call := range calls {
		if call[len(call)-1] != queue.Command(i).Output() {
			t.Fatalf("invocation %d out of order: %v", i, call)
		}
	}

	for i, status := range queue.Snapshot() {
		if status.State != spread.StateDone || status.Progress != 1 {
			t.Fatalf("command %d: unexpected status %+v", i, status)
		}
		if !status.StartedAt.Before(status.FinishedAt) {
			t.Fatalf("command %d: start %v not before end %v", i, status.StartedAt, status.FinishedAt)
		}
	}

	if files := engine.Files(); len(files) != 0 {
		t.Fatalf("expected working storage to be empty, got %v", files)
	}
	if names := runner.Store().Names(); len(names) != 1 || names[0] != "output.mp4" {
		t.Fatalf("expected only the result retained, got %v", names)
	}
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	queue := buildQueue(t, 20, -1)
	engine := testsupport.NewFakeEngine()
	engine.FailAt = 2
	runner := render.NewRunner(engine, testsupport.EchoAssets{})

	result, err := runner.Run(context.Background(), queue)
	if err == nil {
		t.Fatal("expected run to fail")
	}
	var cmdErr *render.CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected CommandError, got %T %v", err, err)
	}
	if cmdErr.Index != 2 || cmdErr.Title != "Audio mixing (3/3)" {
		t.Fatalf("unexpected failing command %d %q", cmdErr.Index, cmdErr.Title)
	}
	if !errors.Is(err, services.ErrInvocation) {
		t.Fatalf("expected invocation marker, got %v", err)
	}
	if services.Recoverable(err) {
		t.Fatal("invocation failures must not be recoverable")
	}
	if got := len(engine.Calls()); got != 3 {
		t.Fatalf("expected 3 invocations, got %d", got)
	}
	if result.Data != nil || result.Name != "" {
		t.Fatalf("expected no published result, got %+v", result)
	}
	if _, ok := runner.Store().Get("output.mp4"); ok {
		t.Fatal("terminal artifact must not exist")
	}
	if files := engine.Files(); len(files) != 0 {
		t.Fatalf("expected working storage cleared after failure, got %v", files)
	}

	snap := queue.Snapshot()
	if snap[2].State != spread.StateFailed {
		t.Fatalf("expected failed command state, got %v", snap[2].State)
	}
	for _, status := range snap[3:] {
		if status.State != spread.StatePending || !status.StartedAt.IsZero() {
			t.Fatalf("command %d should never start: %+v", status.Index, status)
		}
	}
}

func TestRunReportsMissingArtifact(t *testing.T) {
	queue := spread.NewQueue([]spread.Command{
		{
			Title:  "Dangling",
			Inputs: []spread.InputRef{{Name: "never.wav"}},
			Args:   []string{"-i", "never.wav", "out.wav"},
		},
		{
			Title:  "Unreached",
			Inputs: []spread.InputRef{{Name: "bg.png", Path: "/bg.png"}},
			Args:   []string{"-i", "bg.png", "final.mp4"},
		},
	})
	engine := testsupport.NewFakeEngine()
	runner := render.NewRunner(engine, testsupport.EchoAssets{})

	_, err := runner.Run(context.Background(), queue)
	if !render.IsArtifactError(err) {
		t.Fatalf("expected artifact resolution error, got %v", err)
	}
	if len(engine.Calls()) != 0 {
		t.Fatalf("expected no invocations, got %d", len(engine.Calls()))
	}
}

func TestRunFailsWhenOutputMissing(t *testing.T) {
	queue := buildQueue(t, 1, -1)
	engine := testsupport.NewFakeEngine()
	engine.SkipOutput = true
	runner := render.NewRunner(engine, testsupport.EchoAssets{})

	_, err := runner.Run(context.Background(), queue)
	var cmdErr *render.CommandError
	if !errors.As(err, &cmdErr) || cmdErr.Index != 0 {
		t.Fatalf("expected failure on first command, got %v", err)
	}
	if len(engine.Calls()) != 1 {
		t.Fatalf("expected one invocation, got %d", len(engine.Calls()))
	}
}

func TestRunMaterializesInputs(t *testing.T) {
	queue := buildQueue(t, 1, 0)
	engine := testsupport.NewFakeEngine()
	runner := render.NewRunner(engine, testsupport.EchoAssets{})

	if _, err := runner.Run(context.Background(), queue); err != nil {
		t.Fatalf("Run: %v", err)
	}
	calls := engine.Calls()
	if len(calls) != 4 {
		t.Fatalf("expected 4 invocations, got %d", len(calls))
	}
	overlay := calls[2]
	if overlay[len(overlay)-1] != "video_final.mp4" {
		t.Fatalf("unexpected overlay output %v", overlay)
	}
}

func TestRunRejectsEmptyQueue(t *testing.T) {
	runner := render.NewRunner(testsupport.NewFakeEngine(), testsupport.EchoAssets{})
	if _, err := runner.Run(context.Background(), spread.NewQueue(nil)); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStoreRetain(t *testing.T) {
	store := render.NewStore()
	store.Put("a", []byte("12"))
	store.Put("b", []byte("345"))
	if store.Size() != 5 {
		t.Fatalf("unexpected size %d", store.Size())
	}
	store.Retain("b")
	if names := store.Names(); len(names) != 1 || names[0] != "b" {
		t.Fatalf("unexpected names %v", names)
	}
}
