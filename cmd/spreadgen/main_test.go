package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"spreadgen/internal/history"
	"spreadgen/internal/testsupport"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.configPath)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
}

func TestConfigShowRedactsKey(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Ownership.APIKey = "secret-key"
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "secret-key") {
		t.Fatalf("api key leaked: %s", out)
	}
	requireContains(t, out, "chunk_size")
}

func TestCardsFilters(t *testing.T) {
	out, _, err := runCLI(t, []string{"cards", "--name", "adderall"}, "")
	if err != nil {
		t.Fatalf("cards: %v", err)
	}
	requireContains(t, out, "ADDERALL")

	if _, _, err := runCLI(t, []string{"cards", "--faction", "nope"}, ""); err == nil {
		t.Fatal("expected unknown faction to fail")
	}

	out, _, err = runCLI(t, []string{"cards", "--name", "zzzz-no-such-card"}, "")
	if err != nil {
		t.Fatalf("cards: %v", err)
	}
	requireContains(t, out, "No cards match")
}

func TestGenerateDryRun(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"generate", "--dry-run", "--tokens", "1,2,3", "--seed", "7"}, env.configPath)
	if err != nil {
		t.Fatalf("generate --dry-run: %v", err)
	}
	requireContains(t, out, "Audio mixing (1/1)")
	requireContains(t, out, "Video rendering (1/1)")
	requireContains(t, out, "Combine Audio and Video streams")
	if strings.Contains(out, "Overlay Favorite Card") {
		t.Fatalf("unexpected favorite overlay without --favorite: %s", out)
	}

	out, _, err = runCLI(t, []string{"generate", "--dry-run", "--tokens", "1,2,3", "--favorite", "2", "--show-args", "--chunk-size", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("generate --dry-run --favorite: %v", err)
	}
	requireContains(t, out, "Overlay Favorite Card")
	requireContains(t, out, "Audio mixing (3/3)")
	requireContains(t, out, "-map 1:a:0 output.mp4")
}

func TestGenerateRequiresSource(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"generate", "--dry-run"}, env.configPath); err == nil {
		t.Fatal("expected an error without --owner or --tokens")
	}
	if _, _, err := runCLI(t, []string{"generate", "--dry-run", "--tokens", "1", "--favorite", "999"}, env.configPath); err == nil {
		t.Fatal("expected an error for a favorite outside the collection")
	}
}

func TestGenerateStopsOnPreflightFailure(t *testing.T) {
	env := setupCLITestEnv(t)

	_, stderr, err := runCLI(t, []string{"generate", "--tokens", "1"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "preflight failed") {
		t.Fatalf("expected preflight failure, got %v", err)
	}
	requireContains(t, stderr, "Template assets")
}

func TestRunsListAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"runs", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("runs list: %v", err)
	}
	requireContains(t, out, "No runs recorded")

	store := testsupport.MustOpenHistory(t, env.cfg)
	run, err := store.Begin(context.Background(), history.RunStart{
		SessionID: "session-cli",
		CardCount: 2,
		Commands:  []string{"Audio mixing (1/1)", "Combine Audio and Video streams"},
	})
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := store.Finish(context.Background(), run.ID, history.Outcome{OutputPath: "/tmp/spread.mp4", OutputBytes: 4096}); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	out, _, err = runCLI(t, []string{"runs", "list", "--status", "completed"}, env.configPath)
	if err != nil {
		t.Fatalf("runs list: %v", err)
	}
	requireContains(t, out, "completed")
	requireContains(t, out, "4.1 kB")

	out, _, err = runCLI(t, []string{"runs", "show", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("runs show: %v", err)
	}
	requireContains(t, out, "session-cli")
	requireContains(t, out, "Combine Audio and Video streams")

	if _, _, err := runCLI(t, []string{"runs", "show", "99"}, env.configPath); err == nil {
		t.Fatal("expected missing run to fail")
	}
	if _, _, err := runCLI(t, []string{"runs", "list", "--status", "paused"}, env.configPath); err == nil {
		t.Fatal("expected unknown status to fail")
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{3 * time.Second, "3s"},
		{2*time.Minute + 3*time.Second, "2m 3s"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1h 2m 3s"},
		{time.Hour, "1h 0m 0s"},
		{-time.Second, "0s"},
	}
	for _, tc := range cases {
		if got := formatDuration(tc.in); got != tc.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRenderStatusLinePlain(t *testing.T) {
	line := renderStatusLine("Output", statusOK, "/tmp/out.mp4", false)
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("unexpected color codes: %q", line)
	}
	requireContains(t, line, "[OK] /tmp/out.mp4")
}
