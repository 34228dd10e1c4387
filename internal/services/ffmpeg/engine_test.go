package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"spreadgen/internal/services"
	"spreadgen/internal/testsupport"
)

func stubFFmpeg(t *testing.T, mode string, captured *[]string) {
	t.Helper()
	testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg"))
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if captured != nil {
			*captured = append([]string(nil), args...)
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		output := ""
		if len(args) > 0 {
			output = args[len(args)-1]
		}
		cmd.Env = append(os.Environ(),
			"GO_WANT_HELPER_PROCESS=1",
			fmt.Sprintf("FFMPEG_HELPER_MODE=%s", mode),
			fmt.Sprintf("FFMPEG_HELPER_OUTPUT=%s", output),
		)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func fixedProbe(seconds float64) Option {
	return WithProber(func(context.Context, string) (float64, error) {
		return seconds, nil
	})
}

func TestOpenCreatesRunDirAndLocks(t *testing.T) {
	stubFFmpeg(t, "version", nil)
	workDir := t.TempDir()

	engine, err := Open(context.Background(), workDir, fixedProbe(0))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if info, err := os.Stat(engine.Dir()); err != nil || !info.IsDir() {
		t.Fatalf("expected run directory: %v", err)
	}

	_, err = Open(context.Background(), workDir, fixedProbe(0))
	if !errors.Is(err, ErrBusy) || !errors.Is(err, services.ErrEngineInit) {
		t.Fatalf("expected busy engine init error, got %v", err)
	}
	if !services.Recoverable(err) {
		t.Fatal("engine init errors should be recoverable")
	}

	dir := engine.Dir()
	if err := engine.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(dir); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected run directory removed, got %v", err)
	}

	reopened, err := Open(context.Background(), workDir, fixedProbe(0))
	if err != nil {
		t.Fatalf("reopen after Close: %v", err)
	}
	_ = reopened.Close()
}

func TestOpenFailsWhenBinaryBroken(t *testing.T) {
	stubFFmpeg(t, "failure", nil)
	_, err := Open(context.Background(), t.TempDir(), fixedProbe(0))
	if !errors.Is(err, services.ErrEngineInit) {
		t.Fatalf("expected engine init error, got %v", err)
	}
}

func TestWorkingFiles(t *testing.T) {
	stubFFmpeg(t, "version", nil)
	engine, err := Open(context.Background(), t.TempDir(), fixedProbe(0))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = engine.Close() })
	ctx := context.Background()

	if err := engine.WriteFile(ctx, "bg.png", []byte("png")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := engine.ReadFile(ctx, "bg.png")
	if err != nil || string(data) != "png" {
		t.Fatalf("ReadFile = %q, %v", data, err)
	}
	if err := engine.DeleteFile(ctx, "bg.png"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if err := engine.DeleteFile(ctx, "bg.png"); err != nil {
		t.Fatalf("second DeleteFile should be a no-op: %v", err)
	}
	if err := engine.WriteFile(ctx, "../escape.png", nil); err == nil {
		t.Fatal("expected path escape to be rejected")
	}
}

func TestExecReportsProgressAndWritesOutput(t *testing.T) {
	var captured []string
	stubFFmpeg(t, "version", nil)
	engine, err := Open(context.Background(), t.TempDir(), fixedProbe(10))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = engine.Close() })

	stubFFmpeg(t, "success", &captured)
	ctx := context.Background()
	if err := engine.WriteFile(ctx, "ambiance.wav", []byte("wav")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	inv, err := engine.Exec(ctx, []string{"-i", "ambiance.wav", "-vn", "-filter_complex", "amix=inputs=1", "audio_final.wav"})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	var fractions []float64
	for f := range inv.Progress() {
		fractions = append(fractions, f)
	}
	if err := inv.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if len(fractions) != 2 || fractions[0] != 0.5 || fractions[1] != 1 {
		t.Fatalf("unexpected progress %v", fractions)
	}
	data, err := engine.ReadFile(ctx, "audio_final.wav")
	if err != nil || string(data) != "rendered" {
		t.Fatalf("expected output written, got %q %v", data, err)
	}
	if strings.Join(captured[:len(baseArgs)], " ") != strings.Join(baseArgs, " ") {
		t.Fatalf("expected base args first, got %v", captured)
	}
	if captured[len(captured)-1] != "audio_final.wav" {
		t.Fatalf("expected output last, got %v", captured)
	}
}

func TestExecFailureIncludesStderr(t *testing.T) {
	stubFFmpeg(t, "version", nil)
	engine, err := Open(context.Background(), t.TempDir(), fixedProbe(0))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = engine.Close() })

	stubFFmpeg(t, "failure", nil)
	inv, err := engine.Exec(context.Background(), []string{"-i", "missing.mp4", "out.mp4"})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	for range inv.Progress() {
	}
	err = inv.Wait()
	if err == nil || !strings.Contains(err.Error(), "Invalid data found") {
		t.Fatalf("expected stderr tail in error, got %v", err)
	}
}

func TestReadProgressWithoutDuration(t *testing.T) {
	input := "frame=1\nout_time_us=500000\nprogress=continue\nout_time_us=900000\nprogress=end\n"
	out := make(chan float64, 8)
	readProgress(strings.NewReader(input), 0, out)
	close(out)
	var got []float64
	for f := range out {
		got = append(got, f)
	}
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected only the end marker, got %v", got)
	}
}

func TestReadProgressIsMonotonic(t *testing.T) {
	input := "out_time_us=2000000\nout_time_us=1000000\nout_time_ms=3000000\nout_time_us=N/A\nprogress=end\n"
	out := make(chan float64, 8)
	readProgress(strings.NewReader(input), 4, out)
	close(out)
	var got []float64
	for f := range out {
		got = append(got, f)
	}
	want := []float64{0.5, 0.75, 1}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestTailBufferKeepsLastLines(t *testing.T) {
	buf := &tailBuffer{limit: 2}
	_, _ = buf.Write([]byte("one\ntwo\nthr"))
	_, _ = buf.Write([]byte("ee\nfour"))
	if got := buf.String(); got != "three; four" {
		t.Fatalf("unexpected tail %q", got)
	}
}

func TestExpectedDurationSkipsStillImages(t *testing.T) {
	engine := &Engine{dir: t.TempDir(), logger: testLogger()}
	engine.probe = func(_ context.Context, path string) (float64, error) {
		switch filepath.Base(path) {
		case "bg.png":
			return 0, nil
		case "card_0.mp4":
			return 6, nil
		default:
			return 0, errors.New("unexpected probe")
		}
	}
	if got := engine.expectedDuration(context.Background(), []string{"-i", "bg.png", "-i", "card_0.mp4", "out.mp4"}); got != 6 {
		t.Fatalf("expected duration 6, got %v", got)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("FFMPEG_HELPER_MODE") {
	case "version":
		fmt.Println("ffmpeg version 7.1")
		os.Exit(0)
	case "success":
		fmt.Println("out_time_us=5000000")
		fmt.Println("progress=continue")
		fmt.Println("progress=end")
		if output := os.Getenv("FFMPEG_HELPER_OUTPUT"); output != "" {
			_ = os.WriteFile(output, []byte("rendered"), 0o644)
		}
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "missing.mp4: Invalid data found when processing input")
		os.Exit(1)
	default:
		os.Exit(0)
	}
}
