package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"spreadgen/internal/logging"
	"spreadgen/internal/render"
)

// baseArgs precede every command's own arguments.
var baseArgs = []string{"-hide_banner", "-nostdin", "-y", "-loglevel", "error", "-nostats", "-progress", "pipe:1"}

const stderrTailLines = 20

// Exec starts ffmpeg in the run directory.
func (e *Engine) Exec(ctx context.Context, args []string) (render.Invocation, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("ffmpeg: no arguments")
	}
	total := e.expectedDuration(ctx, args)

	full := append(append([]string(nil), baseArgs...), args...)
	cmd := commandContext(ctx, e.binary, full...) //nolint:gosec
	cmd.Dir = e.dir
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	tail := &tailBuffer{limit: stderrTailLines}
	cmd.Stderr = tail
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	inv := &invocation{
		progress: make(chan float64, 8),
		done:     make(chan struct{}),
	}
	go func() {
		defer close(inv.done)
		defer close(inv.progress)
		readProgress(stdout, total, inv.progress)
		if err := cmd.Wait(); err != nil {
			inv.err = fmt.Errorf("ffmpeg failed: %w: %s", err, tail.String())
		}
	}()
	return inv, nil
}

// expectedDuration probes the first -i input with a known duration. Still
// images report none, so later inputs are tried in order.
func (e *Engine) expectedDuration(ctx context.Context, args []string) float64 {
	for i := 0; i+1 < len(args); i++ {
		if args[i] != "-i" {
			continue
		}
		seconds, err := e.probe(ctx, filepath.Join(e.dir, args[i+1]))
		if err != nil {
			e.logger.Debug("duration probe failed", logging.String("input", args[i+1]), logging.Error(err))
			continue
		}
		if seconds > 0 {
			return seconds
		}
	}
	return 0
}

// readProgress parses ffmpeg -progress key=value output. Fractions are only
// reported when the total duration is known; progress=end always reports 1.
func readProgress(r io.Reader, totalSeconds float64, out chan<- float64) {
	scanner := bufio.NewScanner(r)
	last := -1.0
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		var fraction float64
		switch key {
		case "out_time_us", "out_time_ms":
			if totalSeconds <= 0 {
				continue
			}
			micros, err := strconv.ParseFloat(value, 64)
			if err != nil || micros < 0 {
				continue
			}
			fraction = min(micros/1e6/totalSeconds, 1)
		case "progress":
			if value != "end" {
				continue
			}
			fraction = 1
		default:
			continue
		}
		if fraction > last {
			last = fraction
			out <- fraction
		}
	}
	// Drain so ffmpeg never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, r)
}

type invocation struct {
	progress chan float64
	done     chan struct{}
	err      error
}

func (i *invocation) Progress() <-chan float64 { return i.progress }

func (i *invocation) Wait() error {
	<-i.done
	return i.err
}

// tailBuffer keeps the last few lines written to it.
type tailBuffer struct {
	mu      sync.Mutex
	limit   int
	lines   []string
	partial string
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	text := b.partial + string(p)
	parts := strings.Split(text, "\n")
	b.partial = parts[len(parts)-1]
	for _, line := range parts[:len(parts)-1] {
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		b.lines = append(b.lines, line)
		if len(b.lines) > b.limit {
			b.lines = b.lines[len(b.lines)-b.limit:]
		}
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	lines := append([]string(nil), b.lines...)
	if partial := strings.TrimSpace(b.partial); partial != "" {
		lines = append(lines, partial)
	}
	return strings.Join(lines, "; ")
}

var _ render.Engine = (*Engine)(nil)
