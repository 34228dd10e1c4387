package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"spreadgen/internal/config"
	"spreadgen/internal/logging"
	"spreadgen/internal/media/ffprobe"
	"spreadgen/internal/services"
)

var commandContext = exec.CommandContext

// ErrBusy reports that another run holds the work directory.
var ErrBusy = errors.New("work directory is in use by another run")

// Prober returns the duration of a media file in seconds.
type Prober func(ctx context.Context, path string) (float64, error)

// Option configures an Engine.
type Option func(*Engine)

// WithBinary overrides the ffmpeg binary.
func WithBinary(binary string) Option {
	return func(e *Engine) {
		if binary != "" {
			e.binary = binary
		}
	}
}

// WithProber overrides duration probing.
func WithProber(prober Prober) Option {
	return func(e *Engine) {
		if prober != nil {
			e.probe = prober
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logging.NewComponentLogger(logger, "ffmpeg")
	}
}

// Engine is a render.Engine backed by the ffmpeg CLI.
type Engine struct {
	binary string
	dir    string
	lock   *flock.Flock
	probe  Prober
	logger *slog.Logger
}

// Open verifies the ffmpeg binary, locks workDir, and creates a fresh run
// directory inside it. Failures are tagged as engine initialization errors.
func Open(ctx context.Context, workDir string, opts ...Option) (*Engine, error) {
	e := &Engine{
		binary: "ffmpeg",
		logger: logging.NewComponentLogger(nil, "ffmpeg"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.probe == nil {
		e.probe = func(ctx context.Context, path string) (float64, error) {
			return ffprobe.Duration(ctx, "ffprobe", path)
		}
	}

	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrEngineInit, "ffmpeg", "open", "create work directory", err)
	}
	lock := flock.New(filepath.Join(workDir, "spreadgen.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrEngineInit, "ffmpeg", "open", "lock work directory", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrEngineInit, "ffmpeg", "open", workDir, ErrBusy)
	}
	e.lock = lock

	if err := e.verify(ctx); err != nil {
		_ = lock.Unlock()
		return nil, services.Wrap(services.ErrEngineInit, "ffmpeg", "open", "verify binary", err)
	}

	e.dir = filepath.Join(workDir, "run-"+uuid.NewString())
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		_ = lock.Unlock()
		return nil, services.Wrap(services.ErrEngineInit, "ffmpeg", "open", "create run directory", err)
	}
	e.logger.Debug("ffmpeg engine ready", logging.String("dir", e.dir), logging.String("binary", e.binary))
	return e, nil
}

// FromConfig opens an Engine with the configured binaries and work directory.
func FromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	probeBinary := cfg.Engine.FFprobeBinary
	return Open(ctx, cfg.Paths.WorkDir,
		WithBinary(cfg.Engine.FFmpegBinary),
		WithLogger(logger),
		WithProber(func(ctx context.Context, path string) (float64, error) {
			return ffprobe.Duration(ctx, probeBinary, path)
		}),
	)
}

func (e *Engine) verify(ctx context.Context) error {
	if _, err := exec.LookPath(e.binary); err != nil {
		return fmt.Errorf("%s not found: %w", e.binary, err)
	}
	cmd := commandContext(ctx, e.binary, "-hide_banner", "-version") //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s -version: %w: %s", e.binary, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Dir returns the run directory.
func (e *Engine) Dir() string {
	return e.dir
}

// Close removes the run directory and releases the work directory lock.
func (e *Engine) Close() error {
	var errs []error
	if e.dir != "" {
		if err := os.RemoveAll(e.dir); err != nil {
			errs = append(errs, fmt.Errorf("remove run directory: %w", err))
		}
	}
	if e.lock != nil {
		if err := e.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("unlock work directory: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid working file name %q", name)
	}
	return filepath.Join(e.dir, name), nil
}

// WriteFile stores data in the run directory.
func (e *Engine) WriteFile(_ context.Context, name string, data []byte) error {
	target, err := e.path(name)
	if err != nil {
		return err
	}
	return os.WriteFile(target, data, 0o644)
}

// ReadFile reads a file from the run directory.
func (e *Engine) ReadFile(_ context.Context, name string) ([]byte, error) {
	target, err := e.path(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(target)
}

// DeleteFile removes a file from the run directory. Missing files are ignored.
func (e *Engine) DeleteFile(_ context.Context, name string) error {
	target, err := e.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
