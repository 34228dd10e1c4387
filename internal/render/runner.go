package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"spreadgen/internal/logging"
	"spreadgen/internal/services"
	"spreadgen/internal/spread"
)

// Result is the published output of a completed run.
type Result struct {
	Name     string
	Data     []byte
	Started  time.Time
	Finished time.Time
}

// Elapsed returns the wall time of the run.
func (r Result) Elapsed() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logging.NewComponentLogger(logger, "render")
	}
}

// WithClock overrides the time source used for command timing.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// Runner executes one queue against an engine. A Runner and its Store must
// not be shared between runs.
type Runner struct {
	engine Engine
	assets AssetSource
	store  *Store
	logger *slog.Logger
	now    func() time.Time
}

// NewRunner constructs a Runner with a fresh artifact Store.
func NewRunner(engine Engine, assets AssetSource, opts ...Option) *Runner {
	r := &Runner{
		engine: engine,
		assets: assets,
		store:  NewStore(),
		logger: logging.NewComponentLogger(nil, "render"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store returns the run's artifact store.
func (r *Runner) Store() *Store {
	return r.store
}

// Run executes every command in order and returns the final artifact. When a
// command fails the remaining commands are skipped, the failed command is
// marked on the queue, and the returned error is a *CommandError.
func (r *Runner) Run(ctx context.Context, queue *spread.Queue) (Result, error) {
	if queue == nil || queue.Len() == 0 {
		return Result{}, services.Wrap(services.ErrValidation, "render", "run", "empty command queue", nil)
	}
	result := Result{Name: queue.Result(), Started: r.now()}
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("render started",
		logging.Int("commands", queue.Len()),
		logging.String("result", result.Name),
		logging.String(logging.FieldEventType, "render_start"),
	)

	for i := range queue.Len() {
		cmd := queue.Command(i)
		if err := r.runCommand(ctx, queue, i, cmd); err != nil {
			queue.MarkFailed(i)
			cmdErr := &CommandError{Index: i, Title: cmd.Title, Err: err}
			logging.ErrorWithContext(logger, "render command failed", "render_command_failed",
				logging.Int(logging.FieldCommandIndex, i),
				logging.String(logging.FieldCommandTitle, cmd.Title),
				logging.Int("remaining", queue.Len()-i-1),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "inspect the command arguments and the ffmpeg stderr tail"),
			)
			return Result{}, cmdErr
		}
	}

	data, ok := r.store.Get(result.Name)
	if !ok {
		return Result{}, services.Wrap(services.ErrArtifactResolution, "render", "publish", fmt.Sprintf("result %q was not produced", result.Name), nil)
	}
	r.store.Retain(result.Name)
	result.Data = data
	result.Finished = r.now()
	logger.Info("render completed",
		logging.String("result", result.Name),
		logging.String("size", humanize.Bytes(uint64(len(data)))),
		logging.Duration("elapsed", result.Elapsed()),
		logging.String(logging.FieldEventType, "render_complete"),
	)
	return result, nil
}

func (r *Runner) runCommand(ctx context.Context, queue *spread.Queue, i int, cmd spread.Command) error {
	if len(cmd.Args) == 0 {
		return services.Wrap(services.ErrValidation, "render", cmd.Title, "command has no arguments", nil)
	}
	ctx = services.WithCommand(ctx, i, cmd.Title)
	logger := logging.WithContext(ctx, r.logger)
	queue.MarkStarted(i, r.now())

	written := make([]string, 0, len(cmd.Inputs)+1)
	defer func() {
		for _, name := range written {
			if err := r.engine.DeleteFile(context.WithoutCancel(ctx), name); err != nil {
				logging.WarnWithContext(logger, "working file cleanup failed", "render_cleanup_failed",
					logging.String("file", name),
					logging.Error(err),
					logging.String(logging.FieldImpact, "working storage keeps a stale file until the run directory is removed"),
				)
			}
		}
	}()

	for _, input := range cmd.Inputs {
		data, err := r.resolve(ctx, input)
		if err != nil {
			return err
		}
		if err := r.engine.WriteFile(ctx, input.Name, data); err != nil {
			return services.Wrap(services.ErrInvocation, "render", cmd.Title, "write input "+input.Name, err)
		}
		written = append(written, input.Name)
	}

	output := cmd.Output()
	written = append(written, output)
	logger.Debug("command invoked", logging.Int("inputs", len(cmd.Inputs)))
	inv, err := r.engine.Exec(ctx, cmd.Args)
	if err != nil {
		return services.Wrap(services.ErrInvocation, "render", cmd.Title, "start", err)
	}
	sampler := logging.NewProgressSampler(25)
	for fraction := range inv.Progress() {
		queue.SetProgress(i, fraction)
		if sampler.ShouldLog(fraction, cmd.Title) {
			logger.Debug("command progress", logging.Float64("fraction", fraction))
		}
	}
	if err := inv.Wait(); err != nil {
		return services.Wrap(services.ErrInvocation, "render", cmd.Title, "exec", err)
	}
	queue.SetProgress(i, 1)

	data, err := r.engine.ReadFile(ctx, output)
	if err != nil {
		return services.Wrap(services.ErrInvocation, "render", cmd.Title, "read output "+output, err)
	}
	r.store.Put(output, data)
	finished := r.now()
	queue.MarkFinished(i, finished)

	status := queue.Snapshot()[i]
	logger.Info("command completed",
		logging.String("output", output),
		logging.String("size", humanize.Bytes(uint64(len(data)))),
		logging.Duration("elapsed", status.Elapsed()),
	)
	return nil
}

// resolve loads a static asset or a previously produced artifact.
func (r *Runner) resolve(ctx context.Context, input spread.InputRef) ([]byte, error) {
	if input.IsArtifact() {
		data, ok := r.store.Get(input.Name)
		if !ok {
			return nil, services.Wrap(services.ErrArtifactResolution, "render", "resolve", fmt.Sprintf("artifact %q has not been produced", input.Name), nil)
		}
		return data, nil
	}
	if r.assets == nil {
		return nil, services.Wrap(services.ErrConfiguration, "render", "resolve", "no asset source configured", nil)
	}
	data, err := r.assets.Fetch(ctx, input.Path)
	if err != nil {
		return nil, services.Wrap(services.ErrInvocation, "render", "resolve", "fetch "+input.Path, err)
	}
	return data, nil
}

// IsArtifactError reports whether err stems from a missing artifact.
func IsArtifactError(err error) bool {
	return errors.Is(err, services.ErrArtifactResolution)
}
