package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"spreadgen/internal/cards"
	"spreadgen/internal/logging"
	"spreadgen/internal/ownership"
	"spreadgen/internal/render"
	"spreadgen/internal/services"
	"spreadgen/internal/spread"
)

// EngineOpener initializes the media engine. The engine is closed with the
// session when it implements io.Closer.
type EngineOpener func(ctx context.Context) (render.Engine, error)

// Dependencies are the collaborators a Session drives.
type Dependencies struct {
	Catalog    *cards.Catalog
	Holdings   ownership.Source
	Positions  cards.PositionSource
	OpenEngine EngineOpener
	Assets     render.AssetSource
	Options    spread.Options
	Logger     *slog.Logger
	Clock      func() time.Time
}

// Session owns one user's pass through the workflow: its collection, the
// engine handle, the command queue, and the published result.
type Session struct {
	id     string
	deps   Dependencies
	logger *slog.Logger

	mu           sync.Mutex
	stage        ProcessStage
	readiness    EngineReadiness
	engine       render.Engine
	collection   *cards.Collection
	unknown      []string
	queue        *spread.Queue
	queueVersion int
	result       *render.Result
	lastErr      error
}

// NewSession creates a session at START with an uninitialized engine.
func NewSession(deps Dependencies) *Session {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	id := uuid.NewString()
	return &Session{
		id:     id,
		deps:   deps,
		logger: logging.NewComponentLogger(deps.Logger, "workflow").With(logging.String(logging.FieldRunID, id)),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Stage returns the current process stage.
func (s *Session) Stage() ProcessStage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// Readiness returns the current engine readiness.
func (s *Session) Readiness() EngineReadiness {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readiness
}

// LastError returns the most recent failure surfaced to the user.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// UnknownTokens lists owned tokens the catalog did not recognize.
func (s *Session) UnknownTokens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.unknown...)
}

func (s *Session) advanceStage(operation string, to ProcessStage) error {
	next, ok := s.stage.next()
	if !ok || next != to {
		return stageError(operation, s.stage, to)
	}
	s.logger.Info("stage advanced",
		logging.String("from", s.stage.String()),
		logging.String(logging.FieldStage, to.String()),
		logging.String(logging.FieldEventType, "stage_advanced"),
	)
	s.stage = to
	return nil
}

func (s *Session) setReadiness(operation string, to EngineReadiness) error {
	if !s.readiness.allows(to) {
		return readinessError(operation, s.readiness, to)
	}
	s.readiness = to
	return nil
}

// Initialize opens the engine if it is not loaded yet, then loads the
// owner's collection. An engine failure resets readiness so a later call can
// retry; a fetch failure leaves the stage at START. Both are recoverable and
// are returned joined. Once the collection is loaded, a further call only
// retries the engine.
func (s *Session) Initialize(ctx context.Context, owner string) error {
	s.mu.Lock()
	if s.stage == StageConfiguring && s.readiness == EngineUninitialized {
		s.mu.Unlock()
		return s.LoadEngine(ctx)
	}
	if s.stage != StageStart {
		s.mu.Unlock()
		return stageError("initialize", s.stage, StageConfiguring)
	}
	s.lastErr = nil
	needEngine := s.readiness == EngineUninitialized
	if needEngine {
		_ = s.setReadiness("initialize", EngineLoading)
	}
	s.mu.Unlock()

	ctx = services.WithRunID(services.WithStage(ctx, StageStart.String()), s.id)
	var engineErr error
	if needEngine {
		engineErr = s.openEngine(ctx)
	}

	fetchErr := s.loadCollection(ctx, owner)

	s.mu.Lock()
	defer s.mu.Unlock()
	if fetchErr == nil {
		if err := s.advanceStage("initialize", StageConfiguring); err != nil {
			fetchErr = err
		}
	}
	s.lastErr = errors.Join(engineErr, fetchErr)
	return s.lastErr
}

// LoadEngine opens the engine after an earlier initialization failure. It
// only runs while readiness is UNINITIALIZED and does not touch the stage.
func (s *Session) LoadEngine(ctx context.Context) error {
	s.mu.Lock()
	if err := s.setReadiness("load engine", EngineLoading); err != nil {
		s.mu.Unlock()
		return err
	}
	s.lastErr = nil
	stage := s.stage
	s.mu.Unlock()

	ctx = services.WithRunID(services.WithStage(ctx, stage.String()), s.id)
	err := s.openEngine(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	return err
}

func (s *Session) openEngine(ctx context.Context) error {
	var (
		engine render.Engine
		err    error
	)
	if s.deps.OpenEngine == nil {
		err = errors.New("no engine configured")
	} else {
		engine, err = s.deps.OpenEngine(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		_ = s.setReadiness("open engine", EngineUninitialized)
		if !errors.Is(err, services.ErrEngineInit) {
			err = services.Wrap(services.ErrEngineInit, "workflow", "open engine", "", err)
		}
		logging.WarnWithContext(s.logger, "engine initialization failed", "engine_init_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check engine.ffmpeg_binary and the work directory, then retry"),
			logging.String(logging.FieldImpact, "generation is unavailable until the engine loads"),
		)
		return err
	}
	s.engine = engine
	_ = s.setReadiness("open engine", EngineLoaded)
	return nil
}

func (s *Session) loadCollection(ctx context.Context, owner string) error {
	if s.deps.Holdings == nil || s.deps.Catalog == nil {
		return services.Wrap(services.ErrConfiguration, "workflow", "load collection", "holdings source and catalog are required", nil)
	}
	holdings, err := s.deps.Holdings.Holdings(ctx, owner)
	if err != nil {
		if !errors.Is(err, services.ErrMetadataFetch) && !errors.Is(err, services.ErrValidation) {
			err = services.Wrap(services.ErrMetadataFetch, "workflow", "load collection", "", err)
		}
		return err
	}
	expansion := cards.Expand(s.deps.Catalog, holdings, s.deps.Positions)
	if len(expansion.Assets) == 0 {
		return services.Wrap(services.ErrMetadataFetch, "workflow", "load collection", "no recognized cards", ownership.ErrNoHoldings)
	}
	collection, err := cards.NewCollection(expansion.Assets, s.deps.Positions)
	if err != nil {
		return services.Wrap(services.ErrValidation, "workflow", "load collection", "", err)
	}

	s.mu.Lock()
	s.collection = collection
	s.unknown = expansion.Unknown
	s.mu.Unlock()

	attrs := []logging.Attr{
		logging.Int("cards", len(expansion.Assets)),
		logging.Int("holdings", len(holdings)),
	}
	if len(expansion.Unknown) > 0 {
		attrs = append(attrs, logging.Any("unknown_tokens", expansion.Unknown))
	}
	logging.WithContext(ctx, s.logger).Info("collection loaded", logging.Args(attrs...)...)
	return nil
}

// Collection returns the session's collection once configuring has begun.
func (s *Session) Collection() (*cards.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageConfiguring || s.collection == nil {
		return nil, services.Wrap(services.ErrInvalidTransition, "workflow", "collection", fmt.Sprintf("collection is not editable in stage %s", s.stage), nil)
	}
	return s.collection, nil
}

// ToggleFavorite toggles the favorite flag of card i.
func (s *Session) ToggleFavorite(i int) (cards.Snapshot, error) {
	collection, err := s.Collection()
	if err != nil {
		return cards.Snapshot{}, err
	}
	return collection.ToggleFavorite(i)
}

// Reroll resamples the position of card i.
func (s *Session) Reroll(i int) (cards.Snapshot, error) {
	collection, err := s.Collection()
	if err != nil {
		return cards.Snapshot{}, err
	}
	return collection.Reroll(i)
}

// RerollAll resamples every card position.
func (s *Session) RerollAll() (cards.Snapshot, error) {
	collection, err := s.Collection()
	if err != nil {
		return cards.Snapshot{}, err
	}
	return collection.RerollAll(), nil
}

// BuildCommands builds the command queue from the current snapshot. It may
// be called again after edits to rebuild.
func (s *Session) BuildCommands() (*spread.Queue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageConfiguring {
		return nil, stageError("build commands", s.stage, StageGenerating)
	}
	if !s.readiness.AtLeast(EngineLoaded) {
		return nil, readinessError("build commands", s.readiness, EngineCommandsBuilt)
	}
	snapshot := s.collection.Snapshot()
	queue, err := spread.Build(snapshot.Cards(), s.deps.Options)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "workflow", "build commands", "", err)
	}
	if err := s.setReadiness("build commands", EngineCommandsBuilt); err != nil {
		return nil, err
	}
	s.queue = queue
	s.queueVersion = snapshot.Version
	s.logger.Info("commands built",
		logging.Int("commands", queue.Len()),
		logging.Int("cards", snapshot.Len()),
		logging.Int("snapshot_version", snapshot.Version),
	)
	return queue, nil
}

// Queue returns the built command queue, if any.
func (s *Session) Queue() *spread.Queue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue
}

// Generate runs the built queue. The queue must match the current collection
// snapshot. On success the session moves to PRESENTING with the result; on
// failure the run is abandoned and the session stays in GENERATING.
func (s *Session) Generate(ctx context.Context) (render.Result, error) {
	s.mu.Lock()
	if s.readiness != EngineCommandsBuilt {
		s.mu.Unlock()
		return render.Result{}, readinessError("generate", s.readiness, EngineCommandsBuilt)
	}
	if s.stage == StageConfiguring && s.collection.Snapshot().Version != s.queueVersion {
		s.mu.Unlock()
		return render.Result{}, services.Wrap(services.ErrInvalidTransition, "workflow", "generate", "collection changed since commands were built; rebuild first", nil)
	}
	if err := s.advanceStage("generate", StageGenerating); err != nil {
		s.mu.Unlock()
		return render.Result{}, err
	}
	queue, engine := s.queue, s.engine
	s.mu.Unlock()

	ctx = services.WithRunID(services.WithStage(ctx, StageGenerating.String()), s.id)
	runner := render.NewRunner(engine, s.deps.Assets, render.WithLogger(s.deps.Logger), render.WithClock(s.deps.Clock))
	result, err := runner.Run(ctx, queue)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err
		return render.Result{}, err
	}
	if err := s.advanceStage("generate", StagePresenting); err != nil {
		return render.Result{}, err
	}
	s.result = &result
	return result, nil
}

// Result returns the published result once the session is presenting.
func (s *Session) Result() (render.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StagePresenting || s.result == nil {
		return render.Result{}, false
	}
	return *s.result, true
}

// Close releases the engine.
func (s *Session) Close() error {
	s.mu.Lock()
	engine := s.engine
	s.engine = nil
	s.mu.Unlock()
	if closer, ok := engine.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
