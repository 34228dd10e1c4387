package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"spreadgen/internal/assets"
	"spreadgen/internal/cards"
	"spreadgen/internal/config"
	"spreadgen/internal/fileutil"
	"spreadgen/internal/history"
	"spreadgen/internal/logging"
	"spreadgen/internal/ownership"
	"spreadgen/internal/placement"
	"spreadgen/internal/preflight"
	"spreadgen/internal/render"
	"spreadgen/internal/services/ffmpeg"
	"spreadgen/internal/spread"
	"spreadgen/internal/workflow"
)

type generateOptions struct {
	owner         string
	tokens        string
	favorite      string
	seed          uint64
	seedSet       bool
	output        string
	chunkSize     int
	dryRun        bool
	showArgs      bool
	skipPreflight bool
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render a spread video for an owner's cards",
		Long: `Render a spread video for the cards held by --owner, or for an explicit
--tokens list such as "5:3,98,131" (token:count). With --dry-run the
command queue is printed instead of executed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.seedSet = cmd.Flags().Changed("seed")
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if opts.dryRun {
				return runDryRun(cmd, cfg, opts)
			}
			return runGenerate(cmd, ctx, cfg, logger, opts)
		},
	}

	cmd.Flags().StringVar(&opts.owner, "owner", "", "Owner address whose holdings are rendered")
	cmd.Flags().StringVar(&opts.tokens, "tokens", "", "Explicit token list (token[:count],...) instead of an owner lookup")
	cmd.Flags().StringVar(&opts.favorite, "favorite", "", "Token or card id to feature as the favorite")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Seed for card placement")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Destination file (default: output_dir/spread-<run>.mp4)")
	cmd.Flags().IntVar(&opts.chunkSize, "chunk-size", 0, "Override engine.chunk_size for this run")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print the command queue without running it")
	cmd.Flags().BoolVar(&opts.showArgs, "show-args", false, "Include ffmpeg arguments in --dry-run output")
	cmd.Flags().BoolVar(&opts.skipPreflight, "skip-preflight", false, "Skip readiness checks before rendering")
	cmd.MarkFlagsMutuallyExclusive("owner", "tokens")
	cmd.MarkFlagsOneRequired("owner", "tokens")

	return cmd
}

func holdingsSource(cfg *config.Config, logger *slog.Logger, opts generateOptions) (ownership.Source, error) {
	if strings.TrimSpace(opts.tokens) != "" {
		holdings, err := ownership.ParseTokenList(opts.tokens)
		if err != nil {
			return nil, err
		}
		return ownership.NewStatic(holdings), nil
	}
	if err := ownership.ValidateOwner(opts.owner); err != nil {
		return nil, err
	}
	return ownership.New(cfg.Ownership, ownership.WithLogger(logger))
}

func positionSampler(opts generateOptions) *placement.Sampler {
	if opts.seedSet {
		return placement.NewSampler(placement.WithSeed(opts.seed))
	}
	return placement.NewSampler()
}

func builderOptions(cfg *config.Config, opts generateOptions) spread.Options {
	built := spread.OptionsFromConfig(cfg)
	if opts.chunkSize > 0 {
		built.ChunkSize = opts.chunkSize
	}
	return built
}

// favoriteIndex finds the first card whose token or id equals ref.
func favoriteIndex(snapshot cards.Snapshot, ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	for i, card := range snapshot.Cards() {
		if card.Token == ref || strings.EqualFold(card.ID, ref) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("favorite %q is not in the collection", ref)
}

func runGenerate(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, logger *slog.Logger, opts generateOptions) error {
	runCtx := cmd.Context()
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	colorize := shouldColorize(out)

	if !opts.skipPreflight {
		if failed := preflight.Failed(preflight.RunAll(runCtx, cfg)); len(failed) > 0 {
			for _, result := range failed {
				fmt.Fprintln(errOut, renderStatusLine(result.Name, statusError, result.Detail, shouldColorize(errOut)))
			}
			return errors.New("preflight failed; fix the checks above or pass --skip-preflight")
		}
	}

	source, err := holdingsSource(cfg, logger, opts)
	if err != nil {
		return err
	}
	catalog, err := cards.DefaultCatalog()
	if err != nil {
		return err
	}

	session := workflow.NewSession(workflow.Dependencies{
		Catalog:   catalog,
		Holdings:  source,
		Positions: positionSampler(opts),
		OpenEngine: func(ctx context.Context) (render.Engine, error) {
			return ffmpeg.FromConfig(ctx, cfg, logger)
		},
		Assets:  assets.FromConfig(cfg, logger),
		Options: builderOptions(cfg, opts),
		Logger:  logger,
	})
	defer session.Close()

	if err := session.Initialize(runCtx, opts.owner); err != nil {
		return err
	}
	if unknown := session.UnknownTokens(); len(unknown) > 0 {
		fmt.Fprintln(errOut, renderStatusLine("Unknown tokens", statusWarn, strings.Join(unknown, ", "), shouldColorize(errOut)))
	}

	collection, err := session.Collection()
	if err != nil {
		return err
	}
	if opts.favorite != "" {
		index, err := favoriteIndex(collection.Snapshot(), opts.favorite)
		if err != nil {
			return err
		}
		if _, err := session.ToggleFavorite(index); err != nil {
			return err
		}
	}
	snapshot := collection.Snapshot()

	queue, err := session.BuildCommands()
	if err != nil {
		return err
	}

	return ctx.withHistory(func(store *history.Store) error {
		if abandoned, err := store.MarkAbandoned(runCtx); err != nil {
			logger.Warn("history cleanup failed", logging.Error(err))
		} else if abandoned > 0 {
			logger.Info("marked abandoned runs", logging.Int64("count", abandoned))
		}

		favorite := ""
		if i, ok := snapshot.Favorite(); ok {
			card, _ := snapshot.At(i)
			favorite = card.Name
		}
		run, err := store.Begin(runCtx, history.RunStart{
			SessionID: session.ID(),
			Owner:     opts.owner,
			CardCount: snapshot.Len(),
			Favorite:  favorite,
			Commands:  history.Titles(queue),
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Rendering %d cards in %d commands (run %d)\n", snapshot.Len(), queue.Len(), run.ID)
		stopProgress := watchQueue(runCtx, queue, errOut, isTerminal(errOut))
		result, genErr := session.Generate(runCtx)
		stopProgress()

		outcome := history.Outcome{Commands: history.CommandsFromStatus(queue.Snapshot()), Err: genErr}
		var target string
		if genErr == nil {
			target, err = writeResult(cfg, opts, session.ID(), result)
			if err != nil {
				outcome.Err = err
				genErr = err
			} else {
				outcome.OutputPath = target
				outcome.OutputBytes = int64(len(result.Data))
			}
		}
		// Interrupted runs are still recorded.
		if err := store.Finish(context.WithoutCancel(runCtx), run.ID, outcome); err != nil {
			logger.Warn("history update failed", logging.Int64("run", run.ID), logging.Error(err))
		}
		if genErr != nil {
			return genErr
		}

		fmt.Fprintln(out, renderStatusLine("Output", statusOK, target, colorize))
		fmt.Fprintln(out, renderStatusLine("Size", statusInfo, humanize.Bytes(uint64(len(result.Data))), colorize))
		fmt.Fprintln(out, renderStatusLine("Elapsed", statusInfo, formatDuration(result.Elapsed()), colorize))
		return nil
	})
}

func writeResult(cfg *config.Config, opts generateOptions, sessionID string, result render.Result) (string, error) {
	target := strings.TrimSpace(opts.output)
	if target == "" {
		short := sessionID
		if len(short) > 8 {
			short = short[:8]
		}
		target = filepath.Join(cfg.Paths.OutputDir, "spread-"+short+filepath.Ext(result.Name))
	} else {
		expanded, err := config.ExpandPath(target)
		if err != nil {
			return "", err
		}
		target = expanded
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	if err := fileutil.WriteFileAtomic(target, result.Data, 0o644); err != nil {
		return "", fmt.Errorf("write output: %w", err)
	}
	return target, nil
}

func runDryRun(cmd *cobra.Command, cfg *config.Config, opts generateOptions) error {
	runCtx := cmd.Context()
	source, err := holdingsSource(cfg, logging.NewNop(), opts)
	if err != nil {
		return err
	}
	holdings, err := source.Holdings(runCtx, opts.owner)
	if err != nil {
		return err
	}
	catalog, err := cards.DefaultCatalog()
	if err != nil {
		return err
	}
	sampler := positionSampler(opts)
	expansion := cards.Expand(catalog, holdings, sampler)
	collection, err := cards.NewCollection(expansion.Assets, sampler)
	if err != nil {
		return err
	}
	if opts.favorite != "" {
		index, err := favoriteIndex(collection.Snapshot(), opts.favorite)
		if err != nil {
			return err
		}
		if _, err := collection.ToggleFavorite(index); err != nil {
			return err
		}
	}

	queue, err := spread.Build(collection.Snapshot().Cards(), builderOptions(cfg, opts))
	if err != nil {
		return err
	}
	return printQueue(cmd.OutOrStdout(), queue, opts.showArgs)
}

func printQueue(out io.Writer, queue *spread.Queue, showArgs bool) error {
	rows := make([][]string, 0, queue.Len())
	for i, command := range queue.Commands() {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			command.Title,
			fmt.Sprintf("%d", len(command.Inputs)),
			command.Output(),
		})
	}
	fmt.Fprint(out, renderTable([]string{"#", "Command", "Inputs", "Output"}, rows, []columnAlignment{alignRight, alignLeft, alignRight, alignLeft}))
	if !showArgs {
		return nil
	}
	for i, command := range queue.Commands() {
		fmt.Fprintf(out, "\n[%d] ffmpeg %s\n", i+1, strings.Join(command.Args, " "))
	}
	return nil
}

// watchQueue renders queue progress until the returned stop function is
// called. Terminals get a live bar; other writers get one line per finished
// command.
func watchQueue(ctx context.Context, queue *spread.Queue, out io.Writer, live bool) func() {
	done := make(chan struct{})
	finished := make(chan struct{})
	reporter := newProgressReporter(out, live)

	go func() {
		defer close(finished)
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			reporter.update(queue)
			select {
			case <-done:
				reporter.update(queue)
				reporter.finish()
				return
			case <-ctx.Done():
				reporter.finish()
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}
