package preflight

import (
	"context"

	"spreadgen/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}

// RunAll executes every applicable check for cfg. The indexer check only runs
// when an API key is configured; offline runs supply token lists instead.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, status := range CheckSystemDeps(cfg) {
		results = append(results, status.Result())
	}
	results = append(results,
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckFreeSpace("Work directory space", cfg.Paths.WorkDir, cfg.Engine.MinFreeMiB),
		CheckTemplateAssets(ctx, cfg),
	)
	if cfg.Ownership.APIKey != "" {
		results = append(results, CheckOwnership(ctx, cfg.Ownership))
	}
	return results
}
