// Package services defines shared utilities consumed by the generation
// workflow and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, workflow stages, and the command
//     currently executing so log lines can be correlated across a run.
//   - Structured error markers plus the Wrap helper that separate recoverable
//     boundary failures (metadata fetch, engine initialization) from fatal
//     run aborts (artifact resolution, invocation failures).
//
// Use these helpers when wiring new workflow logic so error classification and
// observability stay uniform across the pipeline.
package services
