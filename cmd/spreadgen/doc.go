// Package main hosts the spreadgen CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration once, builds a workflow session
// for "generate", and exposes the card catalog, run history, preflight
// checks, and configuration scaffolding. Heavy lifting lives in the internal
// packages; commands here only wire them together and render output.
package main
