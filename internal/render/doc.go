// Package render executes a spread command queue against a media engine.
//
// A Runner owns one run: it materializes each command's inputs into the
// engine's working storage, starts the invocation, mirrors progress into the
// queue, reads the declared output back into a run-scoped artifact Store, and
// clears working storage before the next command starts. Commands run
// strictly in order. The first failure stops the run and no result is
// published.
package render
