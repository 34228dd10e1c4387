// Package history persists generation runs in a local SQLite database.
//
// Every run records the session that produced it, the card count, the command
// queue with per-command outcome, and the published artifact. The CLI uses it
// to list past runs and to show why a failed run stopped. The schema is
// versioned; a mismatched database must be cleared before use.
package history
