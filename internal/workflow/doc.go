// Package workflow gates a spread session through its lifecycle.
//
// Two coupled state tracks are kept. The process stage moves strictly forward
// from START through CONFIGURING and GENERATING to PRESENTING. Engine readiness
// moves from UNINITIALIZED through LOADING and LOADED to COMMANDS_BUILT, and
// only falls back from LOADING to UNINITIALIZED when the engine fails to open.
// A generation run starts only once commands are built from the current
// collection snapshot, and at most one run is ever in flight per session.
package workflow
