// Package preflight provides readiness checks for the binaries, directories,
// and remote services spreadgen depends on.
//
// The CLI "spreadgen preflight" command prints every check. The generate
// command runs RunAll before opening a session and refuses to start when a
// required check fails, so a run never dies halfway on a missing binary or a
// full disk.
package preflight
