// Package ffmpeg runs spread commands through the ffmpeg command-line tool.
//
// An Engine owns a private run directory under the configured work directory
// and holds an exclusive lock on that work directory for its lifetime, so two
// generation runs cannot share working storage. Named-buffer operations map to
// files in the run directory. Exec launches ffmpeg with machine-readable
// progress on stdout and converts out_time into a completion fraction using
// the probed duration of the command's first timed input.
package ffmpeg
