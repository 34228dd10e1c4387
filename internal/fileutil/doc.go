// Package fileutil publishes generated artifacts to the output directory.
package fileutil
