package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Every invalid field is
// reported in the joined error.
func (c *Config) Validate() error {
	var errs []error
	errs = append(errs, c.validatePaths()...)
	errs = append(errs, c.validateEngine()...)
	errs = append(errs, c.validateOwnership()...)
	errs = append(errs, c.validateLogging()...)
	return errors.Join(errs...)
}

func (c *Config) validatePaths() []error {
	var errs []error
	if strings.TrimSpace(c.Paths.AssetRoot) == "" {
		errs = append(errs, errors.New("paths.asset_root must be set"))
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		errs = append(errs, errors.New("paths.work_dir must be set"))
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		errs = append(errs, errors.New("paths.output_dir must be set"))
	}
	return errs
}

func (c *Config) validateEngine() []error {
	var errs []error
	if c.Engine.ChunkSize < 1 || c.Engine.ChunkSize > maxChunkSize {
		errs = append(errs, fmt.Errorf("engine.chunk_size must be between 1 and %d", maxChunkSize))
	}
	if c.Engine.CRF < 0 || c.Engine.CRF > 51 {
		errs = append(errs, errors.New("engine.crf must be between 0 and 51"))
	}
	if c.Engine.MinFreeMiB < 0 {
		errs = append(errs, errors.New("engine.min_free_mib must be non-negative"))
	}
	return errs
}

func (c *Config) validateOwnership() []error {
	var errs []error
	if len(c.Ownership.Contracts) == 0 {
		errs = append(errs, errors.New("ownership.contracts must list at least one contract"))
	}
	if c.Ownership.PageLimit < 1 {
		errs = append(errs, errors.New("ownership.page_limit must be positive"))
	}
	if c.Ownership.TimeoutSeconds < 1 {
		errs = append(errs, errors.New("ownership.timeout_seconds must be positive"))
	}
	return errs
}

func (c *Config) validateLogging() []error {
	var errs []error
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level))
	}
	return errs
}
