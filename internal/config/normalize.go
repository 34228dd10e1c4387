package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeEngine()
	c.normalizeTemplate()
	c.normalizeOwnership()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	c.Paths.AssetRoot = strings.TrimSpace(c.Paths.AssetRoot)
	if !c.AssetRootIsRemote() {
		if c.Paths.AssetRoot, err = expandPath(c.Paths.AssetRoot); err != nil {
			return fmt.Errorf("paths.asset_root: %w", err)
		}
	} else {
		c.Paths.AssetRoot = strings.TrimRight(c.Paths.AssetRoot, "/")
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeEngine() {
	c.Engine.FFmpegBinary = strings.TrimSpace(c.Engine.FFmpegBinary)
	if c.Engine.FFmpegBinary == "" {
		c.Engine.FFmpegBinary = defaultFFmpegBinary
	}
	c.Engine.FFprobeBinary = strings.TrimSpace(c.Engine.FFprobeBinary)
	if c.Engine.FFprobeBinary == "" {
		c.Engine.FFprobeBinary = defaultFFprobeBinary
	}
	c.Engine.VideoCodec = strings.TrimSpace(c.Engine.VideoCodec)
	if c.Engine.VideoCodec == "" {
		c.Engine.VideoCodec = defaultVideoCodec
	}
	if c.Engine.ChunkSize == 0 {
		c.Engine.ChunkSize = defaultChunkSize
	}
}

// normalizeTemplate fills asset paths from the template name using the
// /templates/{name}/ naming convention.
func (c *Config) normalizeTemplate() {
	c.Template.Name = strings.TrimSpace(c.Template.Name)
	if c.Template.Name == "" {
		c.Template.Name = defaultTemplateName
	}
	base := "/templates/" + c.Template.Name + "/"
	if strings.TrimSpace(c.Template.Background) == "" {
		c.Template.Background = base + "bg_800x600.png"
	}
	if strings.TrimSpace(c.Template.HighlightUnder) == "" {
		c.Template.HighlightUnder = base + "h1_800x600.png"
	}
	if strings.TrimSpace(c.Template.HighlightOver) == "" {
		c.Template.HighlightOver = base + "h2_800x600.png"
	}
	if strings.TrimSpace(c.Template.Ambiance) == "" {
		c.Template.Ambiance = base + "ambiance.wav"
	}
}

func (c *Config) normalizeOwnership() {
	if c.Ownership.APIKey == "" {
		if value, ok := os.LookupEnv("ALCHEMY_API_KEY"); ok {
			c.Ownership.APIKey = strings.TrimSpace(value)
		}
	}
	c.Ownership.BaseURL = strings.TrimRight(strings.TrimSpace(c.Ownership.BaseURL), "/")
	if c.Ownership.BaseURL == "" {
		c.Ownership.BaseURL = defaultOwnershipBaseURL
	}
	contracts := c.Ownership.Contracts[:0]
	for _, contract := range c.Ownership.Contracts {
		if trimmed := strings.TrimSpace(contract); trimmed != "" {
			contracts = append(contracts, trimmed)
		}
	}
	c.Ownership.Contracts = contracts
	if c.Ownership.PageLimit == 0 {
		c.Ownership.PageLimit = defaultOwnershipPageLimit
	}
	if c.Ownership.TimeoutSeconds == 0 {
		c.Ownership.TimeoutSeconds = defaultOwnershipTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
