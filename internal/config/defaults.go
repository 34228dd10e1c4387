package config

const (
	defaultAssetRoot          = "~/.local/share/spreadgen/assets"
	defaultWorkDir            = "~/.local/share/spreadgen/work"
	defaultOutputDir          = "~/spreads"
	defaultLogDir             = "~/.local/share/spreadgen/logs"
	defaultFFmpegBinary       = "ffmpeg"
	defaultFFprobeBinary      = "ffprobe"
	defaultVideoCodec         = "libx264"
	defaultCRF                = 20
	defaultChunkSize          = 8
	defaultMinFreeMiB         = 512
	defaultTemplateName       = "picnic"
	defaultFavoriteX          = 373
	defaultFavoriteY          = 138
	defaultFavoriteRotation   = -10
	defaultOwnershipBaseURL   = "https://eth-mainnet.g.alchemy.com/nft/v3"
	defaultOwnershipPageLimit = 100
	defaultOwnershipTimeout   = 15
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"

	maxChunkSize = 32
)

var defaultContracts = []string{
	"0xA3A5C1fa196053D5DE78AcFb98238276E546064d",
	"0x750ee3529D13819E00E4e67063D6e500870d5AF3",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			AssetRoot: defaultAssetRoot,
			WorkDir:   defaultWorkDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Engine: Engine{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			VideoCodec:    defaultVideoCodec,
			CRF:           defaultCRF,
			ChunkSize:     defaultChunkSize,
			MinFreeMiB:    defaultMinFreeMiB,
		},
		Template: Template{
			Name:             defaultTemplateName,
			FavoriteX:        defaultFavoriteX,
			FavoriteY:        defaultFavoriteY,
			FavoriteRotation: defaultFavoriteRotation,
		},
		Ownership: Ownership{
			BaseURL:        defaultOwnershipBaseURL,
			Contracts:      append([]string(nil), defaultContracts...),
			PageLimit:      defaultOwnershipPageLimit,
			TimeoutSeconds: defaultOwnershipTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
