package spread

import (
	"spreadgen/internal/config"
)

// Mix weights for the audio chain.
const (
	AccumulatorWeight = 1.0
	NeutralWeight     = 0.01
	FavoriteWeight    = 0.025
	BackgroundWeight  = 0.0025
)

// ResultName is the published artifact of every run.
const ResultName = "output.mp4"

// Template locates the static template assets and the favorite placement.
type Template struct {
	Background       string
	HighlightUnder   string
	HighlightOver    string
	Ambiance         string
	FavoriteX        int
	FavoriteY        int
	FavoriteRotation float64
}

// Options controls command generation.
type Options struct {
	ChunkSize  int
	VideoCodec string
	CRF        int
	Template   Template
}

// DefaultOptions returns the picnic template with an 8-card chunk bound.
func DefaultOptions() Options {
	cfg := config.Default()
	return OptionsFromConfig(&cfg)
}

// OptionsFromConfig derives builder options from configuration. Template
// asset paths left empty fall back to the picnic template.
func OptionsFromConfig(cfg *config.Config) Options {
	tmpl := cfg.Template
	name := tmpl.Name
	if name == "" {
		name = "picnic"
	}
	base := "/templates/" + name + "/"
	return Options{
		ChunkSize:  cfg.Engine.ChunkSize,
		VideoCodec: cfg.Engine.VideoCodec,
		CRF:        cfg.Engine.CRF,
		Template: Template{
			Background:       fallback(tmpl.Background, base+"bg_800x600.png"),
			HighlightUnder:   fallback(tmpl.HighlightUnder, base+"h1_800x600.png"),
			HighlightOver:    fallback(tmpl.HighlightOver, base+"h2_800x600.png"),
			Ambiance:         fallback(tmpl.Ambiance, base+"ambiance.wav"),
			FavoriteX:        tmpl.FavoriteX,
			FavoriteY:        tmpl.FavoriteY,
			FavoriteRotation: float64(tmpl.FavoriteRotation),
		},
	}
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
