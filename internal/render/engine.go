package render

import "context"

// Engine is the media processing capability a Runner drives. Names are
// plain file names inside the engine's working storage.
type Engine interface {
	WriteFile(ctx context.Context, name string, data []byte) error
	Exec(ctx context.Context, args []string) (Invocation, error)
	ReadFile(ctx context.Context, name string) ([]byte, error)
	DeleteFile(ctx context.Context, name string) error
}

// Invocation is a running engine command. Progress delivers fractions in
// [0, 1] and is closed when the command exits; Wait then reports the outcome.
type Invocation interface {
	Progress() <-chan float64
	Wait() error
}

// AssetSource resolves static asset paths.
type AssetSource interface {
	Fetch(ctx context.Context, assetPath string) ([]byte, error)
}
