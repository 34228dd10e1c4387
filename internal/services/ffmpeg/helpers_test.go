package ffmpeg

import (
	"log/slog"

	"spreadgen/internal/logging"
)

func testLogger() *slog.Logger {
	return logging.NewNop()
}
