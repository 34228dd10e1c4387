package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"spreadgen/internal/config"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteAssets populates the config's asset root with the template files and
// one clip per card id.
func WriteAssets(t testing.TB, cfg *config.Config, cardIDs ...string) {
	t.Helper()

	root := cfg.Paths.AssetRoot
	for _, asset := range []string{
		cfg.Template.Background,
		cfg.Template.HighlightUnder,
		cfg.Template.HighlightOver,
		cfg.Template.Ambiance,
	} {
		WriteFile(t, filepath.Join(root, filepath.FromSlash(asset)), 16)
	}
	for _, id := range cardIDs {
		WriteFile(t, filepath.Join(root, "cards", id+".mp4"), 32)
	}
}
