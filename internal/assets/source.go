package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"spreadgen/internal/config"
	"spreadgen/internal/logging"
)

// Source resolves an asset path to its bytes.
type Source interface {
	Fetch(ctx context.Context, assetPath string) ([]byte, error)
}

// ErrNotFound reports an asset missing from its source.
var ErrNotFound = errors.New("asset not found")

// Dir serves assets from a local directory.
type Dir struct {
	root string
}

// NewDir constructs a directory-backed source.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Fetch reads assetPath relative to the root. The path cannot escape the root.
func (d *Dir) Fetch(ctx context.Context, assetPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleaned := path.Clean("/" + assetPath)
	data, err := os.ReadFile(filepath.Join(d.root, filepath.FromSlash(cleaned)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, cleaned)
		}
		return nil, fmt.Errorf("read asset %s: %w", cleaned, err)
	}
	return data, nil
}

// HTTP serves assets from a static file host.
type HTTP struct {
	baseURL string
	client  *http.Client
}

// NewHTTP constructs an HTTP source. A nil client uses a 60 second timeout.
func NewHTTP(baseURL string, client *http.Client) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &HTTP{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// Fetch downloads assetPath from the base URL.
func (h *HTTP) Fetch(ctx context.Context, assetPath string) ([]byte, error) {
	url := h.baseURL + path.Clean("/"+assetPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build asset request: %w", err)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch asset %s: %w", assetPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, assetPath)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("fetch asset %s: status %s: %s", assetPath, resp.Status, strings.TrimSpace(string(body)))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read asset %s: %w", assetPath, err)
	}
	return data, nil
}

// Cache memoizes another Source.
type Cache struct {
	source Source
	logger *slog.Logger

	mu    sync.Mutex
	items map[string][]byte
	bytes uint64
	hits  int
}

// NewCache wraps source with an in-memory cache.
func NewCache(source Source, logger *slog.Logger) *Cache {
	return &Cache{
		source: source,
		logger: logging.NewComponentLogger(logger, "assets"),
		items:  make(map[string][]byte),
	}
}

// Fetch returns the cached asset or loads it from the wrapped source.
func (c *Cache) Fetch(ctx context.Context, assetPath string) ([]byte, error) {
	c.mu.Lock()
	if data, ok := c.items[assetPath]; ok {
		c.hits++
		c.mu.Unlock()
		return data, nil
	}
	c.mu.Unlock()

	data, err := c.source.Fetch(ctx, assetPath)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if _, ok := c.items[assetPath]; !ok {
		c.items[assetPath] = data
		c.bytes += uint64(len(data))
	}
	total := c.bytes
	c.mu.Unlock()

	c.logger.Debug("asset cached",
		logging.String("path", assetPath),
		logging.String("size", humanize.Bytes(uint64(len(data)))),
		logging.String("cache_total", humanize.Bytes(total)),
	)
	return data, nil
}

// Stats returns the number of cached assets, their combined size, and cache hits.
func (c *Cache) Stats() (items int, bytes uint64, hits int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items), c.bytes, c.hits
}

// FromConfig selects a directory or HTTP source for the configured asset
// root and wraps it in a Cache.
func FromConfig(cfg *config.Config, logger *slog.Logger) *Cache {
	var source Source
	if cfg.AssetRootIsRemote() {
		source = NewHTTP(cfg.Paths.AssetRoot, nil)
	} else {
		source = NewDir(cfg.Paths.AssetRoot)
	}
	return NewCache(source, logger)
}
