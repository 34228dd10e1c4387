package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"spreadgen/internal/assets"
	"spreadgen/internal/config"
	"spreadgen/internal/ownership"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies that the filesystem holding path has at least
// minMiB mebibytes available. A non-positive minimum disables the check.
func CheckFreeSpace(name, path string, minMiB int) Result {
	if minMiB <= 0 {
		return Result{Name: name, Passed: true, Optional: true, Detail: "disabled"}
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	available := stat.Bavail * uint64(stat.Bsize)
	required := uint64(minMiB) << 20
	detail := fmt.Sprintf("%s free, %s required", humanize.IBytes(available), humanize.IBytes(required))
	if available < required {
		return Result{Name: name, Detail: detail}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckTemplateAssets fetches the template background through the configured
// asset source.
func CheckTemplateAssets(ctx context.Context, cfg *config.Config) Result {
	const name = "Template assets"

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	source := assets.FromConfig(cfg, nil)
	data, err := source.Fetch(checkCtx, cfg.Template.Background)
	if err != nil {
		if errors.Is(err, assets.ErrNotFound) {
			return Result{Name: name, Detail: fmt.Sprintf("%s not found under %s", cfg.Template.Background, cfg.Paths.AssetRoot)}
		}
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", cfg.Template.Name, humanize.Bytes(uint64(len(data))))}
}

// CheckOwnership verifies the indexer is reachable and accepts the API key.
func CheckOwnership(ctx context.Context, cfg config.Ownership) Result {
	const name = "Ownership indexer"

	client, err := ownership.New(cfg)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.Ping(checkCtx); err != nil {
		if errors.Is(err, ownership.ErrUnauthorized) {
			return Result{Name: name, Detail: "auth failed (invalid api key)"}
		}
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (unreachable)"
	}
	return err.Error()
}
