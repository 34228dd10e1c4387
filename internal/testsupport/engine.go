package testsupport

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"spreadgen/internal/render"
)

// FakeEngine is an in-memory render.Engine. Each invocation writes its last
// argument with a payload listing the inputs present in working storage.
type FakeEngine struct {
	mu    sync.Mutex
	files map[string][]byte
	calls [][]string

	// FailAt makes the invocation with this zero-based call number fail
	// after leaving a partial output file. A negative value disables
	// failures.
	FailAt int
	// Progress is emitted on every invocation before it exits.
	Progress []float64
	// SkipOutput leaves the output file unwritten.
	SkipOutput bool
}

// NewFakeEngine returns an engine that never fails.
func NewFakeEngine() *FakeEngine {
	return &FakeEngine{
		files:    make(map[string][]byte),
		FailAt:   -1,
		Progress: []float64{0.25, 0.5, 1},
	}
}

// WriteFile stores data in working storage.
func (f *FakeEngine) WriteFile(_ context.Context, name string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[name] = slices.Clone(data)
	return nil
}

// Exec records the call and simulates the command.
func (f *FakeEngine) Exec(_ context.Context, args []string) (render.Invocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := len(f.calls)
	f.calls = append(f.calls, slices.Clone(args))

	progress := make(chan float64, len(f.Progress))
	for _, p := range f.Progress {
		progress <- p
	}
	close(progress)

	inv := &fakeInvocation{progress: progress}
	if call == f.FailAt {
		if len(args) > 0 {
			f.files[args[len(args)-1]] = []byte("partial")
		}
		inv.err = fmt.Errorf("exit status 1: simulated failure on call %d", call)
		return inv, nil
	}

	var present []string
	for i := 0; i+1 < len(args); i++ {
		if args[i] != "-i" {
			continue
		}
		name := args[i+1]
		if _, ok := f.files[name]; !ok {
			inv.err = fmt.Errorf("%s: No such file or directory", name)
			return inv, nil
		}
		present = append(present, name)
	}
	if !f.SkipOutput && len(args) > 0 {
		output := args[len(args)-1]
		f.files[output] = []byte(output + "<-" + strings.Join(present, ","))
	}
	return inv, nil
}

// ReadFile returns a file from working storage.
func (f *FakeEngine) ReadFile(_ context.Context, name string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[name]
	if !ok {
		return nil, errors.New("no such file: " + name)
	}
	return slices.Clone(data), nil
}

// DeleteFile removes a file from working storage.
func (f *FakeEngine) DeleteFile(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, name)
	return nil
}

// Calls returns the argument lists of every invocation so far.
func (f *FakeEngine) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// Files returns the names currently in working storage.
func (f *FakeEngine) Files() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.files))
	for name := range f.files {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

type fakeInvocation struct {
	progress chan float64
	err      error
}

func (i *fakeInvocation) Progress() <-chan float64 { return i.progress }

func (i *fakeInvocation) Wait() error { return i.err }

var _ render.Engine = (*FakeEngine)(nil)

// MapAssets is an in-memory render.AssetSource.
type MapAssets map[string][]byte

// Fetch returns the asset stored under assetPath.
func (m MapAssets) Fetch(_ context.Context, assetPath string) ([]byte, error) {
	data, ok := m[assetPath]
	if !ok {
		return nil, errors.New("asset not found: " + assetPath)
	}
	return data, nil
}

// EchoAssets resolves every asset path to its own bytes.
type EchoAssets struct{}

// Fetch returns assetPath as the asset content.
func (EchoAssets) Fetch(_ context.Context, assetPath string) ([]byte, error) {
	return []byte(assetPath), nil
}
