package routemap

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/jward/routemap/internal/discover"
	"github.com/jward/routemap/internal/extract"
	"github.com/jward/routemap/internal/resolve"
)

// Engine runs the endpoint-resolution pipeline: per-file extraction, linking
// of entry points against their interfaces, and remote-client resolution.
// An Engine holds only configuration; every Scan builds its descriptors and
// records fresh, so results never leak across scans.
type Engine struct {
	workers     int
	useParallel bool
	extensions  map[string]bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the extraction worker-pool size. Values below 1 fall
// back to the number of CPUs.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithParallel controls parallel extraction. When true (default), Scan
// fans file reads and extraction out over a worker pool and aggregates
// descriptors single-threaded afterwards. Set to false for serial mode.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.useParallel = parallel
	}
}

// WithExtensions replaces the source-file extension filter (default .java).
func WithExtensions(exts ...string) Option {
	return func(e *Engine) {
		e.extensions = make(map[string]bool, len(exts))
		for _, ext := range exts {
			e.extensions[normalizeExt(ext)] = true
		}
	}
}

func normalizeExt(ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.ToLower(ext)
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		useParallel: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.extensions == nil {
		e.extensions = map[string]bool{".java": true}
	}
	return e
}

// Scan extracts every file in files and resolves the project's route table.
// The returned records are sorted by path ascending; ties keep file
// enumeration order.
//
// Per-file problems never abort the scan: unreadable files and files with no
// recognizable type declaration are dropped from the descriptor set. An
// empty file list yields an empty, valid result.
func (e *Engine) Scan(ctx context.Context, rootDir string, files []string) ([]RouteRecord, error) {
	return e.scan(ctx, files, e.extensions)
}

// ScanDirectory enumerates source files under rootDir (honoring .gitignore
// and the optional .routemap.yml discovery config) and scans them. Extensions
// declared in the config file widen the engine's filter for this scan, so a
// project can opt into extra source languages without engine options.
func (e *Engine) ScanDirectory(ctx context.Context, rootDir string) ([]RouteRecord, error) {
	cfg, err := discover.LoadConfig(rootDir)
	if err != nil {
		return nil, err
	}
	files, err := discover.Files(rootDir, cfg)
	if err != nil {
		return nil, err
	}

	exts := e.extensions
	if len(cfg.Extensions) > 0 {
		exts = make(map[string]bool, len(e.extensions)+len(cfg.Extensions))
		for ext := range e.extensions {
			exts[ext] = true
		}
		for _, ext := range cfg.Extensions {
			exts[normalizeExt(ext)] = true
		}
	}
	return e.scan(ctx, files, exts)
}

func (e *Engine) scan(ctx context.Context, files []string, extensions map[string]bool) ([]RouteRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var candidates []string
	for _, path := range files {
		if extensions[strings.ToLower(filepath.Ext(path))] {
			candidates = append(candidates, path)
		}
	}

	var descs []*extract.FileDescriptor
	if e.useParallel {
		descs = e.extractParallel(candidates)
	} else {
		descs = extractSerial(candidates)
	}

	records := resolve.Resolve(descs)
	if records == nil {
		records = []RouteRecord{}
	}
	return records, nil
}

// extractParallel fans extraction out over a worker pool. Workers write
// into disjoint slots of an index-aligned slice, so no locking is needed
// and enumeration order survives the fan-out; aggregation into the final
// descriptor set happens single-threaded afterwards.
func (e *Engine) extractParallel(paths []string) []*extract.FileDescriptor {
	if len(paths) == 0 {
		return nil
	}

	numWorkers := e.workers
	if numWorkers < 1 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(paths) {
		numWorkers = len(paths)
	}

	slots := make([]*extract.FileDescriptor, len(paths))
	workCh := make(chan int, len(paths))
	for i := range paths {
		workCh <- i
	}
	close(workCh)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workCh {
				slots[i] = extractOne(paths[i])
			}
		}()
	}
	wg.Wait()

	return compactDescriptors(slots)
}

func extractSerial(paths []string) []*extract.FileDescriptor {
	slots := make([]*extract.FileDescriptor, len(paths))
	for i, path := range paths {
		slots[i] = extractOne(path)
	}
	return compactDescriptors(slots)
}

// extractOne reads and extracts a single file. Unreadable or unscannable
// files are skipped silently, as are files that declare no recognizable type.
func extractOne(path string) *extract.FileDescriptor {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	d := extract.Extract(path, contents)
	if d == nil || d.Name == "" {
		return nil
	}
	return d
}

func compactDescriptors(slots []*extract.FileDescriptor) []*extract.FileDescriptor {
	var descs []*extract.FileDescriptor
	for _, d := range slots {
		if d != nil {
			descs = append(descs, d)
		}
	}
	return descs
}
