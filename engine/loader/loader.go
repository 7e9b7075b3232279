// Package loader reads assets off the main goroutine.
//
// Jobs run on a worker pool and queue their results. Drain, called once per frame from the
// main goroutine, hands results to their handlers and fires Progress, Complete and Error,
// so nothing outside this package is ever touched from a worker.
package loader

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/fsnotify/fsnotify"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/render"
	"github.com/Carmen-Shannon/oxy-scene/engine/signal"
)

const (
	// DefaultWorkers is the worker pool size.
	DefaultWorkers = 4

	// DefaultQueueSize is the number of jobs that can wait for a worker.
	DefaultQueueSize = 64
)

type assetKind int

const (
	kindFile assetKind = iota
	kindEffect
	kindTexture
)

// request is one asset and everyone waiting for it. Requests live on the main goroutine.
type request struct {
	path     string
	kind     assetKind
	backend  loaderBackend
	handlers []func(any)
	value    any
	loaded   bool
	loading  bool
}

type result struct {
	path  string
	value any
	err   error
}

// Loader loads files, effects and textures on a worker pool. Handlers run on the goroutine
// calling Drain; a handler registered for an already loaded asset runs immediately.
type Loader struct {
	pool           worker.DynamicWorkerPool
	workers        int
	queueSize      int
	maxTextureSize int
	mipMapping     bool
	hotReload      bool

	mu      sync.Mutex
	results []result
	changed map[string]struct{}
	jobs    sync.WaitGroup

	requests map[string]*request
	pending  int
	total    int
	nextID   int

	watcher *fsnotify.Watcher
	watched map[string]bool
	stop    chan struct{}

	complete *signal.Signal[*Loader]
	progress *signal.Signal[float32]
	errs     *signal.Signal[error]

	logger *slog.Logger
}

// NewLoader creates a loader and starts its worker pool.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - *Loader: the running loader, Close it when done
//   - error: an error if hot reload is requested and the file watcher cannot start
func NewLoader(options ...LoaderBuilderOption) (*Loader, error) {
	l := &Loader{
		workers:    DefaultWorkers,
		queueSize:  DefaultQueueSize,
		mipMapping: true,
		changed:    make(map[string]struct{}),
		requests:   make(map[string]*request),
		watched:    make(map[string]bool),
		complete:   signal.New[*Loader](),
		progress:   signal.New[float32](),
		errs:       signal.New[error](),
		logger:     common.Logger("Loader"),
	}
	for _, option := range options {
		option(l)
	}

	if l.hotReload {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("start file watcher: %w", err)
		}
		l.watcher = w
		l.stop = make(chan struct{})
		go l.watch()
	}
	l.pool = worker.NewDynamicWorkerPool(l.workers, l.queueSize, time.Second)
	return l, nil
}

// Complete fires from Drain when the last pending job has been delivered.
func (l *Loader) Complete() *signal.Signal[*Loader] {
	return l.complete
}

// Progress fires from Drain with the delivered fraction of the jobs started since the last Complete.
func (l *Loader) Progress() *signal.Signal[float32] {
	return l.progress
}

// Error fires from Drain for every job that failed. The error names the path.
func (l *Loader) Error() *signal.Signal[error] {
	return l.errs
}

// Pending returns the number of jobs not yet delivered by Drain.
func (l *Loader) Pending() int {
	return l.pending
}

// LoadFile reads a file as raw bytes.
//
// Parameters:
//   - path: the file path
//   - handler: called from Drain with the file content, again after every hot reload
func (l *Loader) LoadFile(path string, handler func([]byte)) {
	l.load(path, kindFile, func(v any) { handler(v.([]byte)) })
}

// LoadEffect parses a YAML effect and the shader files it references.
//
// Parameters:
//   - path: the .yaml or .yml effect file
//   - handler: called from Drain with the effect, again after the effect or one of the
//     shaders next to it changes when hot reload is on
func (l *Loader) LoadEffect(path string, handler func(*render.Effect)) {
	l.load(path, kindEffect, func(v any) { handler(v.(*render.Effect)) })
}

// LoadTexture decodes an image into a texture. Images larger than the configured maximum
// are scaled down.
//
// Parameters:
//   - path: a PNG, JPEG, BMP, TIFF or WebP file
//   - handler: called from Drain with the texture, again after every hot reload
func (l *Loader) LoadTexture(path string, handler func(*gpu.Texture)) {
	l.load(path, kindTexture, func(v any) { handler(v.(*gpu.Texture)) })
}

func (l *Loader) load(path string, kind assetKind, handler func(any)) {
	path = filepath.Clean(path)
	req, ok := l.requests[path]
	if ok && req.kind != kind {
		l.errs.Emit(fmt.Errorf("load %s: already requested as another asset kind", path))
		return
	}
	if !ok {
		backend, err := l.resolveBackend(path, kind)
		if err != nil {
			l.errs.Emit(fmt.Errorf("load %s: %w", path, err))
			return
		}
		req = &request{path: path, kind: kind, backend: backend}
		l.requests[path] = req
		l.watchDir(filepath.Dir(path))
	}
	req.handlers = append(req.handlers, handler)

	if req.loaded {
		handler(req.value)
	}
	if !req.loaded && !req.loading {
		l.submit(req)
	}
}

func (l *Loader) submit(req *request) {
	req.loading = true
	l.pending++
	l.total++
	l.jobs.Add(1)
	id := l.nextID
	l.nextID++

	path, backend := req.path, req.backend
	l.pool.SubmitTask(worker.Task{
		ID:      id,
		Payload: path,
		Do: func() (any, error) {
			defer l.jobs.Done()
			value, err := backend.Load(path)
			l.mu.Lock()
			l.results = append(l.results, result{path: path, value: value, err: err})
			l.mu.Unlock()
			return value, err
		},
	})
}

// Wait blocks until every submitted job has queued its result. Results are still delivered
// by Drain.
func (l *Loader) Wait() {
	l.jobs.Wait()
}

// Drain delivers queued results on the calling goroutine and resubmits assets whose files
// changed. It must be called from the goroutine that owns the scene.
//
// Returns:
//   - int: the number of results delivered
func (l *Loader) Drain() int {
	l.mu.Lock()
	results := l.results
	l.results = nil
	changed := l.changed
	l.changed = make(map[string]struct{})
	l.mu.Unlock()

	for path := range changed {
		l.reload(path)
	}

	for _, r := range results {
		req := l.requests[r.path]
		req.loading = false
		l.pending--
		if r.err != nil {
			err := fmt.Errorf("load %s: %w", r.path, r.err)
			l.logger.Error("asset failed", "path", r.path, "error", r.err)
			l.errs.Emit(err)
			continue
		}
		req.value, req.loaded = r.value, true
		l.logger.Debug("asset loaded", "path", r.path)
		for _, h := range req.handlers {
			h(r.value)
		}
	}

	if len(results) > 0 && l.total > 0 {
		l.progress.Emit(float32(l.total-l.pending) / float32(l.total))
		if l.pending == 0 {
			l.total = 0
			l.complete.Emit(l)
		}
	}
	return len(results)
}

// Reload loads an asset again and delivers the new value to its handlers. Unknown paths
// and assets still loading are ignored.
//
// Parameters:
//   - path: the path the asset was requested with
func (l *Loader) Reload(path string) {
	l.reload(filepath.Clean(path))
}

func (l *Loader) reload(path string) {
	if req, ok := l.requests[path]; ok {
		if !req.loading {
			l.logger.Info("reloading asset", "path", path)
			l.submit(req)
		}
		return
	}
	// A shader change reloads every effect next to it.
	if filepath.Ext(path) != ".wgsl" {
		return
	}
	dir := filepath.Dir(path)
	for p, req := range l.requests {
		if req.kind == kindEffect && !req.loading && filepath.Dir(p) == dir {
			l.logger.Info("reloading effect", "path", p, "shader", path)
			l.submit(req)
		}
	}
}

// Close stops the file watcher and the worker pool. Jobs still queued are dropped.
func (l *Loader) Close() error {
	var err error
	if l.watcher != nil {
		close(l.stop)
		err = l.watcher.Close()
		l.watcher = nil
	}
	l.pool.Stop()
	return err
}
