package watcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"netcanvas/internal/config"
)

// DefaultDebounce is used when no debounce is configured
const DefaultDebounce = 500 * time.Millisecond

// ImportFunc re-imports one scene binding
type ImportFunc func(ctx context.Context, scene config.SceneConfig) error

// Watcher re-imports scene files when they change on disk
type Watcher struct {
	scenes   map[string]config.SceneConfig
	importFn ImportFunc
	debounce time.Duration
	ready    chan struct{}
}

// New creates a watcher for the given scene bindings. Bindings without
// Watch set are imported by ImportAll but never watched.
func New(scenes []config.SceneConfig, importFn ImportFunc) *Watcher {
	w := &Watcher{
		scenes:   make(map[string]config.SceneConfig),
		importFn: importFn,
		debounce: DefaultDebounce,
		ready:    make(chan struct{}),
	}
	for _, sc := range scenes {
		abs, err := filepath.Abs(sc.Path)
		if err != nil {
			log.Printf("Skipping scene %s: %v", sc.Path, err)
			continue
		}
		sc.Path = abs
		w.scenes[abs] = sc
	}
	return w
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// Ready is closed once the watches are in place
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// ImportAll imports every scene binding once. A failing binding does not
// stop the others.
func (w *Watcher) ImportAll(ctx context.Context) error {
	var errs []error
	for _, sc := range w.scenes {
		if err := w.importFn(ctx, sc); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sc.Path, err))
		}
	}
	return errors.Join(errs...)
}

// Watch blocks until the context is cancelled, re-importing watched
// scene files after they settle.
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	// Watch directories so files replaced by editors are still seen
	dirs := make(map[string]bool)
	for path, sc := range w.scenes {
		if !sc.Watch {
			continue
		}
		dir := filepath.Dir(path)
		if !dirs[dir] {
			if err := fsw.Add(dir); err != nil {
				log.Printf("Failed to watch directory %s: %v", dir, err)
				continue
			}
			dirs[dir] = true
		}
		log.Printf("Watching %s for map %s", path, sc.MapID)
	}
	close(w.ready)

	var mu sync.Mutex
	timers := make(map[string]*time.Timer)
	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			sc, watched := w.scenes[event.Name]
			if !watched || !sc.Watch {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			mu.Lock()
			if t, exists := timers[event.Name]; exists {
				t.Stop()
			}
			timers[event.Name] = time.AfterFunc(w.debounce, func() {
				if ctx.Err() != nil {
					return
				}
				log.Printf("Scene file changed: %s", sc.Path)
				if err := w.importFn(ctx, sc); err != nil {
					log.Printf("Failed to re-import %s: %v", sc.Path, err)
				}
			})
			mu.Unlock()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher error: %v", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
