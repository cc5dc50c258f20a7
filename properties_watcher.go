package svcreg

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce coalesces the bursts of filesystem events editors and
// atomic-rename writers produce for a single logical change.
const defaultDebounce = 100 * time.Millisecond

// PropertiesWatcher keeps a properties file bound in the registry and
// re-binds it whenever the file changes on disk. Each reload is an unbind
// followed by a bind, so subscribers of the name observe a removed event and
// then an added event carrying the fresh Properties instance.
type PropertiesWatcher struct {
	registry *Registry
	name     string
	path     string
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewPropertiesWatcher creates a watcher that maintains the binding for
// name from the file at path. Call Start to load and begin watching.
func NewPropertiesWatcher(registry *Registry, name, path string) *PropertiesWatcher {
	return &PropertiesWatcher{
		registry: registry,
		name:     name,
		path:     filepath.Clean(path),
		debounce: defaultDebounce,
	}
}

// Start loads the file, binds it under the watcher's name, and begins
// watching for changes. The watch stops when ctx is cancelled or Stop is
// called.
func (pw *PropertiesWatcher) Start(ctx context.Context) error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.watcher != nil {
		return fmt.Errorf("watch %s: %w", pw.path, ErrWatcherStarted)
	}

	props, err := LoadProperties(pw.path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory rather than the file so atomic renames, which
	// replace the inode, keep being observed.
	if err := watcher.Add(filepath.Dir(pw.path)); err != nil {
		watcher.Close() //nolint:errcheck
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(pw.path), err)
	}

	pw.registry.Bind(ctx, pw.name, props)

	pw.watcher = watcher
	pw.done = make(chan struct{})
	pw.wg.Add(1)
	go pw.run(ctx, watcher, pw.done)

	return nil
}

// Stop ends the watch and waits for the watch goroutine to exit. The
// current binding is left in place.
func (pw *PropertiesWatcher) Stop() {
	pw.mu.Lock()
	watcher := pw.watcher
	done := pw.done
	pw.watcher = nil
	pw.mu.Unlock()

	if watcher == nil {
		return
	}

	close(done)
	watcher.Close() //nolint:errcheck
	pw.wg.Wait()
}

func (pw *PropertiesWatcher) run(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}) {
	defer pw.wg.Done()

	logger := pw.registry.logger

	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != pw.path {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}

			if timer == nil {
				timer = time.NewTimer(pw.debounce)
				pending = timer.C
			} else {
				timer.Reset(pw.debounce)
			}

		case <-pending:
			timer = nil
			pending = nil
			pw.reload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Error("Properties watcher error", "path", pw.path, "error", err)

		case <-ctx.Done():
			return

		case <-done:
			return
		}
	}
}

// reload re-reads the file and swaps the binding. A file that fails to
// parse leaves the previous binding untouched.
func (pw *PropertiesWatcher) reload(ctx context.Context) {
	logger := pw.registry.logger

	props, err := LoadProperties(pw.path)
	if err != nil {
		logger.Error("Failed to reload properties, keeping previous binding", "path", pw.path, "error", err)
		return
	}

	pw.registry.Unbind(ctx, pw.name)
	pw.registry.Bind(ctx, pw.name, props)
	logger.Info("Properties reloaded", "path", pw.path, "name", pw.name)
}
