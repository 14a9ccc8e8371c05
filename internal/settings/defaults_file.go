package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fleetrent/fleetrent/internal/logger"
)

// DefaultsFile loads and watches the optional defaults override file: a JSON
// document mapping topic name to field overrides, letting operators tune
// emergency defaults without a redeploy.
type DefaultsFile struct {
	path string
	dir  string
	base string
}

// NewDefaultsFile creates a loader/watcher for the given path.
func NewDefaultsFile(path string) (*DefaultsFile, error) {
	if path == "" {
		return nil, errors.New("defaults file path is required")
	}
	dir := filepath.Dir(path)
	if dir == "" {
		dir = "."
	}
	return &DefaultsFile{path: path, dir: dir, base: filepath.Base(path)}, nil
}

// Load reads and parses the overrides document. A missing file is not an
// error; it yields an empty override set.
func (d *DefaultsFile) Load() (map[string]map[string]any, error) {
	file, err := os.Open(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]map[string]any{}, nil
		}
		return nil, fmt.Errorf("open defaults file: %w", err)
	}
	defer file.Close()

	var overrides map[string]map[string]any
	if err := json.NewDecoder(file).Decode(&overrides); err != nil {
		return nil, fmt.Errorf("decode defaults file: %w", err)
	}
	return overrides, nil
}

// Watch reloads the overrides into the resolver whenever the file changes.
// It watches the parent directory (not the file) so atomic replace sequences
// (temp+rename) are still observed. Events are filtered by basename and
// debounced to avoid double reloads on write+chmod/rename cycles. The caller
// owns the context: cancel it to stop the goroutine and close the watcher.
func (d *DefaultsFile) Watch(ctx context.Context, resolver *Resolver) error {
	log := logger.WithComponent("defaults-watch")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(d.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch dir: %w", err)
	}

	onChange := func() {
		overrides, err := d.Load()
		if err != nil {
			log.Warnf("defaults reload failed: %v", err)
			return
		}
		resolver.ApplyDefaultOverrides(overrides)
	}

	go func() {
		defer watcher.Close()

		// debounce coalesces bursty fsnotify events into a single reload.
		var debounce *time.Timer
		schedule := func() {
			if debounce != nil {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
			}
			debounce = time.AfterFunc(200*time.Millisecond, onChange)
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != d.base {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Chmod|fsnotify.Remove|fsnotify.Rename) != 0 {
					schedule()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warnf("watcher error: %v", err)
			}
		}
	}()

	return nil
}
