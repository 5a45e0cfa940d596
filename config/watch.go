package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads a scene file whenever it is written or replaced. Each successful reload is
// delivered on the returned channel, which holds at most one pending config: a newer reload
// replaces an unread one. Files that fail to load are logged and skipped. The channel is
// closed when ctx is done.
//
// The directory is watched rather than the file so editors that save by rename keep working.
//
// Parameters:
//   - ctx: controls the watcher's lifetime
//   - path: the YAML file to watch
//
// Returns:
//   - <-chan *Config: successfully reloaded configs
//   - error: an error if the watcher could not be started
func Watch(ctx context.Context, path string) (<-chan *Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to resolve %q: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: failed to create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("config: failed to watch %q: %w", filepath.Dir(abs), err)
	}

	out := make(chan *Config, 1)
	go func() {
		defer close(out)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				cfg, err := Load(abs)
				if err != nil {
					log.Printf("[Config] Reload skipped: %v", err)
					continue
				}
				log.Printf("[Config] Reloaded %s", abs)
				deliverLatest(out, cfg)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("[Config] Watcher error: %v", err)
			}
		}
	}()
	return out, nil
}

// deliverLatest sends cfg without blocking, replacing any config still waiting in ch.
// ch must have capacity 1 and a single sender.
func deliverLatest(ch chan *Config, cfg *Config) {
	select {
	case ch <- cfg:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- cfg
}
