package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Editors often write a file in several steps.
const watchDebounce = 150 * time.Millisecond

// Watch reloads the config at path whenever it changes and sends the new value
// on the returned channel. Only the latest unread Config is kept. A reload that
// fails is logged and skipped. The channel is closed when ctx is done.
func Watch(ctx context.Context, path string, log logrus.FieldLogger) (<-chan Config, error) {
	resolved, err := ResolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	// Watch the directory so the file can be created or replaced.
	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	log = log.WithField("config", resolved)
	out := make(chan Config, 1)

	go func() {
		defer close(out)
		defer func() { _ = watcher.Close() }()

		var timer *time.Timer
		var fire <-chan time.Time
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != resolved {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(watchDebounce)
				} else {
					timer.Reset(watchDebounce)
				}
				fire = timer.C

			case <-fire:
				fire = nil
				cfg, err := Load(resolved)
				if err != nil {
					log.WithError(err).Warn("config reload failed, keeping previous config")
					continue
				}
				log.Debug("config reloaded")
				publish(out, cfg)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("config watcher error")
			}
		}
	}()

	return out, nil
}

func publish(out chan Config, cfg Config) {
	select {
	case <-out:
	default:
	}
	select {
	case out <- cfg:
	default:
	}
}
