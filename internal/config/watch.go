package config

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce absorbs the bursts of events editors emit on save.
const debounce = 200 * time.Millisecond

// Watch reloads the config file whenever it changes on disk and hands the
// result to onChange, so feel constants can be tuned mid-session. The
// parent directory is watched, not the file: editors typically save via
// rename, which replaces the watched inode.
//
// A reload that fails to parse or validate is logged and skipped; the
// running configuration stays as it was.
func Watch(path string, logger *slog.Logger, onChange func(*Config)) (stop func() error, err error) {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		var timer *time.Timer
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, func() {
					cfg, err := Load(path)
					if err != nil {
						logger.Warn("config reload skipped", "error", err)
						return
					}
					logger.Info("config reloaded", "path", path)
					onChange(cfg)
				})

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error", "error", err)
			}
		}
	}()

	return watcher.Close, nil
}
