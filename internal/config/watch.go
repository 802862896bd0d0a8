package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Holder guards the current settings for long-running processes.
type Holder struct {
	mu       sync.RWMutex
	settings Settings
}

// NewHolder wraps s.
func NewHolder(s Settings) *Holder {
	return &Holder{settings: s}
}

// Get returns the current settings.
func (h *Holder) Get() Settings {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.settings
}

// Set replaces the current settings.
func (h *Holder) Set(s Settings) {
	h.mu.Lock()
	h.settings = s
	h.mu.Unlock()
}

// Watch reloads path into h whenever the file is written or recreated, until ctx is
// done. Invalid files are logged and ignored so the last good settings stay live.
// The directory is watched rather than the file so editors that replace the file
// on save keep triggering reloads.
func Watch(ctx context.Context, path string, h *Holder, log *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				s, err := Load(abs)
				if err != nil {
					log.Warn("settings reload rejected", "path", abs, "error", err)
					continue
				}
				h.Set(s)
				log.Info("settings reloaded", "path", abs)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("settings watcher error", "error", err)
			}
		}
	}()
	return nil
}
