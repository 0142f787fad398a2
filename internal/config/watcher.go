package config

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the config file and invokes a callback with the reloaded
// configuration. Editors produce bursts of write events, so reloads are
// debounced.
type Watcher struct {
	manager      *Manager
	watcher      *fsnotify.Watcher
	onReload     func(*Config)
	debounceTime time.Duration

	mu      sync.Mutex
	pending bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher creates a watcher for the manager's config file.
func NewWatcher(manager *Manager, onReload func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		manager:      manager,
		watcher:      fsw,
		onReload:     onReload,
		debounceTime: 500 * time.Millisecond,
		ctx:          ctx,
		cancel:       cancel,
	}, nil
}

// Start begins watching. The config directory (not the file) is watched so
// that atomic rename-based saves are still observed.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.manager.configDir); err != nil {
		return fmt.Errorf("failed to watch config dir: %w", err)
	}

	w.wg.Add(2)
	go w.eventLoop()
	go w.debounceLoop()
	return nil
}

// Stop stops the watcher and waits for its goroutines.
func (w *Watcher) Stop() {
	w.cancel()
	w.watcher.Close()
	w.wg.Wait()
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()
	configPath := w.manager.GetConfigPath()

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != configPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			w.pending = true
			w.mu.Unlock()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("config watcher error: %v", err)
		}
	}
}

func (w *Watcher) debounceLoop() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.debounceTime)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.mu.Lock()
			fire := w.pending
			w.pending = false
			w.mu.Unlock()
			if !fire {
				continue
			}

			cfg, err := w.manager.Load()
			if err != nil {
				log.Printf("config reload failed: %v", err)
				continue
			}
			if w.onReload != nil {
				w.onReload(cfg)
			}
		}
	}
}
