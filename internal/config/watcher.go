package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// FeatureSource yields the current feature toggles.
type FeatureSource interface {
	Features() Features
}

// StaticFeatures is a FeatureSource that never changes.
type StaticFeatures Features

// Features returns the toggles.
func (s StaticFeatures) Features() Features { return Features(s) }

const debounceDelay = 100 * time.Millisecond

// FeatureWatcher hot reloads the feature toggles when a features file in the
// config directory changes. Everything else in Config is fixed at startup.
type FeatureWatcher struct {
	loader    *Loader
	dir       string
	logger    *zap.Logger
	mu        sync.RWMutex
	features  Features
	callbacks []func(Features)
	watcher   *fsnotify.Watcher
	stopCh    chan struct{}
	stopOnce  sync.Once
	doneCh    chan struct{}
}

// NewFeatureWatcher starts watching dir. initial is served until the first
// successful reload.
func NewFeatureWatcher(dir string, env Environment, initial Features, logger *zap.Logger) (*FeatureWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch config directory %s: %w", dir, err)
	}

	w := &FeatureWatcher{
		loader:   NewLoader(dir, env),
		dir:      dir,
		logger:   logger,
		features: initial,
		watcher:  fsWatcher,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	go w.watchLoop()

	logger.Info("Feature hot reloading enabled", zap.String("dir", dir))
	return w, nil
}

// Features returns the current toggles.
func (w *FeatureWatcher) Features() Features {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.features
}

// OnChange registers a callback run after each effective reload.
func (w *FeatureWatcher) OnChange(callback func(Features)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Stop stops watching and waits for the watch loop to exit.
func (w *FeatureWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
	<-w.doneCh
}

func (w *FeatureWatcher) watchLoop() {
	defer close(w.doneCh)
	defer w.watcher.Close()

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 || !isFeatureFile(event.Name) {
				continue
			}
			w.logger.Debug("Feature file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()),
			)
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-w.stopCh:
			return
		}
	}
}

func (w *FeatureWatcher) reload() {
	current := w.Features()
	next, err := w.loader.LoadFeatures(current)
	if err != nil {
		w.logger.Error("Failed to reload features, keeping previous values", zap.Error(err))
		return
	}
	if next == current {
		return
	}

	w.mu.Lock()
	w.features = next
	callbacks := make([]func(Features), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	w.logger.Info("Features reloaded",
		zap.Bool("semantic_search", next.SemanticSearch),
		zap.Bool("photo_recovery", next.PhotoRecovery),
		zap.Bool("ai_instructions", next.AIInstructions),
		zap.Bool("dfs_comparison", next.DFSComparison),
	)

	for _, cb := range callbacks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					w.logger.Error("Feature callback panicked", zap.Any("panic", r))
				}
			}()
			cb(next)
		}()
	}
}

func isFeatureFile(path string) bool {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) == "features" && (ext == ".yaml" || ext == ".yml" || ext == ".json")
}
