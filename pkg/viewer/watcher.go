package viewer

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// TraceChangeCallback is called when the trace file changes on disk.
type TraceChangeCallback func(path string) error

// TraceWatcher monitors a single trace file for changes. The parent
// directory is watched rather than the file itself: recorders and the
// repair tool replace the file, which breaks direct file watches.
type TraceWatcher struct {
	watcher            *fsnotify.Watcher
	tracePath          string
	stabilityThreshold time.Duration
	onChange           TraceChangeCallback
	done               chan struct{}
	debounceTimer      *time.Timer
	debounceMu         sync.Mutex
	stopOnce           sync.Once
}

// TraceWatcherConfig holds configuration for the watcher
type TraceWatcherConfig struct {
	TracePath          string
	StabilityThreshold time.Duration
	OnChange           TraceChangeCallback
}

// NewTraceWatcher creates a new trace file watcher
func NewTraceWatcher(config TraceWatcherConfig) (*TraceWatcher, error) {
	if config.TracePath == "" {
		return nil, fmt.Errorf("trace path is required")
	}

	abs, err := filepath.Abs(config.TracePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve trace path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if config.StabilityThreshold == 0 {
		config.StabilityThreshold = 100 * time.Millisecond
	}

	return &TraceWatcher{
		watcher:            watcher,
		tracePath:          abs,
		stabilityThreshold: config.StabilityThreshold,
		onChange:           config.OnChange,
		done:               make(chan struct{}),
	}, nil
}

// Start starts watching the trace file's directory
func (w *TraceWatcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.tracePath)); err != nil {
		return fmt.Errorf("failed to watch trace directory: %w", err)
	}

	go w.eventLoop()

	log.Info().
		Str("path", w.tracePath).
		Msg("Trace watcher started")

	return nil
}

// Stop stops the watcher
func (w *TraceWatcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.done)
	})

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMu.Unlock()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	log.Info().Msg("Trace watcher stopped")
	return nil
}

// eventLoop processes file system events
func (w *TraceWatcher) eventLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Watcher error")

		case <-w.done:
			return
		}
	}
}

// handleEvent filters directory events down to writes of the trace file
func (w *TraceWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.tracePath {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	w.debounceChange()
}

// debounceChange coalesces rapid writes; the callback fires once the
// file has been quiet for the stability threshold.
func (w *TraceWatcher) debounceChange() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.stabilityThreshold, func() {
		select {
		case <-w.done:
			return
		default:
		}

		if w.onChange == nil {
			return
		}
		if err := w.onChange(w.tracePath); err != nil {
			log.Error().
				Err(err).
				Str("path", w.tracePath).
				Msg("Error handling trace change")
		}
	})
}
