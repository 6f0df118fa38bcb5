package viewer

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceWatcher_RequiresPath(t *testing.T) {
	_, err := NewTraceWatcher(TraceWatcherConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trace path is required")
}

func TestTraceWatcher_StartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.json")

	watcher, err := NewTraceWatcher(TraceWatcherConfig{
		TracePath:          path,
		StabilityThreshold: 50 * time.Millisecond,
	})
	require.NoError(t, err)

	require.NoError(t, watcher.Start())
	time.Sleep(10 * time.Millisecond)
	assert.NoError(t, watcher.Stop())
}

func TestTraceWatcher_StopIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.json")

	watcher, err := NewTraceWatcher(TraceWatcherConfig{TracePath: path})
	require.NoError(t, err)
	require.NoError(t, watcher.Start())

	assert.NoError(t, watcher.Stop())
	assert.NoError(t, watcher.Stop())
}

func TestTraceWatcher_FiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.json")

	var changedPath string
	var wg sync.WaitGroup
	wg.Add(1)

	watcher, err := NewTraceWatcher(TraceWatcherConfig{
		TracePath:          path,
		StabilityThreshold: 50 * time.Millisecond,
		OnChange: func(p string) error {
			changedPath = p
			wg.Done()
			return nil
		},
	})
	require.NoError(t, err)

	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(sampleDocument), 0644))

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		assert.Equal(t, path, changedPath)
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for trace change event")
	}
}

func TestTraceWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.json")

	changeCount := 0
	var mu sync.Mutex

	watcher, err := NewTraceWatcher(TraceWatcherConfig{
		TracePath:          path,
		StabilityThreshold: 50 * time.Millisecond,
		OnChange: func(string) error {
			mu.Lock()
			changeCount++
			mu.Unlock()
			return nil
		},
	})
	require.NoError(t, err)

	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0644))
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	assert.Equal(t, 0, changeCount)
	mu.Unlock()
}

func TestTraceWatcher_Debouncing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.json")

	changeCount := 0
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(1)

	watcher, err := NewTraceWatcher(TraceWatcherConfig{
		TracePath:          path,
		StabilityThreshold: 100 * time.Millisecond,
		OnChange: func(string) error {
			mu.Lock()
			changeCount++
			if changeCount == 1 {
				wg.Done()
			}
			mu.Unlock()
			return nil
		},
	})
	require.NoError(t, err)

	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	time.Sleep(100 * time.Millisecond)

	// Make multiple rapid changes
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(sampleDocument), 0644))
		time.Sleep(10 * time.Millisecond)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		// Wait a bit more to see if more events come
		time.Sleep(200 * time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
		mu.Lock()
		assert.Equal(t, 1, changeCount)
		mu.Unlock()
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for debounced event")
	}
}
