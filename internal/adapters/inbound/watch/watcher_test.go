package watch_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/medqc/stacaudit/internal/adapters/inbound/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startWatcher(t *testing.T, path string, debounce time.Duration) (*atomic.Int32, chan struct{}) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	changed := make(chan struct{}, 16)
	done := make(chan error, 1)

	w := watch.New(path, debounce, discardLogger())
	go func() {
		done <- w.Run(ctx, func(context.Context) {
			calls.Add(1)
			changed <- struct{}{}
		})
	}()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	return &calls, changed
}

func TestWatcher_CoalescesWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7\n"), 0644))
	calls, changed := startWatcher(t, path, 150*time.Millisecond)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7\n% rev\n"), 0644))
	}

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7\n"), 0644))
	calls, _ := startWatcher(t, path, 50*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.pdf"), []byte("x"), 0644))

	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := watch.New(filepath.Join(t.TempDir(), "nope", "scene.pdf"), 0, discardLogger())

	err := w.Run(context.Background(), func(context.Context) {})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "watching")
}
