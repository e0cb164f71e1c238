package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-ptconv/internal/watch"
	"github.com/goliatone/go-ptconv/pkg/checkpoint"
)

func TestNewRequiresDirectory(t *testing.T) {
	_, err := watch.New("", checkpoint.NewLoaderOptions(), nil)
	require.Error(t, err)
}

func TestRunRequiresHandler(t *testing.T) {
	w, err := watch.New(t.TempDir(), checkpoint.NewLoaderOptions(), nil)
	require.NoError(t, err)

	err = w.Run(context.Background(), nil)
	require.Error(t, err)
}

func TestRunRejectsMissingDirectory(t *testing.T) {
	w, err := watch.New(filepath.Join(t.TempDir(), "absent"), checkpoint.NewLoaderOptions(), nil)
	require.NoError(t, err)

	err = w.Run(context.Background(), func(string) {})
	require.Error(t, err)
}

func TestRunReportsSettledCheckpoints(t *testing.T) {
	dir := t.TempDir()
	w, err := watch.New(dir, checkpoint.NewLoaderOptions(), nil, watch.WithSettle(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seen := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(path string) { seen <- path })
	}()

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.pt"), []byte("payload"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	select {
	case path := <-seen:
		require.Equal(t, filepath.Join(dir, "model.pt"), path)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for checkpoint event")
	}

	// The non-checkpoint file never settles into an event.
	select {
	case path := <-seen:
		t.Fatalf("unexpected extra event for %q", path)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestRunReturnsWithPendingDebounce(t *testing.T) {
	dir := t.TempDir()
	w, err := watch.New(dir, checkpoint.NewLoaderOptions(), nil, watch.WithSettle(time.Hour))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(string) {})
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pending.pt"), []byte("payload"), 0o644))
	time.Sleep(100 * time.Millisecond)

	// Cancelling while the hour-long debounce is still pending must not hang.
	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return with a pending debounce timer")
	}
}
