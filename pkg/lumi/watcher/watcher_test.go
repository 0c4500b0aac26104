package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultDebounce(t *testing.T) {
	w, err := New(t.TempDir(), 0, nil)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	assert.Equal(t, DefaultDebounce, w.debounce)
}

func TestWatcher_FiresOnFileCreate(t *testing.T) {
	root := t.TempDir()
	runDir := filepath.Join(root, "hps_10031")
	require.NoError(t, os.MkdirAll(runDir, 0o755))

	changed := make(chan struct{}, 1)
	w, err := New(root, 50*time.Millisecond, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	require.NoError(t, w.Start())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()

	require.NoError(t, os.WriteFile(filepath.Join(runDir, "run.evio.0"), []byte("evio"), 0o644))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("change callback never fired")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_PicksUpNewRunFolders(t *testing.T) {
	root := t.TempDir()

	changed := make(chan struct{}, 4)
	w, err := New(root, 50*time.Millisecond, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	require.NoError(t, w.Start())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	// A folder created after Start must be watched from its create event.
	runDir := filepath.Join(root, "hps_10040")
	require.NoError(t, os.MkdirAll(runDir, 0o755))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("folder create never fired the callback")
	}

	require.NoError(t, os.WriteFile(filepath.Join(runDir, "a.evio"), []byte("x"), 0o644))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("file create in new folder never fired the callback")
	}
}

func TestWatcher_StartMissingRoot(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "gone"), 0, nil)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	assert.Error(t, w.Start())
}
