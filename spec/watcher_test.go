package spec

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickyhof/SchemaSpec/core"
)

func TestWatcherRebuildsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte("objects:\n  - {base: B, application: a, table: one}\n"), 0644))

	builds := make(chan *core.ServerSchema, 8)
	watcher, err := NewWatcher(path, DefaultOptions(), func(server *core.ServerSchema, err error) {
		if err != nil {
			return
		}
		select {
		case builds <- server:
		default:
		}
	}, nil)
	require.NoError(t, err)
	watcher.SetDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))
	defer watcher.Stop()

	require.NoError(t, os.WriteFile(path, []byte("objects:\n  - {base: B, application: a, table: two}\n"), 0644))

	select {
	case server := <-builds:
		assert.NotNil(t, server.Database("phabricator_a").Table("two"))
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for rebuild")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte("objects: []\n"), 0644))

	builds := make(chan struct{}, 8)
	watcher, err := NewWatcher(path, DefaultOptions(), func(*core.ServerSchema, error) {
		select {
		case builds <- struct{}{}:
		default:
		}
	}, nil)
	require.NoError(t, err)
	watcher.SetDebounce(10 * time.Millisecond)

	require.NoError(t, watcher.Start(context.Background()))
	defer watcher.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0644))

	select {
	case <-builds:
		t.Fatal("unexpected rebuild for unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherStopWithoutStart(t *testing.T) {
	watcher, err := NewWatcher(filepath.Join(t.TempDir(), "manifest.yaml"), DefaultOptions(), nil, nil)
	require.NoError(t, err)
	watcher.Stop()
}
