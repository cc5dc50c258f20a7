package svcreg

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertiesWatcherBindsInitialFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := writeTempFile(t, "app.yaml", "greeting: hello\n")
	registry := New(WithLogger(&testLogger{}))

	watcher := NewPropertiesWatcher(registry, "app/config", path)
	require.NoError(t, watcher.Start(ctx))
	defer watcher.Stop()

	obj, err := registry.Lookup(ctx, "app/config")
	require.NoError(t, err)

	greeting, err := obj.(*Properties).String("greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", greeting)
}

func TestPropertiesWatcherRebindsOnChange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := writeTempFile(t, "app.yaml", "greeting: hello\n")
	registry := New(WithLogger(&testLogger{}))

	var mu sync.Mutex
	var kinds []EventKind
	require.NoError(t, registry.Subscribe("app/config", NewFuncListener("probe", func(_ context.Context, e BindingEvent) error {
		mu.Lock()
		defer mu.Unlock()
		kinds = append(kinds, e.Kind)
		return nil
	})))

	watcher := NewPropertiesWatcher(registry, "app/config", path)
	require.NoError(t, watcher.Start(ctx))
	defer watcher.Stop()

	require.NoError(t, os.WriteFile(path, []byte("greeting: goodbye\n"), 0o600))

	require.Eventually(t, func() bool {
		obj, err := registry.Lookup(ctx, "app/config")
		if err != nil {
			return false
		}
		greeting, err := obj.(*Properties).String("greeting")
		return err == nil && greeting == "goodbye"
	}, 5*time.Second, 20*time.Millisecond, "watcher must rebind the updated file")

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(kinds), 3)
	assert.Equal(t, EventAdded, kinds[0], "initial bind")
	assert.Equal(t, EventRemoved, kinds[1], "reload unbinds first")
	assert.Equal(t, EventAdded, kinds[2], "then binds the fresh instance")
}

func TestPropertiesWatcherKeepsBindingOnParseFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := writeTempFile(t, "app.yaml", "greeting: hello\n")
	logger := &testLogger{}
	registry := New(WithLogger(logger))

	watcher := NewPropertiesWatcher(registry, "app/config", path)
	require.NoError(t, watcher.Start(ctx))
	defer watcher.Stop()

	require.NoError(t, os.WriteFile(path, []byte("greeting: [unclosed\n"), 0o600))

	require.Eventually(t, func() bool {
		return logger.count("error") > 0
	}, 5*time.Second, 20*time.Millisecond, "parse failure must be reported")

	obj, err := registry.Lookup(ctx, "app/config")
	require.NoError(t, err)
	greeting, err := obj.(*Properties).String("greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", greeting, "previous binding stays in place")
}

func TestPropertiesWatcherStartTwice(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := writeTempFile(t, "app.yaml", "greeting: hello\n")
	registry := New(WithLogger(&testLogger{}))

	watcher := NewPropertiesWatcher(registry, "app/config", path)
	require.NoError(t, watcher.Start(ctx))
	defer watcher.Stop()

	assert.ErrorIs(t, watcher.Start(ctx), ErrWatcherStarted)
}

func TestPropertiesWatcherMissingFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	registry := New(WithLogger(&testLogger{}))
	watcher := NewPropertiesWatcher(registry, "app/config", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, watcher.Start(ctx))
}

func TestPropertiesWatcherStopIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := writeTempFile(t, "app.yaml", "greeting: hello\n")
	registry := New(WithLogger(&testLogger{}))

	watcher := NewPropertiesWatcher(registry, "app/config", path)
	require.NoError(t, watcher.Start(ctx))

	watcher.Stop()
	watcher.Stop()

	// A stopped watcher can be started again.
	require.NoError(t, watcher.Start(ctx))
	watcher.Stop()
}
