package svcreg

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// daemon is a test service that records start/stop activity.
type daemon struct {
	name     string
	journal  *[]string
	startErr error
	stopErr  error
}

func (d *daemon) Start(ctx context.Context) error {
	if d.startErr != nil {
		return d.startErr
	}
	*d.journal = append(*d.journal, "start:"+d.name)
	return nil
}

func (d *daemon) Stop(ctx context.Context) error {
	*d.journal = append(*d.journal, "stop:"+d.name)
	return d.stopErr
}

func lifecycleFixture(t *testing.T, journal *[]string, daemons ...*daemon) *Registry {
	t.Helper()

	resolver := NewStaticResolver()
	for _, d := range daemons {
		d := d
		d.journal = journal
		require.NoError(t, resolver.RegisterType(d.name, func() (any, error) { return d, nil }))
	}
	return New(WithResolver(resolver), WithLogger(&testLogger{}))
}

func TestLifecycleStartAndStopOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var journal []string
	registry := lifecycleFixture(t, &journal,
		&daemon{name: "app/db"},
		&daemon{name: "app/cache"},
		&daemon{name: "app/server"},
	)

	lc := NewLifecycle(registry, "app/db", "app/cache", "app/server")
	require.NoError(t, lc.Start(ctx))

	assert.Equal(t, []string{"start:app/db", "start:app/cache", "start:app/server"}, journal)

	// Resolution through the lifecycle bound each service.
	_, err := registry.ListBindings("app/server")
	assert.NoError(t, err)

	journal = journal[:0]
	require.NoError(t, lc.Stop(ctx))
	assert.Equal(t, []string{"stop:app/server", "stop:app/cache", "stop:app/db"}, journal)
}

func TestLifecycleStartFailureRollsBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	bootFailure := errors.New("port in use")
	var journal []string
	registry := lifecycleFixture(t, &journal,
		&daemon{name: "app/db"},
		&daemon{name: "app/server", startErr: bootFailure},
	)

	lc := NewLifecycle(registry, "app/db", "app/server")
	err := lc.Start(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, bootFailure)

	assert.Equal(t, []string{"start:app/db", "stop:app/db"}, journal,
		"already-started services are stopped in reverse order")
}

func TestLifecycleResolutionFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var journal []string
	registry := lifecycleFixture(t, &journal, &daemon{name: "app/db"})

	lc := NewLifecycle(registry, "app/db", "app/ghost")
	err := lc.Start(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{"start:app/db", "stop:app/db"}, journal)
}

func TestLifecycleStopCollectsErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	stopFailure := errors.New("would not die")
	var journal []string
	registry := lifecycleFixture(t, &journal,
		&daemon{name: "app/db", stopErr: stopFailure},
		&daemon{name: "app/server"},
	)

	lc := NewLifecycle(registry, "app/db", "app/server")
	require.NoError(t, lc.Start(ctx))

	err := lc.Stop(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, stopFailure)

	assert.Contains(t, journal, "stop:app/server", "later services still stop when an earlier stop fails")
}

func TestLifecycleDoubleStartAndStop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var journal []string
	registry := lifecycleFixture(t, &journal, &daemon{name: "app/db"})

	lc := NewLifecycle(registry, "app/db")
	require.NoError(t, lc.Start(ctx))
	assert.ErrorIs(t, lc.Start(ctx), ErrLifecycleStarted)

	require.NoError(t, lc.Stop(ctx))
	assert.ErrorIs(t, lc.Stop(ctx), ErrLifecycleNotStarted)
}

func TestLifecyclePlainServicesNeedNoHooks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	resolver := NewStaticResolver()
	require.NoError(t, resolver.RegisterType("app/value", func() (any, error) { return &widget{}, nil }))
	registry := New(WithResolver(resolver), WithLogger(&testLogger{}))

	lc := NewLifecycle(registry, "app/value")
	require.NoError(t, lc.Start(ctx))
	require.NoError(t, lc.Stop(ctx))
}
