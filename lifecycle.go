// Package svcreg provides the lifecycle runner that bootstraps top-level
// services through the registry and runs their startup and shutdown hooks.
package svcreg

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Startable is an optional interface for services that need to begin
// runtime operations after they are resolved, such as opening listeners or
// spawning background goroutines.
type Startable interface {
	Start(ctx context.Context) error
}

// Stoppable is an optional interface for services that need graceful
// shutdown. Stop is called in reverse start order.
type Stoppable interface {
	Stop(ctx context.Context) error
}

// Lifecycle resolves an ordered list of names through a registry, starting
// each resolved service that implements Startable, and stops them in
// reverse order on shutdown. Resolution goes through Registry.Lookup, so
// services are lazily created, dependency-injected, and post-constructed on
// the way up.
type Lifecycle struct {
	registry *Registry
	names    []string

	mu      sync.Mutex
	started []startedService
}

type startedService struct {
	name   string
	object any
}

// NewLifecycle creates a lifecycle runner over registry for the given names
// in start order.
func NewLifecycle(registry *Registry, names ...string) *Lifecycle {
	return &Lifecycle{registry: registry, names: names}
}

// Start resolves each name in order and calls Start on services that
// implement Startable. If a resolution or start fails, services started so
// far are stopped in reverse order and the failure is returned.
func (l *Lifecycle) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.started) > 0 {
		return ErrLifecycleStarted
	}

	logger := l.registry.logger

	for _, name := range l.names {
		object, err := l.registry.Lookup(ctx, name)
		if err != nil {
			_ = l.stopLocked(ctx)
			return fmt.Errorf("failed to resolve %q: %w", name, err)
		}

		if startable, ok := object.(Startable); ok {
			logger.Debug("Starting service", "name", name)
			if err := startable.Start(ctx); err != nil {
				_ = l.stopLocked(ctx)
				return fmt.Errorf("failed to start %q: %w", name, err)
			}
		}

		l.started = append(l.started, startedService{name: name, object: object})
	}

	logger.Info("Lifecycle started", "services", len(l.started))
	return nil
}

// Stop stops started services in reverse order, collecting every stop
// error. It is a no-op if nothing was started.
func (l *Lifecycle) Stop(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.started) == 0 {
		return ErrLifecycleNotStarted
	}
	return l.stopLocked(ctx)
}

func (l *Lifecycle) stopLocked(ctx context.Context) error {
	logger := l.registry.logger

	var errs []error
	for i := len(l.started) - 1; i >= 0; i-- {
		entry := l.started[i]
		if stoppable, ok := entry.object.(Stoppable); ok {
			logger.Debug("Stopping service", "name", entry.name)
			if err := stoppable.Stop(ctx); err != nil {
				logger.Error("Failed to stop service", "name", entry.name, "error", err)
				errs = append(errs, fmt.Errorf("failed to stop %q: %w", entry.name, err))
			}
		}
	}

	l.started = nil
	return errors.Join(errs...)
}
