// Package svcreg implements a thread-safe, lazily-populated service
// registry: an in-process directory from hierarchical names to object
// instances, with create-on-miss semantics, cycle-safe recursive resolution,
// and binding-change notification.
package svcreg

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Registry is a name-to-object directory with lazy creation. A lookup miss
// resolves a concrete implementation through the configured Resolver,
// injects its dependencies (each injection is a nested lookup on the same
// call chain, so cross-object cycles are detected), runs its
// post-construction hooks, and binds the result before returning it.
//
// Creation is a global critical section: only one instance is ever under
// construction process-wide at a time. Steady-state lookups take only the
// binding table's read lock.
type Registry struct {
	resolver  Resolver
	logger    Logger
	envPrefix string

	// createMu serializes the entire create-inject-postconstruct-bind
	// sequence across all goroutines. Reentrancy within one call chain is
	// handled by chain-scoped lock ownership, see lockCreation.
	createMu sync.Mutex

	regMu         sync.RWMutex
	registrations map[string][]*registration

	listenerMu sync.RWMutex
	listeners  map[string][]BindingListener
}

// New creates an empty registry. Without WithResolver, lookups only ever
// return explicitly bound objects. The default logger is slog.Default and
// the default environment prefix is DefaultEnvPrefix.
func New(opts ...Option) *Registry {
	r := &Registry{
		logger:        slog.Default(),
		envPrefix:     DefaultEnvPrefix,
		registrations: make(map[string][]*registration),
		listeners:     make(map[string][]BindingListener),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Lookup returns the object bound under name, creating it on first use.
//
// If a registration exists, its first surviving entry is returned without
// taking the creation lock. Otherwise the name is entered into the call
// chain carried by ctx (re-entry fails with a *CycleError), the creation
// lock is acquired, and the binding table is re-checked before the Resolver
// is consulted: a provider-supplied implementation wins over direct
// instantiation. The fully constructed instance is bound, an added event is
// fired, and the instance is returned.
//
// Failures during resolution, instantiation, injection, or post-construction
// surface as a *ConfigurationError and leave the name unbound, so a later
// Lookup may retry cleanly. A name with no registration, no provider, and no
// instantiable type fails with ErrNotFound.
func (r *Registry) Lookup(ctx context.Context, name string) (any, error) {
	name = r.normalizeName(name)
	r.logger.Debug("Looking up name", "name", name)

	if obj, ok := r.registeredObject(name); ok {
		return obj, nil
	}

	chain, ctx := chainInto(ctx)
	if !chain.enter(name) {
		return nil, &CycleError{Name: name, Chain: chain.path(name)}
	}
	defer chain.exit(name)

	unlock := r.lockCreation(chain)
	defer unlock()

	// Check again: another caller may have finished creating this name
	// while we waited on the creation lock.
	if obj, ok := r.registeredObject(name); ok {
		return obj, nil
	}

	return r.create(ctx, name)
}

// create resolves, constructs, wires, and binds name. The caller holds the
// creation lock and has entered name into the chain carried by ctx.
func (r *Registry) create(ctx context.Context, name string) (any, error) {
	if r.resolver == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	instance, provided, err := r.resolver.ResolveImplementation(name)
	switch {
	case err != nil:
		return nil, &ConfigurationError{Name: name, Stage: "resolve", Cause: err}
	case provided:
		r.logger.Debug("Creating service from provider", "name", name)
	case r.resolver.CanInstantiate(name):
		r.logger.Debug("Creating service from constructor", "name", name)
		if instance, err = r.resolver.Instantiate(name); err != nil {
			return nil, &ConfigurationError{Name: name, Stage: "instantiate", Cause: err}
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	if err := r.resolver.InjectDependencies(ctx, instance, r); err != nil {
		return nil, &ConfigurationError{Name: name, Stage: "inject", Cause: err}
	}

	if err := r.resolver.RunPostConstruct(ctx, instance); err != nil {
		return nil, &ConfigurationError{Name: name, Stage: "post-construct", Cause: err}
	}

	r.Bind(ctx, name, instance)
	return instance, nil
}

// Bind appends a registration for name and synchronously notifies the
// name's subscribers with an added event, in subscription order, after the
// table mutation is durable.
func (r *Registry) Bind(ctx context.Context, name string, object any) {
	name = r.normalizeName(name)
	r.logger.Debug("Binding name", "name", name, "type", fmt.Sprintf("%T", object))

	reg := newRegistration(name, object)

	unlock := r.lockCreation(chainFrom(ctx))
	r.regMu.Lock()
	r.registrations[name] = append(r.registrations[name], reg)
	r.regMu.Unlock()
	unlock()

	r.notify(ctx, EventAdded, reg)
}

// Unbind removes every registration for name. It is a no-op when the name
// is absent. The removed event carries the first removed registration; more
// than one registration at unbind time is a reportable anomaly and is
// logged at warning level.
func (r *Registry) Unbind(ctx context.Context, name string) {
	name = r.normalizeName(name)

	unlock := r.lockCreation(chainFrom(ctx))
	r.regMu.Lock()
	removed := r.registrations[name]
	delete(r.registrations, name)
	r.regMu.Unlock()
	unlock()

	if len(removed) == 0 {
		return
	}

	r.logger.Debug("Unbound name", "name", name)
	if len(removed) > 1 {
		r.logger.Warn("More than one registration for this name", "name", name, "count", len(removed))
	}

	r.notify(ctx, EventRemoved, removed[0])
}

// ListBindings returns a snapshot of the current registrations for name, in
// insertion order. Later table mutations do not affect the returned slice.
// It fails with ErrNotFound when no registrations exist.
func (r *Registry) ListBindings(name string) ([]Binding, error) {
	name = r.normalizeName(name)

	r.regMu.RLock()
	defer r.regMu.RUnlock()

	regs := r.registrations[name]
	if len(regs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	out := make([]Binding, 0, len(regs))
	for _, reg := range regs {
		out = append(out, reg.binding())
	}
	return out, nil
}

// Subscribe registers a listener for add and remove events on exactly name.
// Name matching is exact-string; there are no wildcards or subtrees.
func (r *Registry) Subscribe(name string, listener BindingListener) error {
	if listener == nil {
		return fmt.Errorf("subscribe %q: %w", name, ErrNilListener)
	}
	name = r.normalizeName(name)

	r.listenerMu.Lock()
	defer r.listenerMu.Unlock()
	r.listeners[name] = append(r.listeners[name], listener)

	r.logger.Debug("Listener subscribed", "name", name, "listenerID", listener.ListenerID())
	return nil
}

// Unsubscribe removes the first occurrence of listener, scanning all names.
// It is idempotent: unknown listeners are ignored.
func (r *Registry) Unsubscribe(listener BindingListener) {
	r.listenerMu.Lock()
	defer r.listenerMu.Unlock()

	for name, subs := range r.listeners {
		for i, l := range subs {
			if l == listener {
				r.listeners[name] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Close clears the entire binding table under the creation lock. Listeners
// are left subscribed. Close is intended for process shutdown; the behavior
// of Lookup after Close is not a guaranteed contract.
func (r *Registry) Close() {
	r.createMu.Lock()
	defer r.createMu.Unlock()

	r.regMu.Lock()
	defer r.regMu.Unlock()

	r.logger.Debug("Registry closing")
	r.registrations = make(map[string][]*registration)
}

// registeredObject returns the first surviving registration's object.
func (r *Registry) registeredObject(name string) (any, bool) {
	r.regMu.RLock()
	defer r.regMu.RUnlock()

	if regs := r.registrations[name]; len(regs) > 0 {
		return regs[0].object, true
	}
	return nil, false
}

// lockCreation acquires the creation lock on behalf of chain. A chain that
// already holds the lock is not blocked again, which lets nested lookups
// triggered by dependency injection proceed while creation stays serialized
// across call chains. The returned func releases whatever was acquired.
func (r *Registry) lockCreation(chain *lookupChain) func() {
	if chain != nil && chain.holdsLock {
		return func() {}
	}

	r.createMu.Lock()
	if chain != nil {
		chain.holdsLock = true
	}

	return func() {
		if chain != nil {
			chain.holdsLock = false
		}
		r.createMu.Unlock()
	}
}

// notify delivers an event to name's subscribers, synchronously and in
// subscription order. A listener failure or panic is logged and does not
// block delivery to later listeners, and never rolls back the table
// mutation that preceded it.
func (r *Registry) notify(ctx context.Context, kind EventKind, reg *registration) {
	r.listenerMu.RLock()
	subs := append([]BindingListener(nil), r.listeners[reg.name]...)
	r.listenerMu.RUnlock()

	if len(subs) == 0 {
		return
	}

	event := BindingEvent{Kind: kind, Binding: reg.binding(), Time: time.Now()}
	for _, listener := range subs {
		r.deliver(ctx, listener, event)
	}
}

func (r *Registry) deliver(ctx context.Context, listener BindingListener, event BindingEvent) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Listener panicked",
				"listenerID", listener.ListenerID(), "kind", event.Kind, "name", event.Binding.Name, "panic", rec)
		}
	}()

	if err := listener.OnBindingEvent(ctx, event); err != nil {
		r.logger.Error("Listener error",
			"listenerID", listener.ListenerID(), "kind", event.Kind, "name", event.Binding.Name, "error", err)
	}
}
