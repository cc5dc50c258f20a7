package svcreg

import (
	"context"
	"fmt"
	"sync"
)

// DependencyLookup is the capability a resolver uses to fetch dependencies
// for an instance under construction. The registry itself satisfies it;
// resolvers must call it with the ctx they were handed so that nested
// lookups share the caller's chain and cross-object cycles are detected.
type DependencyLookup interface {
	Lookup(ctx context.Context, name string) (any, error)
}

// Resolver supplies the host capabilities the registry needs to create a
// service it has no registration for: finding an externally provided
// implementation, constructing a default instance, wiring the instance's
// dependencies, and running its post-construction hooks.
//
// The registry stays free of reflection; how a resolver discovers
// constructors and dependency slots is its own concern.
type Resolver interface {
	// ResolveImplementation returns a ready-made implementation for name, if
	// any provider supplies one. A provider takes precedence over direct
	// instantiation.
	ResolveImplementation(name string) (instance any, ok bool, err error)

	// CanInstantiate reports whether name identifies a directly
	// instantiable type rather than a pure contract.
	CanInstantiate(name string) bool

	// Instantiate constructs a default instance for name.
	Instantiate(name string) (any, error)

	// InjectDependencies assigns resolved objects into the instance's
	// declared dependency slots, fetching each through deps.
	InjectDependencies(ctx context.Context, instance any, deps DependencyLookup) error

	// RunPostConstruct invokes the instance's post-construction hooks once,
	// after injection.
	RunPostConstruct(ctx context.Context, instance any) error
}

// DependencyInjector is implemented by services that declare dependency
// slots. StaticResolver calls it during creation, after instantiation and
// before post-construction.
type DependencyInjector interface {
	// InjectDependencies resolves and assigns this instance's dependencies.
	// Implementations must pass ctx through to every deps.Lookup call.
	InjectDependencies(ctx context.Context, deps DependencyLookup) error
}

// PostConstructor is implemented by services that need initialization logic
// run once, immediately after their dependencies are injected.
type PostConstructor interface {
	PostConstruct(ctx context.Context) error
}

// Constructor creates a default instance of a named type.
type Constructor func() (any, error)

// Provider supplies a ready-made implementation for a named contract,
// externalizing the implementation as found-not-built.
type Provider func() (any, error)

// StaticResolver is a Resolver backed by explicit registration tables. Hosts
// register constructors for concrete types and providers for contracts at
// startup; no reflection or tag scanning is involved. Dependency injection
// and post-construction are driven by the optional DependencyInjector and
// PostConstructor interfaces on the instances themselves.
type StaticResolver struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
	providers    map[string][]Provider
}

// NewStaticResolver creates an empty resolver.
func NewStaticResolver() *StaticResolver {
	return &StaticResolver{
		constructors: make(map[string]Constructor),
		providers:    make(map[string][]Provider),
	}
}

// RegisterType registers a constructor for a directly instantiable name.
// Registering a name again replaces the previous constructor.
func (r *StaticResolver) RegisterType(name string, ctor Constructor) error {
	if ctor == nil {
		return fmt.Errorf("register type %q: %w", name, ErrNilConstructor)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[name] = ctor
	return nil
}

// RegisterProvider registers a provider for name. Multiple providers may be
// registered; resolution uses the first one registered.
func (r *StaticResolver) RegisterProvider(name string, provider Provider) error {
	if provider == nil {
		return fmt.Errorf("register provider %q: %w", name, ErrNilProvider)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = append(r.providers[name], provider)
	return nil
}

// ResolveImplementation implements Resolver using the first registered
// provider for name.
func (r *StaticResolver) ResolveImplementation(name string) (any, bool, error) {
	r.mu.RLock()
	list := r.providers[name]
	r.mu.RUnlock()

	if len(list) == 0 {
		return nil, false, nil
	}

	instance, err := list[0]()
	if err != nil {
		return nil, true, fmt.Errorf("provider for %q: %w", name, err)
	}
	return instance, true, nil
}

// CanInstantiate implements Resolver.
func (r *StaticResolver) CanInstantiate(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.constructors[name]
	return ok
}

// Instantiate implements Resolver.
func (r *StaticResolver) Instantiate(name string) (any, error) {
	r.mu.RLock()
	ctor, ok := r.constructors[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("instantiate %q: %w", name, ErrNoConstructor)
	}
	return ctor()
}

// InjectDependencies implements Resolver. Instances that do not implement
// DependencyInjector have no declared dependency slots and are left as-is.
func (r *StaticResolver) InjectDependencies(ctx context.Context, instance any, deps DependencyLookup) error {
	if injector, ok := instance.(DependencyInjector); ok {
		return injector.InjectDependencies(ctx, deps)
	}
	return nil
}

// RunPostConstruct implements Resolver.
func (r *StaticResolver) RunPostConstruct(ctx context.Context, instance any) error {
	if pc, ok := instance.(PostConstructor); ok {
		return pc.PostConstruct(ctx)
	}
	return nil
}
