// Package svcreg is an in-process service registry with lazy creation.
//
// The registry maps hierarchical names to object instances. A lookup miss
// resolves a concrete implementation through a pluggable Resolver, wires the
// instance's dependencies (nested lookups on the same call chain, so
// dependency cycles are detected and reported rather than recursing
// forever), runs its post-construction hooks, and binds the result.
// Subscribers receive added and removed events for exact names, delivered
// synchronously after the table mutation, as CloudEvents-projectable
// payloads.
//
// Basic usage:
//
//	resolver := svcreg.NewStaticResolver()
//	_ = resolver.RegisterType("app/store", func() (any, error) {
//		return NewStore(), nil
//	})
//
//	registry := svcreg.New(
//		svcreg.WithResolver(resolver),
//		svcreg.WithLogger(slog.Default()),
//	)
//	defer registry.Close()
//
//	store, err := registry.Lookup(ctx, "app/store")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Services that need dependencies implement DependencyInjector; services
// with one-time initialization implement PostConstructor. The Lifecycle
// runner bootstraps an ordered list of names and drives their Start and
// Stop hooks.
package svcreg
