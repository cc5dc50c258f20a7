package svcreg

import (
	"errors"
	"fmt"
	"strings"
)

// Registry errors
var (
	// ErrNotFound indicates a name has no registration and no resolvable
	// implementation or provider exists for it.
	ErrNotFound = errors.New("name not found")

	// ErrDependencyCycle indicates a lookup re-entered a name that is already
	// being resolved within the same call chain.
	ErrDependencyCycle = errors.New("dependency cycle detected")

	// ErrConfiguration indicates a failure during instantiation, dependency
	// injection, or post-construction of a service.
	ErrConfiguration = errors.New("service configuration failed")

	// Resolver errors
	ErrNoConstructor  = errors.New("no constructor registered for name")
	ErrNilConstructor = errors.New("constructor is nil")
	ErrNilProvider    = errors.New("provider is nil")
	ErrNilListener    = errors.New("listener is nil")

	// Properties errors
	ErrPropertyNotFound      = errors.New("property not found")
	ErrUnsupportedConfigType = errors.New("unsupported configuration file type")

	// Lifecycle errors
	ErrLifecycleStarted    = errors.New("lifecycle already started")
	ErrLifecycleNotStarted = errors.New("lifecycle not started")

	// Watcher errors
	ErrWatcherStarted = errors.New("watcher already started")
)

// CycleError reports a dependency injection cycle detected during lookup.
// Chain holds every name entered by the call chain, in entry order, ending
// with the re-entered name.
type CycleError struct {
	// Name is the name whose lookup was re-entered.
	Name string

	// Chain is the ordered list of names in the cycle, e.g. ["a", "b", "a"].
	Chain []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected for %q: %s", e.Name, strings.Join(e.Chain, "->"))
}

// Is reports whether this error matches ErrDependencyCycle, so callers can
// use errors.Is without knowing the concrete type.
func (e *CycleError) Is(target error) bool {
	return target == ErrDependencyCycle
}

// ConfigurationError wraps a failure that occurred while creating a service:
// provider resolution, instantiation, dependency injection, or a
// post-construction hook. The failed name is never bound, so a later lookup
// may retry cleanly.
type ConfigurationError struct {
	// Name is the name that was being created.
	Name string

	// Stage identifies the creation step that failed:
	// "resolve", "instantiate", "inject", or "post-construct".
	Stage string

	// Cause is the underlying failure.
	Cause error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unable to configure service %q (%s): %v", e.Name, e.Stage, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}
