package svcreg

// Option configures a Registry during construction.
type Option func(*Registry)

// WithResolver installs the host capability used to create instances for
// names that miss the binding table. Without a resolver the registry is a
// plain bind/lookup table.
func WithResolver(resolver Resolver) Option {
	return func(r *Registry) {
		r.resolver = resolver
	}
}

// WithLogger sets the structured logger used by the registry.
// A *slog.Logger satisfies the Logger interface directly.
func WithLogger(logger Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithEnvPrefix overrides the environment prefix stripped during name
// normalization. The empty string disables translation entirely.
func WithEnvPrefix(prefix string) Option {
	return func(r *Registry) {
		r.envPrefix = prefix
	}
}
