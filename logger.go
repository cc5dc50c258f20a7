package svcreg

// Logger defines the interface for structured registry logging.
// It uses variadic key-value pairs:
//
//	logger.Debug("Looking up name", "name", name)
//
// and is satisfied directly by *slog.Logger, as well as by adapters over
// logrus, zap, and similar structured logging libraries.
type Logger interface {
	// Info logs an informational message with optional key-value pairs.
	Info(msg string, args ...any)

	// Error logs an error message with optional key-value pairs.
	Error(msg string, args ...any)

	// Warn logs a warning message with optional key-value pairs.
	// The registry uses this for reportable anomalies, such as unbinding a
	// name that carried more than one registration.
	Warn(msg string, args ...any)

	// Debug logs a debug message with optional key-value pairs.
	// Lookup, bind, and unbind activity is logged at this level.
	Debug(msg string, args ...any)
}
