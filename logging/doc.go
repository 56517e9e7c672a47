// Package logging provides a minimal logging interface and adapters for the council.
//
// The Logger interface defines the leveled methods (Debug, Info, Warn, Error)
// that the dispatcher, debate controller, synthesizer and orchestrator use for
// observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping any *slog.Logger
//   - CouncilLogger with component/session context and gateway/round helpers
//   - NoOpLogger for silent operation (tests, library use)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelWarn, "text", os.Stderr)
//	c, err := council.New(gateway, agents, func(o *council.Options) { o.Logger = logger })
//
// Arguments after the message are slog style key/value pairs.
package logging
