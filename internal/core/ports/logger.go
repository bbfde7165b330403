// Package ports defines the core interfaces for the application.
package ports

// Logger defines the interface for logging.
//
//go:generate mockgen -source=logger.go -destination=mocks/mock_logger.go -package=mocks
type Logger interface {
	// Debug logs a diagnostic message that is hidden at the default level.
	Debug(msg string)

	// Info logs an informational message.
	Info(msg string)

	// Warn logs a warning message.
	Warn(msg string)

	// Error logs an error, including its cause chain.
	Error(err error)
}
