// internal/logger/interface.go

package logger

// Logger is the handle collaborators use to emit lines to a destination.
// The destination itself stays owned by the Registry, so the handle has no Close.
type Logger interface {
	// Log queues a record. It never blocks on I/O and never fails;
	// write errors are reported on the diagnostic stream by the worker.
	Log(record Record)

	// LogMessage logs a message with a context tag and level.
	LogMessage(message, context string, level Level)

	// LogLevel logs a message with an empty context.
	LogLevel(message string, level Level)

	// Info logs a message with an empty context at INFO level.
	Info(message string)

	// Flush waits until everything queued so far is on stable storage.
	Flush() error

	// Key returns the destination key (file path or ConsoleKey).
	Key() string

	// State returns the lifecycle state of the destination.
	State() State

	// Stats returns the destination's counters.
	Stats() Stats
}

// Ensure AsyncLogger implements the Logger interface.
var _ Logger = (*AsyncLogger)(nil)
