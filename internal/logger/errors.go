// internal/logger/errors.go

package logger

import "errors"

var (
	// ErrLoggerNotFound is returned when a logger is requested by a name that was never registered.
	ErrLoggerNotFound = errors.New("logger not found")

	// ErrOpenFailed is returned when a destination file cannot be opened or created.
	ErrOpenFailed = errors.New("failed to open log destination")

	// ErrLoggerExists is returned when a name is already bound to a different destination.
	ErrLoggerExists = errors.New("logger name already bound to another destination")

	// ErrClosed is returned by operations that need a running logger after Close.
	ErrClosed = errors.New("logger is closed")
)
