// internal/logger/registry.go

package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// ConsoleKey is the destination key of the console logger.
// File keys are always absolute paths, so no file can take this key.
const ConsoleKey = "<stdout>"

// Registry owns every AsyncLogger of the process, at most one per destination key.
// Create one at program start and pass it to whatever needs loggers.
type Registry struct {
	mu      sync.Mutex
	loggers map[string]*AsyncLogger
	keys    []string // creation order
	closed  bool
	opts    Options
}

// NewRegistry creates an empty registry. Every logger it creates uses opts.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		loggers: make(map[string]*AsyncLogger),
		opts:    opts.withDefaults(),
	}
}

// GetInstance returns the logger for filename, opening the file in append mode
// and starting its worker on first use. Concurrent callers asking for the same
// file always get the same logger.
func (r *Registry) GetInstance(filename string) (*AsyncLogger, error) {
	key, err := fileKey(filename)
	if err != nil {
		return nil, err
	}

	return r.getOrCreate(key, func() (sink, error) {
		file, err := openLogFile(key)
		if err != nil {
			return nil, err
		}
		return file, nil
	})
}

// Console returns the logger writing to the console writer (stdout unless configured).
// Closing it never closes the underlying writer.
func (r *Registry) Console() (*AsyncLogger, error) {
	return r.getOrCreate(ConsoleKey, func() (sink, error) {
		w := r.opts.Console
		if w == nil {
			w = os.Stdout
		}
		return consoleSink{w}, nil
	})
}

func (r *Registry) getOrCreate(key string, open func() (sink, error)) (*AsyncLogger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, fmt.Errorf("registry: %w", ErrClosed)
	}
	if l, ok := r.loggers[key]; ok {
		return l, nil
	}

	s, err := open()
	if err != nil {
		return nil, err
	}
	l := newAsyncLogger(key, s, r.opts)
	r.loggers[key] = l
	r.keys = append(r.keys, key)
	r.opts.AppLogger.Debug("Registry: started logger for '%s'", key)
	return l, nil
}

// Lookup returns the logger registered under key without creating one.
// Any spelling of a file path finds its logger; ConsoleKey finds the console logger.
func (r *Registry) Lookup(key string) (*AsyncLogger, bool) {
	if key != ConsoleKey {
		var err error
		if key, err = fileKey(key); err != nil {
			return nil, false
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.loggers[key]
	return l, ok
}

// Keys returns the destination keys in creation order.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// Len returns the number of live loggers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.loggers)
}

// Close drains and closes every logger concurrently and refuses new ones afterwards.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	loggers := make([]*AsyncLogger, 0, len(r.keys))
	for _, key := range r.keys {
		loggers = append(loggers, r.loggers[key])
	}
	r.mu.Unlock()

	errs := make([]error, len(loggers))
	var wg sync.WaitGroup
	for i, l := range loggers {
		wg.Add(1)
		go func(i int, l *AsyncLogger) {
			defer wg.Done()
			errs[i] = l.Close()
		}(i, l)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// fileKey returns the registry key of a file: its cleaned absolute path.
func fileKey(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("%w: empty file name", ErrOpenFailed)
	}
	abs, err := filepath.Abs(filename)
	if err != nil {
		return "", fmt.Errorf("%w: cannot resolve %s: %v", ErrOpenFailed, filename, err)
	}
	return abs, nil
}

// openLogFile opens path for appending, creating it and its parent directory if needed.
func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: failed to create directory for %s: %v", ErrOpenFailed, path, err)
		}
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open log file %s: %v", ErrOpenFailed, path, err)
	}
	return file, nil
}

// consoleSink adapts a shared writer such as os.Stdout. It is never synced or closed.
type consoleSink struct {
	io.Writer
}

func (consoleSink) Sync() error  { return nil }
func (consoleSink) Close() error { return nil }
