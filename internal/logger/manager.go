// internal/logger/manager.go

package logger

import (
	"fmt"
	"sync"

	"github.com/gobwas/glob"
	"github.com/orgoj/asynclog/internal/config"
)

// Manager binds logger names to destinations held by a Registry.
// Several names may share one destination; a name never moves to another destination.
type Manager struct {
	registry  *Registry
	mu        sync.RWMutex
	loggers   map[string]*AsyncLogger
	names     []string // registration order
	appLogger *AppLogger
}

// NewManager creates a new logger manager on top of registry.
// A nil registry gets a private one with default options.
func NewManager(registry *Registry, appLogger *AppLogger) *Manager {
	if appLogger == nil {
		appLogger = GetAppLogger()
	}
	if registry == nil {
		registry = NewRegistry(Options{AppLogger: appLogger})
	}
	return &Manager{
		registry:  registry,
		loggers:   make(map[string]*AsyncLogger),
		appLogger: appLogger,
	}
}

// Registry returns the registry backing the manager.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// InitDefaults registers the built-in destinations: a file logger named "log"
// writing to defaultFile and a console logger named "stdout".
func (m *Manager) InitDefaults(defaultFile string) error {
	if _, err := m.NewFileLogger(defaultFile, config.DefaultFileLoggerName); err != nil {
		return err
	}
	console, err := m.registry.Console()
	if err != nil {
		return err
	}
	return m.bind(config.ConsoleLoggerName, console)
}

// InitLoggers registers every enabled destination from the configuration.
// Failing destinations are skipped and reported together.
func (m *Manager) InitLoggers(destinations []config.LogDestination) error {
	var initErrors []error
	for _, dest := range destinations {
		if !dest.Enabled {
			continue
		}

		var err error
		switch dest.Type {
		case "file":
			_, err = m.NewFileLogger(dest.Path, dest.Name)
		case "console":
			var console *AsyncLogger
			if console, err = m.registry.Console(); err == nil {
				err = m.bind(dest.Name, console)
			}
		default:
			err = fmt.Errorf("unsupported logger type: %s", dest.Type)
		}

		if err != nil {
			m.appLogger.Error("Failed to initialize logger destination '%s' (type: %s): %v", dest.Name, dest.Type, err)
			initErrors = append(initErrors, fmt.Errorf("dest '%s': %w", dest.Name, err))
			continue
		}
		m.appLogger.Info("Initialized logger destination '%s' (type: %s)", dest.Name, dest.Type)
	}

	if len(initErrors) > 0 {
		return fmt.Errorf("failed to initialize some loggers: %v", initErrors)
	}
	return nil
}

// NewFileLogger binds name to the file destination, creating it if needed.
func (m *Manager) NewFileLogger(filename, name string) (Logger, error) {
	if name == "" {
		return nil, fmt.Errorf("file logger requires a name")
	}
	key, err := fileKey(filename)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// A refused bind must not open the file.
	if existing, ok := m.loggers[name]; ok {
		if existing.Key() != key {
			return nil, fmt.Errorf("%w: '%s' writes to '%s'", ErrLoggerExists, name, existing.Key())
		}
		return existing, nil
	}
	l, err := m.registry.GetInstance(key)
	if err != nil {
		return nil, err
	}
	m.loggers[name] = l
	m.names = append(m.names, name)
	return l, nil
}

func (m *Manager) bind(name string, l *AsyncLogger) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.loggers[name]; ok {
		if existing != l {
			return fmt.Errorf("%w: '%s' writes to '%s'", ErrLoggerExists, name, existing.Key())
		}
		return nil
	}
	m.loggers[name] = l
	m.names = append(m.names, name)
	return nil
}

// GetLogger retrieves a logger instance by name.
func (m *Manager) GetLogger(name string) (Logger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.loggers[name]
	if !ok {
		return nil, fmt.Errorf("cannot find logger '%s': %w", name, ErrLoggerNotFound)
	}
	return l, nil
}

// GetLoggerNames returns the registered names in registration order.
func (m *Manager) GetLoggerNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, len(m.names))
	copy(names, m.names)
	return names
}

// GetLoggers returns the registered loggers in the same order as GetLoggerNames.
func (m *Manager) GetLoggers() []Logger {
	m.mu.RLock()
	defer m.mu.RUnlock()
	loggers := make([]Logger, 0, len(m.names))
	for _, name := range m.names {
		loggers = append(loggers, m.loggers[name])
	}
	return loggers
}

// MatchLoggerNames returns the registered names matching a glob pattern such as "test*".
func (m *Manager) MatchLoggerNames(pattern string) ([]string, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid logger name pattern '%s': %w", pattern, err)
	}
	var matched []string
	for _, name := range m.GetLoggerNames() {
		if g.Match(name) {
			matched = append(matched, name)
		}
	}
	return matched, nil
}

// CloseAll drains and closes every destination and forgets all names.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.appLogger.Info("Shutting down... Draining loggers.")
	if err := m.registry.Close(); err != nil {
		m.appLogger.Warn("Error closing loggers: %v", err)
	}
	m.appLogger.Info("Loggers closed.")
	m.loggers = make(map[string]*AsyncLogger)
	m.names = nil
}
