package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Names bound by the built-in destinations.
const (
	DefaultFileLoggerName = "log"
	ConsoleLoggerName     = "stdout"
)

// Config represents the application configuration
type Config struct {
	AppLog struct {
		Level          string `yaml:"level" validate:"omitempty,oneof=TRACE DEBUG INFO WARN ERROR FATAL trace debug info warn error fatal"`
		Output         string `yaml:"output" validate:"omitempty,oneof=stdout stderr"`
		ShowHealthLogs bool   `yaml:"show_health_logs"` // log every /health request
	} `yaml:"app_log"`

	Defaults struct {
		Enabled     bool   `yaml:"enabled"`
		DefaultFile string `yaml:"default_file"`
	} `yaml:"defaults"`

	Queue struct {
		Limit                 int    `yaml:"limit" validate:"gte=0"`
		FailureReportInterval string `yaml:"failure_report_interval"` // e.g. "1s", "1m"
	} `yaml:"queue"`

	Server struct {
		Enabled bool   `yaml:"enabled"`
		Host    string `yaml:"host"`
		Port    int    `yaml:"port" validate:"omitempty,min=1,max=65535"`
		Mode    string `yaml:"mode" validate:"omitempty,oneof=debug release"`
	} `yaml:"server"`

	LogDestinations []LogDestination `yaml:"log_destinations" validate:"dive"`
}

// LogDestination represents a named logging destination
type LogDestination struct {
	// Mandatory, unique identifier
	Name string `yaml:"name" validate:"required"`
	// file or console
	Type    string `yaml:"type" validate:"oneof=file console"`
	Enabled bool   `yaml:"enabled"`

	// File specific
	Path string `yaml:"path,omitempty"` // Mandatory for type: file
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.AppLog.Level = "WARN"
	cfg.AppLog.Output = "stderr"
	cfg.Defaults.Enabled = true
	cfg.Defaults.DefaultFile = "asynclog.log"
	cfg.Queue.FailureReportInterval = "1s"
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 8080
	cfg.Server.Mode = "release"
	return &cfg
}

// LoadConfig loads and validates the configuration from a file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file '%s': %w", path, err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validateConfig performs semantic validation of the configuration
func validateConfig(cfg *Config) error {
	if cfg.Defaults.Enabled && strings.TrimSpace(cfg.Defaults.DefaultFile) == "" {
		return errors.New("defaults.default_file cannot be empty when defaults are enabled")
	}

	if cfg.Queue.Limit < 0 {
		return errors.New("queue.limit cannot be negative")
	}
	if cfg.Queue.FailureReportInterval != "" {
		if _, err := ParseDuration(cfg.Queue.FailureReportInterval); err != nil {
			return fmt.Errorf("invalid queue.failure_report_interval: %w", err)
		}
	}

	if cfg.Server.Enabled && (cfg.Server.Port <= 0 || cfg.Server.Port > 65535) {
		return fmt.Errorf("invalid server.port: %d", cfg.Server.Port)
	}

	// Log Destinations validation
	destinationNames := make(map[string]bool)
	if cfg.Defaults.Enabled {
		destinationNames[DefaultFileLoggerName] = true
		destinationNames[ConsoleLoggerName] = true
	}
	for i, dest := range cfg.LogDestinations {
		if dest.Name == "" {
			return fmt.Errorf("log_destinations[%d]: name is required", i)
		}
		if destinationNames[dest.Name] {
			return fmt.Errorf("log_destinations: duplicate or reserved name '%s' found", dest.Name)
		}
		destinationNames[dest.Name] = true

		switch dest.Type {
		case "file":
			if dest.Path == "" {
				return fmt.Errorf("log_destinations[%s]: path is required for type 'file'", dest.Name)
			}
		case "console":
			if dest.Path != "" {
				return fmt.Errorf("log_destinations[%s]: path is not allowed for type 'console'", dest.Name)
			}
		default:
			return fmt.Errorf("log_destinations[%s]: unknown type '%s'", dest.Name, dest.Type)
		}
	}

	return nil
}

// ValidateConfig uses go-playground/validator for struct-level validation.
// It complements the semantic validation in validateConfig.
func ValidateConfig(cfg *Config) error {
	validate := validator.New()

	err := validate.Struct(cfg)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return err
		}
		// Translate validation errors into a more readable format
		messages := make([]string, 0, len(validationErrors))
		for _, fieldErr := range validationErrors {
			messages = append(messages, fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", fieldErr.Namespace(), fieldErr.Tag()))
		}
		return errors.New(strings.Join(messages, "; "))
	}

	// Perform additional semantic validation (that validator can't easily handle)
	return validateConfig(cfg)
}

// FailureReportInterval returns the parsed queue.failure_report_interval, or zero if unset.
func (c *Config) FailureReportInterval() time.Duration {
	if c.Queue.FailureReportInterval == "" {
		return 0
	}
	d, err := ParseDuration(c.Queue.FailureReportInterval)
	if err != nil {
		return 0
	}
	return d
}

// ParseDuration parses a duration string (e.g., "10m", "1h30m", "7d").
// Supports standard time.ParseDuration units plus 'd' for days.
// Returns an error if the format is invalid or the duration is non-positive.
func ParseDuration(durationStr string) (time.Duration, error) {
	durationStr = strings.TrimSpace(durationStr)
	if durationStr == "" {
		return 0, errors.New("duration string cannot be empty")
	}

	// Handle 'd' suffix manually
	if strings.HasSuffix(strings.ToLower(durationStr), "d") {
		numStr := strings.TrimSuffix(strings.ToLower(durationStr), "d")
		days, err := strconv.ParseInt(numStr, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number format for days in '%s': %w", durationStr, err)
		}
		if days <= 0 {
			return 0, fmt.Errorf("duration must be positive: '%s'", durationStr)
		}
		d := time.Duration(days) * 24 * time.Hour
		if d <= 0 {
			return 0, fmt.Errorf("duration %dd results in overflow", days)
		}
		return d, nil
	}

	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return 0, fmt.Errorf("invalid duration format '%s': %w", durationStr, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive: '%s'", durationStr)
	}
	return d, nil
}
