package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orgoj/asynclog/internal/config"
	"github.com/orgoj/asynclog/internal/logger"
	"github.com/orgoj/asynclog/internal/server"
	"github.com/orgoj/asynclog/internal/version"
)

// maxLineSize bounds a single input line read from stdin.
const maxLineSize = 1024 * 1024

func main() {
	// --- Configuration --- //
	configPath := flag.String("config", "", "Path to the configuration file (defaults are used when empty)")
	testConfigShort := flag.Bool("t", false, "Test configuration and exit (nginx style)")
	testConfigLong := flag.Bool("test", false, "Test configuration and exit (nginx style)")
	showVersion := flag.Bool("version", false, "Show version information and exit")
	loggerName := flag.String("logger", config.DefaultFileLoggerName, "Name of the logger receiving stdin lines")
	logFile := flag.String("file", "", "Bind -logger to this file before reading stdin")
	logContext := flag.String("context", "", "Context tag written with every line")
	levelName := flag.String("level", "INFO", "Level of every line (DEBUG, INFO, WARNING, ERROR, CRITICAL, NONE)")
	flag.Parse()

	// Display version information if requested
	if *showVersion {
		fmt.Println(version.VersionInfo())
		os.Exit(0)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[CRITICAL] Failed to load configuration from '%s': %v\n", *configPath, err)
			os.Exit(1)
		}
	}

	// Validate the loaded configuration
	if err := config.ValidateConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "[CRITICAL] Configuration validation failed:\n%v\n", err)
		os.Exit(1)
	}

	if *testConfigShort || *testConfigLong {
		fmt.Println("Configuration is valid.")
		os.Exit(0)
	}

	level, err := logger.ParseLevel(*levelName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[CRITICAL] %v\n", err)
		os.Exit(1)
	}

	// Initialize application logger
	appLogger := logger.GetAppLogger()
	if cfg.AppLog.Output == "stdout" {
		appLogger.SetOutput(os.Stdout)
	}
	if err := appLogger.SetLogLevelFromString(cfg.AppLog.Level); err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] Invalid log level '%s', using default: %v\n", cfg.AppLog.Level, err)
	}
	appLogger.SetShowHealth(cfg.AppLog.ShowHealthLogs)
	appLogger.Info("%s", version.VersionInfo())

	// --- Dependency Initialization --- //

	registry := logger.NewRegistry(logger.Options{
		QueueLimit:            cfg.Queue.Limit,
		FailureReportInterval: cfg.FailureReportInterval(),
		AppLogger:             appLogger,
	})
	loggerManager := logger.NewManager(registry, appLogger)

	if cfg.Defaults.Enabled {
		if err := loggerManager.InitDefaults(cfg.Defaults.DefaultFile); err != nil {
			appLogger.Fatal("Failed to initialize default loggers: %v. Exiting.", err)
		}
	}
	if err := loggerManager.InitLoggers(cfg.LogDestinations); err != nil {
		loggerManager.CloseAll()
		appLogger.Fatal("Failed to initialize one or more loggers: %v. Exiting.", err)
	}
	if *logFile != "" {
		if _, err := loggerManager.NewFileLogger(*logFile, *loggerName); err != nil {
			loggerManager.CloseAll()
			appLogger.Fatal("Failed to open '%s' for logger '%s': %v", *logFile, *loggerName, err)
		}
	}

	target, err := loggerManager.GetLogger(*loggerName)
	if err != nil {
		loggerManager.CloseAll()
		appLogger.Fatal("%v (known loggers: %v)", err, loggerManager.GetLoggerNames())
	}

	// --- Status Server --- //

	var srv *server.Server
	if cfg.Server.Enabled {
		srv = server.NewServer(server.Dependencies{
			Config:        cfg,
			LoggerManager: loggerManager,
			AppLogger:     appLogger,
		})
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				appLogger.Error("Status server error: %v", err)
			}
		}()
	}

	// --- Pump stdin until EOF or signal --- //

	done := make(chan error, 1)
	go func() {
		done <- pump(os.Stdin, target, *logContext, level)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case err := <-done:
		if err != nil {
			appLogger.Error("Reading stdin failed: %v", err)
			exitCode = 1
		}
	case sig := <-quit:
		appLogger.Info("Received %s, draining loggers.", sig)
	}

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(ctx); err != nil {
			appLogger.Warn("%v", err)
		}
		cancel()
	}

	stats := target.Stats()
	loggerManager.CloseAll()
	appLogger.Info("Logged %d lines to '%s' (dropped %d, rejected %d, write failures %d).",
		stats.Enqueued, target.Key(), stats.Dropped, stats.Rejected, stats.WriteFailures)
	os.Exit(exitCode)
}

// pump logs every line read from r to l.
func pump(r io.Reader, l logger.Logger, tag string, level logger.Level) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		l.LogMessage(scanner.Text(), tag, level)
	}
	return scanner.Err()
}
