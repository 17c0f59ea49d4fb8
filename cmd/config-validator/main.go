package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/orgoj/asynclog/internal/config"
)

func main() {
	// Parse command line flags
	flag.Parse()

	// Get config path from arguments
	if len(flag.Args()) < 1 {
		fmt.Println("Error: Config file path is required")
		fmt.Println("Usage: config-validator <config-file>")
		os.Exit(1)
	}
	configPath := flag.Args()[0]

	// Load and validate configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.ValidateConfig(cfg); err != nil {
		fmt.Printf("Validation error: %v\n", err)
		os.Exit(1)
	}

	// Report what would be registered
	enabled := 0
	for _, dest := range cfg.LogDestinations {
		if dest.Enabled {
			enabled++
		}
	}
	if cfg.Defaults.Enabled {
		fmt.Printf("Default loggers: %s -> %s, %s -> console\n",
			config.DefaultFileLoggerName, cfg.Defaults.DefaultFile, config.ConsoleLoggerName)
	}
	fmt.Printf("Enabled destinations: %d of %d\n", enabled, len(cfg.LogDestinations))
	if cfg.Queue.Limit == 0 {
		fmt.Println("Queue: unbounded")
	} else {
		fmt.Printf("Queue: limit %d lines per destination\n", cfg.Queue.Limit)
	}

	fmt.Println("Configuration is valid!")
}
