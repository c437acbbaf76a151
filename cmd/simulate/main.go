package main

import (
	"context"
	"flag"
	"os"
	"time"

	"meditrace/internal/simulation"
)

// Default configuration constants.
const (
	defaultWorkers    = 4
	defaultTimeout    = 30 * time.Second
	defaultSettle     = 500 * time.Millisecond
	defaultRunTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		scenario = flag.String("scenario", "", "Run a single scenario by name")
		workers  = flag.Int("workers", defaultWorkers, "Number of concurrent scan submitters")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		settle   = flag.Duration("settle", defaultSettle, "Wait between submission and verification")
		logFile  = flag.String("log", "", "Log file for simulation output (default: simulation_TIMESTAMP.log)")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulation.ShowHelp()
		return
	}

	if err := simulation.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &simulation.Config{
		BaseURL:  *baseURL,
		Workers:  *workers,
		Timeout:  *timeout,
		Settle:   *settle,
		LogFile:  *logFile,
		Verbose:  *verbose,
		Scenario: *scenario,
	}

	if err := simulation.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		return
	}
}
