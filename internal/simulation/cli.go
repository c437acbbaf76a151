package simulation

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"meditrace/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "simulation_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the simulation tool.
func ShowHelp() {
	os.Stdout.WriteString(`MediTrace Supply-Chain Simulator
================================

Replays supply-chain scenarios against a running MediTrace service and
checks the verification verdicts.

Usage:
  go run cmd/simulate/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -scenario string
        Run a single scenario by name (default: run all)
  -workers int
        Number of concurrent scan submitters (default 4)
  -timeout duration
        HTTP request timeout (default 30s)
  -settle duration
        Wait between scan submission and verification (default 500ms)
  -log string
        Log file for simulation output (default: simulation_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Scenarios:
  authentic_journey   Factory to warehouse at road speeds; expects SAFE
  delayed_shipment    Slow but plausible transit; expects SAFE
  cloned_identifier   Two cities ten minutes apart; expects SUSPICIOUS
  burst_scans         Eleven scans inside an hour; expects SUSPICIOUS

Examples:
  # Run every scenario against a local service
  go run cmd/simulate/main.go

  # Run only the cloning scenario
  go run cmd/simulate/main.go -scenario cloned_identifier
`)
}
