package probe

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/vallarta-sunsets/intake/pkg/logger"
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
		logFile = "probe_log_" + timestamp + ".log"
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

// ShowHelp prints usage information for the intake probe.
func ShowHelp() {
	os.Stdout.WriteString(`Intake Probe
============

A concurrent smoke and load tool for the booking-intent intake service.
It exercises the public form path (honeypot drop, rate limiting) and the
agent path (idempotent replay, confidence gating, quotas) against a
running instance and verifies the responses.

Usage:
  go run cmd/intake-probe/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -bookings int
        Number of agent bookings to generate and submit (default 200)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -secret string
        Agent secret to send in x-agent-secret (default empty)
  -duplicate-nth int
        Every Nth booking replays the previous request_id (default 10)
  -skip-public
        Skip the public-form smoke checks
  -log string
        Log file for probe output (default: probe_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Probe a local instance with defaults
  go run cmd/intake-probe/main.go

  # Heavier run against a deployed instance
  go run cmd/intake-probe/main.go -bookings 2000 -workers 16 -url https://intake.example.com -secret s3cret
`)
}
