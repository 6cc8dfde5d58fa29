package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/vallarta-sunsets/intake/internal/probe"
)

// Default configuration constants.
const (
	defaultNumBookings  = 200
	defaultDuplicateNth = 10
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 30 * time.Second
	defaultProbeTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numBookings  = flag.Int("bookings", defaultNumBookings, "Number of agent bookings to generate and submit")
		workers      = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		secret       = flag.String("secret", "", "Agent secret to send in x-agent-secret")
		duplicateNth = flag.Int("duplicate-nth", defaultDuplicateNth, "Every Nth booking replays the previous request_id")
		skipPublic   = flag.Bool("skip-public", false, "Skip the public-form smoke checks")
		logFile      = flag.String("log", "", "Log file for probe output (default: probe_log_TIMESTAMP.log)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		probe.ShowHelp()
		return
	}

	if err := probe.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultProbeTimeout)
	defer cancel()

	config := &probe.Config{
		BaseURL:      *baseURL,
		NumBookings:  *numBookings,
		Workers:      *workers,
		Timeout:      *timeout,
		AgentSecret:  *secret,
		LogFile:      *logFile,
		Verbose:      *verbose,
		SkipPublic:   *skipPublic,
		DuplicateNth: *duplicateNth,
	}

	if err := probe.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Probe failed: " + err.Error() + "\n")
		return
	}
}
