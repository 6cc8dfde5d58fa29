package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/vallarta-sunsets/intake/pkg/logger"
)

// Run executes the complete intake probe.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting intake probe",
		logger.String("baseURL", config.BaseURL),
		logger.Int("bookings", config.NumBookings),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Public-form smoke checks (honeypot drop, rate limit boundary)
	if !config.SkipPublic {
		if err := probePublicForm(ctx, config); err != nil {
			return fmt.Errorf("public form probe failed: %w", err)
		}
	}

	// Step 3: Generate agent bookings
	bookings, err := generateBookings(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("booking generation failed: %w", err)
	}

	// Step 4: Submit bookings concurrently
	if err := submitBookings(ctx, config, bookings, stats); err != nil {
		return fmt.Errorf("booking submission failed: %w", err)
	}

	// Step 5: Fetch service stats and verify outcomes
	serviceStats, err := fetchServiceStats(ctx, config)
	if err != nil {
		logger.Get().Warn(ctx, "could not fetch service stats", logger.Error(err))
	}
	if err := verifyResults(ctx, config, serviceStats, stats); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	logger.Get().Info(ctx, "probe completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout, "")
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Any 200 counts as healthy (the endpoint serves Prometheus metrics).
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// probePublicForm smoke-tests the public intake path: a honeypot submission
// must be acknowledged as success without consuming quota, and repeated
// legitimate posts from this origin must eventually hit the rate limit.
func probePublicForm(ctx context.Context, config *Config) error {
	log.Println("🕵️  Probing public form...")

	client := newHTTPClient(config.Timeout, "")
	url := config.BaseURL + "/bookings"

	// Honeypot submission: the service must pretend success.
	resp, err := client.Post(ctx, url, PublicBooking{
		Email:    "probe@example.com",
		Message:  "probe honeypot",
		Honeypot: "http://spam.example",
	})
	if err != nil {
		return fmt.Errorf("honeypot submission failed: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("honeypot response read failed: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("honeypot submission got status %d, want %d", resp.StatusCode, StatusOK)
	}
	var ack PublicAck
	if err := json.Unmarshal(body, &ack); err != nil || !ack.OK {
		return fmt.Errorf("honeypot submission not acknowledged as success: %s", string(body))
	}
	log.Println("✅ Honeypot submission silently acknowledged")

	// Legitimate posts until the rate limit answers.
	limited := false
	for i := 0; i < maxPublicAttempts; i++ {
		resp, err := client.Post(ctx, url, PublicBooking{
			Name:    "Probe User",
			Email:   "probe@example.com",
			Message: "probe booking " + time.Now().Format(time.RFC3339Nano),
		})
		if err != nil {
			return fmt.Errorf("public submission failed: %w", err)
		}
		if _, err := readResponseBody(resp); err != nil {
			return fmt.Errorf("public response read failed: %w", err)
		}
		if resp.StatusCode == StatusTooManyReqs {
			log.Printf("✅ Public rate limit reached after %d accepted submissions", i)
			limited = true
			break
		}
		if resp.StatusCode != StatusOK {
			return fmt.Errorf("public submission got unexpected status %d", resp.StatusCode)
		}
	}
	if !limited {
		log.Printf("⚠️  Public rate limit not reached within %d submissions", maxPublicAttempts)
	}
	return nil
}

// fetchServiceStats retrieves the /stats snapshot.
func fetchServiceStats(ctx context.Context, config *Config) (map[string]interface{}, error) {
	client := newHTTPClient(config.Timeout, "")
	resp, err := client.Get(ctx, config.BaseURL+"/stats")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stats: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("stats endpoint returned status %d", resp.StatusCode)
	}
	var stats map[string]interface{}
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats: %w", err)
	}
	return stats, nil
}

// displayFinalStats prints the final probe statistics.
func displayFinalStats(stats *Stats) {
	var successRate, bookingsPerSecond float64

	if stats.BookingsSubmitted > 0 {
		successRate = float64(stats.BookingsCreated+stats.BookingsDuplicate) /
			float64(stats.BookingsSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		bookingsPerSecond = float64(stats.BookingsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("bookingsGenerated", stats.BookingsGenerated),
		logger.Int("bookingsSubmitted", stats.BookingsSubmitted),
		logger.Int("bookingsCreated", stats.BookingsCreated),
		logger.Int("bookingsDuplicate", stats.BookingsDuplicate),
		logger.Int("bookingsGated", stats.BookingsGated),
		logger.Int("bookingsLimited", stats.BookingsLimited),
		logger.Int("bookingsFailed", stats.BookingsFailed),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("bookingsPerSecond", bookingsPerSecond))
}
