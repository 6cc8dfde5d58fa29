package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// agentSecretHeader carries the pre-shared secret on agent requests.
const agentSecretHeader = "x-agent-secret"

// HTTPClient wraps http.Client with a timeout.
type HTTPClient struct {
	client *http.Client
	secret string
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration, secret string) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
		secret: secret,
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body. The agent secret header is
// attached when configured.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		req.Header.Set(agentSecretHeader, c.secret)
	}
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitBookings submits agent bookings concurrently using a worker pool.
func submitBookings(ctx context.Context, config *Config, bookings []AgentBooking, stats *Stats) error {
	log.Printf("📤 Submitting %d bookings with %d workers...", len(bookings), config.Workers)

	client := newHTTPClient(config.Timeout, config.AgentSecret)
	url := config.BaseURL + "/agent/bookings"

	var (
		created   int64
		duplicate int64
		gated     int64
		limited   int64
		failed    int64
		submitted int64
	)

	// lastReport holds unix nanos; workers race to report, so the advance
	// goes through CompareAndSwap and exactly one worker wins each interval.
	var lastReport atomic.Int64
	reportInterval := 1 * time.Second

	bookingChan := make(chan AgentBooking, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for booking := range bookingChan {
				select {
				case <-ctx.Done():
					return
				default:
					result, status := submitSingleBooking(ctx, client, url, booking)

					atomic.AddInt64(&submitted, 1)
					switch result {
					case "created":
						atomic.AddInt64(&created, 1)
						if status == "needs_clarification" {
							atomic.AddInt64(&gated, 1)
						}
					case "duplicate":
						atomic.AddInt64(&duplicate, 1)
					case "limited":
						atomic.AddInt64(&limited, 1)
					case "failed":
						atomic.AddInt64(&failed, 1)
					}

					now := time.Now().UnixNano()
					prev := lastReport.Load()
					if now-prev >= int64(reportInterval) && lastReport.CompareAndSwap(prev, now) {
						total := atomic.LoadInt64(&submitted)
						if config.Verbose {
							log.Printf("📊 Progress: %d/%d submitted (created: %d, duplicate: %d, limited: %d, failed: %d)",
								total, len(bookings), atomic.LoadInt64(&created), atomic.LoadInt64(&duplicate),
								atomic.LoadInt64(&limited), atomic.LoadInt64(&failed))
						} else {
							fmt.Printf("\r📤 Submitted: %d/%d", total, len(bookings))
						}
					}
				}
			}
		}()
	}

	go func() {
		defer close(bookingChan)
		for _, booking := range bookings {
			select {
			case <-ctx.Done():
				return
			case bookingChan <- booking:
			}
		}
	}()

	wg.Wait()

	if !config.Verbose {
		fmt.Println()
	}

	stats.BookingsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.BookingsCreated = int(atomic.LoadInt64(&created))
	stats.BookingsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.BookingsGated = int(atomic.LoadInt64(&gated))
	stats.BookingsLimited = int(atomic.LoadInt64(&limited))
	stats.BookingsFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`✅ Booking submission completed:
   Created: %d
   Duplicate: %d
   Needs clarification: %d
   Rate limited: %d
   Failed: %d
`, stats.BookingsCreated, stats.BookingsDuplicate, stats.BookingsGated, stats.BookingsLimited, stats.BookingsFailed)

	return nil
}

// submitSingleBooking submits one booking and classifies the outcome.
func submitSingleBooking(ctx context.Context, client *HTTPClient, url string, booking AgentBooking) (result, status string) {
	resp, err := client.Post(ctx, url, booking)
	if err != nil {
		return "failed", ""
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return "failed", ""
	}

	switch resp.StatusCode {
	case StatusCreated:
		var ack BookingAck
		if err := json.Unmarshal(body, &ack); err == nil {
			return "created", ack.Status
		}
		return "created", ""
	case StatusOK:
		var ack BookingAck
		if err := json.Unmarshal(body, &ack); err == nil && ack.IsDuplicate {
			return "duplicate", ack.Status
		}
		return "duplicate", ""
	case StatusTooManyReqs:
		return "limited", ""
	default:
		return "failed", ""
	}
}
