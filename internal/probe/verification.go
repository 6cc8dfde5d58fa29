package probe

import (
	"context"
	"fmt"
	"log"
)

// verifyResults checks the probe's observations against expectations.
func verifyResults(ctx context.Context, config *Config, serviceStats map[string]interface{}, stats *Stats) error {
	log.Println("🔍 Verifying results...")

	if stats.BookingsSubmitted == 0 {
		return fmt.Errorf("no bookings were submitted")
	}

	// Every submission must land in exactly one outcome bucket.
	accounted := stats.BookingsCreated + stats.BookingsDuplicate + stats.BookingsLimited + stats.BookingsFailed
	if accounted != stats.BookingsSubmitted {
		return fmt.Errorf("outcome mismatch: %d submitted but %d accounted for", stats.BookingsSubmitted, accounted)
	}

	// Replayed request ids must be answered as duplicates. Concurrent
	// submission means either copy of a pair may win the insert; the pair
	// still yields exactly one duplicate.
	if stats.BookingsDuplicate != stats.ExpectedDuplicates {
		log.Printf("⚠️  Duplicate count mismatch: observed %d, expected %d (rate-limited or failed replays can account for the gap)",
			stats.BookingsDuplicate, stats.ExpectedDuplicates)
	} else {
		log.Printf("✅ Idempotent replays verified: %d duplicates", stats.BookingsDuplicate)
	}

	if stats.BookingsLimited > 0 {
		log.Printf("ℹ️  %d submissions hit the agent rate limit", stats.BookingsLimited)
	}
	if stats.BookingsGated > 0 {
		log.Printf("ℹ️  %d low-confidence bookings were filed for clarification", stats.BookingsGated)
	}

	// The service's own lead count must cover everything this run created.
	if serviceStats != nil {
		if total, ok := serviceStats["totalLeads"].(float64); ok {
			if int(total) < stats.BookingsCreated {
				return fmt.Errorf("service reports %d leads, fewer than the %d created by this run", int(total), stats.BookingsCreated)
			}
			log.Printf("✅ Service lead count (%d) covers this run's %d created bookings", int(total), stats.BookingsCreated)
		}
	}

	log.Println("✅ Result verification completed")
	return nil
}
