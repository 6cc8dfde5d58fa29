package probe

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/google/uuid"
	"github.com/vallarta-sunsets/intake/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	shapeDivisor       = 6
)

// Constants for the synthetic confidence distribution. Most agents are
// confident; a minority falls below the clarification gate.
const (
	confidentMin   = 0.75
	confidentRange = 0.24
	unsureMin      = 0.30
	unsureRange    = 0.39
)

// Booking shape cases.
const (
	caseTargeted       = 0
	caseAreaOnly       = 1
	caseAreaCategory   = 2
	caseUnsure         = 3
	caseBare           = 4
	caseNamedUser      = 5
)

var probeAreas = []string{"marina", "centro", "zona romantica", "conchas chinas"}
var probeCategories = []string{"tours", "dining", "cruises", "wellness"}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func pick(list []string) string {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(list))))
	return list[n.Int64()]
}

// generateBookings creates the requested number of agent bookings. Every
// config.DuplicateNth booking reuses the previous booking's request_id so the
// run exercises the idempotent replay path; the expected replay count is
// recorded on stats. Agent ids rotate per batch to stay under each agent's
// hourly quota.
func generateBookings(ctx context.Context, config *Config, stats *Stats) ([]AgentBooking, error) {
	logger.Get().Info(ctx, "generating agent bookings", logger.Int("numBookings", config.NumBookings))

	bookings := make([]AgentBooking, 0, config.NumBookings)
	expectedDuplicates := 0
	batchAgent := ""

	for i := 0; i < config.NumBookings; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if i%agentBatchSize == 0 {
			batchAgent = "probe-agent-" + strconv.Itoa(i/agentBatchSize) + "-" + uuid.New().String()[:8]
		}

		if config.DuplicateNth > 0 && i > 0 && i%config.DuplicateNth == 0 {
			replay := bookings[len(bookings)-1]
			replay.AgentID = batchAgent
			bookings = append(bookings, replay)
			expectedDuplicates++
			continue
		}

		bookings = append(bookings, generateSingleBooking(batchAgent))
	}

	stats.BookingsGenerated = len(bookings)
	stats.ExpectedDuplicates = expectedDuplicates
	logger.Get().Info(ctx, "generated bookings successfully",
		logger.Int("count", len(bookings)),
		logger.Int("expectedDuplicates", expectedDuplicates))
	return bookings, nil
}

// generateSingleBooking creates one booking with a varied shape.
func generateSingleBooking(agentID string) AgentBooking {
	b := AgentBooking{
		AgentID:   agentID,
		RequestID: uuid.New().String(),
	}

	shape, _ := rand.Int(rand.Reader, big.NewInt(shapeDivisor))
	switch shape.Int64() {
	case caseTargeted:
		b.Confidence = confidentMin + getRandomFloat()*confidentRange
		b.Target = &Target{Type: "listing", ID: "listing-" + uuid.New().String()[:8]}
	case caseAreaOnly:
		b.Confidence = confidentMin + getRandomFloat()*confidentRange
		b.UserContext = &UserContext{Preferences: &Preferences{Area: pick(probeAreas)}}
	case caseAreaCategory:
		b.Confidence = confidentMin + getRandomFloat()*confidentRange
		b.UserContext = &UserContext{Preferences: &Preferences{
			Area:     pick(probeAreas),
			Category: pick(probeCategories),
			Guests:   2,
		}}
	case caseUnsure:
		b.Confidence = unsureMin + getRandomFloat()*unsureRange
		b.Notes = "User intent unclear; asking follow-up questions."
	case caseBare:
		b.Confidence = confidentMin + getRandomFloat()*confidentRange
	case caseNamedUser:
		b.Confidence = confidentMin + getRandomFloat()*confidentRange
		b.UserContext = &UserContext{
			Name:  "Probe User",
			Email: "probe@example.com",
		}
	}
	return b
}
