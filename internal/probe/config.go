package probe

import "time"

// Config holds configuration for the intake probe.
type Config struct {
	BaseURL      string        // Base URL of the service
	NumBookings  int           // Number of agent bookings to generate
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	AgentSecret  string        // Pre-shared secret for the agent endpoint
	LogFile      string        // Log file for probe output
	Verbose      bool          // Enable verbose logging
	SkipPublic   bool          // Skip the public-form smoke checks
	DuplicateNth int           // Every Nth booking replays the previous request_id
}

// AgentBooking is the payload submitted to the agent intake endpoint.
type AgentBooking struct {
	AgentID     string       `json:"agent_id"`
	UserContext *UserContext `json:"user_context,omitempty"`
	Target      *Target      `json:"target,omitempty"`
	Confidence  float64      `json:"confidence"`
	Notes       string       `json:"notes,omitempty"`
	RequestID   string       `json:"request_id"`
}

// UserContext carries optional user details on an agent booking.
type UserContext struct {
	Name        string       `json:"name,omitempty"`
	Email       string       `json:"email,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

// Preferences are the loose intent signals on a booking.
type Preferences struct {
	Area     string `json:"area,omitempty"`
	Category string `json:"category,omitempty"`
	Guests   int    `json:"guests,omitempty"`
}

// Target is an explicit listing attribution.
type Target struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// PublicBooking is the payload submitted to the public form endpoint.
type PublicBooking struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Message  string `json:"message"`
	Honeypot string `json:"honeypot,omitempty"`
}

// BookingAck is the agent endpoint's response shape.
type BookingAck struct {
	Message     string `json:"message"`
	BookingID   string `json:"booking_id"`
	Status      string `json:"status"`
	IsDuplicate bool   `json:"isDuplicate"`
}

// PublicAck is the public endpoint's response shape.
type PublicAck struct {
	OK bool `json:"ok"`
}

// Stats holds probe statistics.
type Stats struct {
	BookingsGenerated  int
	BookingsSubmitted  int
	BookingsCreated    int
	BookingsDuplicate  int
	BookingsGated      int
	BookingsLimited    int
	BookingsFailed     int
	ExpectedDuplicates int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
