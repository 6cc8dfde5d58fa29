package probe

// HTTP status code constants.
const (
	StatusOK           = 200
	StatusCreated      = 201
	StatusTooManyReqs  = 429
	StatusUnauthorized = 401
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	PercentageMultiplier = 100

	// agentBatchSize keeps each synthetic agent under the 10/hour quota.
	agentBatchSize = 8

	// maxPublicAttempts caps how many public posts the smoke check makes
	// while looking for the rate-limit boundary.
	maxPublicAttempts = 10
)
