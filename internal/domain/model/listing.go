package model

// Tier is a listing's service level. It controls eligibility and priority
// for automated lead attribution.
type Tier string

// Listing tiers, lowest to highest.
const (
	TierFree      Tier = "free"
	TierFeatured  Tier = "featured"
	TierVerified  Tier = "verified"
	TierPartner   Tier = "partner"
	TierConcierge Tier = "concierge"
)

// DefaultTierWeights is the ranking table used by target resolution.
// Free listings carry zero weight and are excluded from auto-routing
// before ranking ever sees them.
var DefaultTierWeights = map[string]float64{
	string(TierConcierge): 3,
	string(TierPartner):   2,
	string(TierVerified):  2,
	string(TierFeatured):  1,
	string(TierFree):      0,
}

// Listing is a directory entry consumed read-only by target resolution.
type Listing struct {
	ID       string
	Name     string
	Tier     Tier
	Area     string
	Category string
}
