package recommend

import (
	"fmt"
	"math"
	"strings"

	"github.com/shoefit/shoefit-server/internal/domain"
)

// UnknownSize is reported when the history cannot support a recommendation.
const UnknownSize = "Unknown"

// Confidence levels. These are the only values a Recommendation carries.
const (
	ConfidenceExact = 0.9
	ConfidenceBrand = 0.7
	ConfidenceNone  = 0.0
)

// Tier names the rule that produced a recommendation.
type Tier string

// Recommendation tiers in priority order.
const (
	TierExact Tier = "exact"
	TierBrand Tier = "brand"
	TierNone  Tier = "none"
)

// Recommendation is the engine's output.
type Recommendation struct {
	// Size is a numeric string, or UnknownSize.
	Size       string             `json:"size"`
	Confidence float64            `json:"confidence"`
	Tier       Tier               `json:"tier"`
	BasedOn    []domain.OwnedShoe `json:"based_on"`
}

// IsUnknown reports whether no size could be recommended.
func (r Recommendation) IsUnknown() bool {
	return r.Size == UnknownSize
}

// ConfidencePercent returns the confidence as a whole percentage.
func (r Recommendation) ConfidencePercent() int {
	return int(math.Round(r.Confidence * 100))
}

// SizeSystemPolicy controls how the brand tier treats size systems.
type SizeSystemPolicy string

const (
	// PolicyMixed averages sizes regardless of the system they were recorded in.
	PolicyMixed SizeSystemPolicy = "mixed"
	// PolicySameSystem averages only sizes recorded in the requested system.
	PolicySameSystem SizeSystemPolicy = "same_system"
)

// ParsePolicy converts a configuration value to a SizeSystemPolicy.
// An empty value yields PolicyMixed.
func ParsePolicy(s string) (SizeSystemPolicy, error) {
	switch SizeSystemPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyMixed:
		return PolicyMixed, nil
	case PolicySameSystem:
		return PolicySameSystem, nil
	default:
		return "", fmt.Errorf("unknown size system policy %q (must be %s or %s)", s, PolicyMixed, PolicySameSystem)
	}
}
