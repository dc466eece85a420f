package recommend

import (
	"math"
	"strconv"
	"strings"

	"github.com/shoefit/shoefit-server/internal/domain"
)

// Engine applies the recommendation tiers under a size-system policy.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	policy SizeSystemPolicy
}

// NewEngine creates an engine with the given policy.
func NewEngine(policy SizeSystemPolicy) *Engine {
	if policy == "" {
		policy = PolicyMixed
	}
	return &Engine{policy: policy}
}

// Policy returns the engine's size-system policy.
func (e *Engine) Policy() SizeSystemPolicy {
	return e.policy
}

// Recommend computes a recommendation for target from history.
// system is the size system the caller wants the answer in. It only
// matters under PolicySameSystem, and an empty system disables the filter.
func (e *Engine) Recommend(target domain.CatalogEntry, system domain.SizeSystem, history []domain.OwnedShoe) Recommendation {
	var only domain.SizeSystem
	if e.policy == PolicySameSystem {
		only = system
	}
	return recommend(target, history, only)
}

// Recommend computes a recommendation using the mixed-system policy.
func Recommend(target domain.CatalogEntry, history []domain.OwnedShoe) Recommendation {
	return recommend(target, history, "")
}

func recommend(target domain.CatalogEntry, history []domain.OwnedShoe, only domain.SizeSystem) Recommendation {
	// Exact tier: first perfect fit for the same brand and model, in input order.
	for _, shoe := range history {
		if sameBrand(shoe, target) && strings.EqualFold(shoe.Model, target.Model) && shoe.IsTrueToSize() {
			return Recommendation{
				Size:       shoe.Size,
				Confidence: ConfidenceExact,
				Tier:       TierExact,
				BasedOn:    []domain.OwnedShoe{shoe},
			}
		}
	}

	// Brand tier: mean of every parseable perfect-fit size for the brand.
	var (
		sum     float64
		basedOn []domain.OwnedShoe
	)
	for _, shoe := range history {
		if !sameBrand(shoe, target) || !shoe.IsTrueToSize() {
			continue
		}
		if only != "" && shoe.SizeSystem != only {
			continue
		}
		size, ok := domain.ParseSize(shoe.Size)
		if !ok {
			continue
		}
		sum += size
		basedOn = append(basedOn, shoe)
	}
	if len(basedOn) > 0 {
		return Recommendation{
			Size:       formatMean(sum / float64(len(basedOn))),
			Confidence: ConfidenceBrand,
			Tier:       TierBrand,
			BasedOn:    basedOn,
		}
	}

	return Recommendation{
		Size:       UnknownSize,
		Confidence: ConfidenceNone,
		Tier:       TierNone,
		BasedOn:    []domain.OwnedShoe{},
	}
}

func sameBrand(shoe domain.OwnedShoe, target domain.CatalogEntry) bool {
	return strings.EqualFold(shoe.Brand, target.Brand)
}

// formatMean rounds half away from zero to one decimal and always prints one
// decimal digit, so 9.25 becomes "9.3" and 10 becomes "10.0".
func formatMean(v float64) string {
	rounded := math.Floor(v*10+0.5) / 10
	return strconv.FormatFloat(rounded, 'f', 1, 64)
}
