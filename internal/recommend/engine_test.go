package recommend

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoefit/shoefit-server/internal/domain"
)

func owned(brand, model, size string, fit domain.Fit) domain.OwnedShoe {
	return domain.OwnedShoe{Brand: brand, Model: model, Size: size, SizeSystem: domain.SizeSystemUS, Fit: fit}
}

func target(brand, model string) domain.CatalogEntry {
	return domain.CatalogEntry{Brand: brand, Model: model}
}

func TestRecommend_ExactMatch(t *testing.T) {
	history := []domain.OwnedShoe{owned("Nike", "Air Zoom", "10", domain.FitPerfect)}

	rec := Recommend(target("Nike", "Air Zoom"), history)

	assert.Equal(t, "10", rec.Size)
	assert.Equal(t, ConfidenceExact, rec.Confidence)
	assert.Equal(t, TierExact, rec.Tier)
	assert.Equal(t, 90, rec.ConfidencePercent())
	require.Len(t, rec.BasedOn, 1)
	assert.Equal(t, "Air Zoom", rec.BasedOn[0].Model)
}

func TestRecommend_ExactMatchIsCaseInsensitive(t *testing.T) {
	history := []domain.OwnedShoe{owned("nike", "air zoom", "10.5", domain.FitPerfect)}

	rec := Recommend(target("NIKE", "Air Zoom"), history)

	assert.Equal(t, "10.5", rec.Size)
	assert.Equal(t, TierExact, rec.Tier)
}

func TestRecommend_ExactMatchReturnsSizeVerbatim(t *testing.T) {
	// Not parseable, but the exact tier never parses.
	history := []domain.OwnedShoe{owned("Nike", "Air Zoom", "10 wide", domain.FitPerfect)}

	rec := Recommend(target("Nike", "Air Zoom"), history)

	assert.Equal(t, "10 wide", rec.Size)
	assert.Equal(t, ConfidenceExact, rec.Confidence)
}

func TestRecommend_FirstExactMatchWins(t *testing.T) {
	history := []domain.OwnedShoe{
		owned("Nike", "Air Zoom", "10", domain.FitPerfect),
		owned("Nike", "Air Zoom", "11", domain.FitPerfect),
	}

	rec := Recommend(target("Nike", "Air Zoom"), history)

	assert.Equal(t, "10", rec.Size)
}

func TestRecommend_ExactModelWithBadFitFallsToBrand(t *testing.T) {
	history := []domain.OwnedShoe{
		owned("Nike", "Air Zoom", "10", domain.FitTooSmall),
		owned("Nike", "Pegasus", "10.5", domain.FitPerfect),
	}

	rec := Recommend(target("Nike", "Air Zoom"), history)

	assert.Equal(t, "10.5", rec.Size)
	assert.Equal(t, ConfidenceBrand, rec.Confidence)
	assert.Equal(t, TierBrand, rec.Tier)
	require.Len(t, rec.BasedOn, 1)
	assert.Equal(t, "Pegasus", rec.BasedOn[0].Model)
}

func TestRecommend_BrandAverage(t *testing.T) {
	history := []domain.OwnedShoe{
		owned("Nike", "X", "9", domain.FitPerfect),
		owned("Nike", "Y", "10", domain.FitPerfect),
	}

	rec := Recommend(target("Nike", "Z"), history)

	assert.Equal(t, "9.5", rec.Size)
	assert.Equal(t, ConfidenceBrand, rec.Confidence)
	assert.Equal(t, 70, rec.ConfidencePercent())
	assert.Len(t, rec.BasedOn, 2)
}

func TestRecommend_BrandAverageFormatting(t *testing.T) {
	tests := []struct {
		name  string
		sizes []string
		want  string
	}{
		{"single whole", []string{"10"}, "10.0"},
		{"rounds half up", []string{"9", "9.5"}, "9.3"},
		{"rounds down", []string{"9", "9", "9.5"}, "9.2"},
		{"thirds", []string{"9", "9.5", "10"}, "9.5"},
		{"comma decimal", []string{"42,5", "43"}, "42.8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var history []domain.OwnedShoe
			for i, s := range tt.sizes {
				history = append(history, owned("Adidas", string(rune('A'+i)), s, domain.FitPerfect))
			}
			rec := Recommend(target("adidas", "Samba"), history)
			assert.Equal(t, tt.want, rec.Size)
		})
	}
}

func TestFormatMean_RoundsDecimalHalfUp(t *testing.T) {
	assert.Equal(t, "1.5", formatMean(1.45))
	assert.Equal(t, "9.3", formatMean(9.25))
	assert.Equal(t, "10.0", formatMean(10))
	assert.Equal(t, "9.2", formatMean(9.1666))
}

func TestRecommend_BrandIgnoresNonPerfectAndOtherBrands(t *testing.T) {
	history := []domain.OwnedShoe{
		owned("Nike", "X", "9", domain.FitPerfect),
		owned("Nike", "Y", "12", domain.FitTooLarge),
		owned("Adidas", "Samba", "8", domain.FitPerfect),
	}

	rec := Recommend(target("Nike", "Z"), history)

	assert.Equal(t, "9.0", rec.Size)
	assert.Len(t, rec.BasedOn, 1)
}

func TestRecommend_BrandExcludesUnparseableSizes(t *testing.T) {
	history := []domain.OwnedShoe{
		owned("Nike", "X", "nine", domain.FitPerfect),
		owned("Nike", "Y", "10", domain.FitPerfect),
	}

	rec := Recommend(target("Nike", "Z"), history)

	assert.Equal(t, "10.0", rec.Size)
	assert.Len(t, rec.BasedOn, 1)
}

func TestRecommend_AllSizesUnparseable(t *testing.T) {
	history := []domain.OwnedShoe{
		owned("Nike", "X", "nine", domain.FitPerfect),
		owned("Nike", "Y", "", domain.FitPerfect),
	}

	rec := Recommend(target("Nike", "Z"), history)

	assert.True(t, rec.IsUnknown())
	assert.Equal(t, ConfidenceNone, rec.Confidence)
}

func TestRecommend_EmptyHistory(t *testing.T) {
	rec := Recommend(target("Nike", "Air Zoom"), nil)

	assert.Equal(t, UnknownSize, rec.Size)
	assert.Equal(t, 0.0, rec.Confidence)
	assert.Equal(t, TierNone, rec.Tier)
	assert.Equal(t, 0, rec.ConfidencePercent())
	assert.NotNil(t, rec.BasedOn)
	assert.Empty(t, rec.BasedOn)
}

func TestRecommend_NoPerfectFits(t *testing.T) {
	history := []domain.OwnedShoe{
		owned("Nike", "Air Zoom", "10", domain.FitTooSmall),
		owned("Nike", "Pegasus", "10", domain.FitTooLarge),
	}

	rec := Recommend(target("Nike", "Air Zoom"), history)

	assert.True(t, rec.IsUnknown())
}

func TestRecommend_DoesNotMutateHistory(t *testing.T) {
	history := []domain.OwnedShoe{
		owned("Nike", "X", "9", domain.FitPerfect),
		owned("Nike", "Y", "10", domain.FitPerfect),
	}
	before := append([]domain.OwnedShoe(nil), history...)

	_ = Recommend(target("Nike", "Z"), history)

	assert.Equal(t, before, history)
}

func TestEngine_MixedAveragesAcrossSystems(t *testing.T) {
	history := []domain.OwnedShoe{
		{Brand: "Nike", Model: "X", Size: "10", SizeSystem: domain.SizeSystemUS, Fit: domain.FitPerfect},
		{Brand: "Nike", Model: "Y", Size: "44", SizeSystem: domain.SizeSystemEU, Fit: domain.FitPerfect},
	}

	rec := NewEngine(PolicyMixed).Recommend(target("Nike", "Z"), domain.SizeSystemUS, history)

	assert.Equal(t, "27.0", rec.Size)
}

func TestEngine_SameSystemFiltersBrandTier(t *testing.T) {
	history := []domain.OwnedShoe{
		{Brand: "Nike", Model: "X", Size: "10", SizeSystem: domain.SizeSystemUS, Fit: domain.FitPerfect},
		{Brand: "Nike", Model: "Y", Size: "44", SizeSystem: domain.SizeSystemEU, Fit: domain.FitPerfect},
	}
	engine := NewEngine(PolicySameSystem)

	rec := engine.Recommend(target("Nike", "Z"), domain.SizeSystemEU, history)
	assert.Equal(t, "44.0", rec.Size)
	assert.Len(t, rec.BasedOn, 1)

	rec = engine.Recommend(target("Nike", "Z"), domain.SizeSystemUK, history)
	assert.True(t, rec.IsUnknown())

	// No system requested: behaves like mixed.
	rec = engine.Recommend(target("Nike", "Z"), "", history)
	assert.Equal(t, "27.0", rec.Size)
}

func TestEngine_SameSystemKeepsExactTier(t *testing.T) {
	history := []domain.OwnedShoe{
		{Brand: "Nike", Model: "Air Zoom", Size: "44", SizeSystem: domain.SizeSystemEU, Fit: domain.FitPerfect},
	}

	rec := NewEngine(PolicySameSystem).Recommend(target("Nike", "Air Zoom"), domain.SizeSystemUS, history)

	assert.Equal(t, "44", rec.Size)
	assert.Equal(t, TierExact, rec.Tier)
}

func TestNewEngine_DefaultPolicy(t *testing.T) {
	assert.Equal(t, PolicyMixed, NewEngine("").Policy())
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyMixed, p)

	p, err = ParsePolicy(" Same_System ")
	require.NoError(t, err)
	assert.Equal(t, PolicySameSystem, p)

	_, err = ParsePolicy("convert")
	assert.Error(t, err)
}

// Randomized histories must only ever produce one of the three outcomes, and
// the outcome must agree with which records exist.
func TestRecommend_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	brands := []string{"Nike", "nike", "Adidas", "Hoka"}
	models := []string{"Pegasus", "pegasus", "Clifton", "Samba"}
	fits := []domain.Fit{domain.FitPerfect, domain.FitTooSmall, domain.FitTooLarge}
	sizes := []string{"8", "9.5", "10", "44", "bad", ""}

	for i := 0; i < 500; i++ {
		n := rng.IntN(8)
		history := make([]domain.OwnedShoe, n)
		for j := range history {
			history[j] = owned(
				brands[rng.IntN(len(brands))],
				models[rng.IntN(len(models))],
				sizes[rng.IntN(len(sizes))],
				fits[rng.IntN(len(fits))],
			)
		}
		tgt := target("NIKE", "PEGASUS")

		rec := Recommend(tgt, history)

		switch rec.Confidence {
		case ConfidenceExact:
			require.Len(t, rec.BasedOn, 1)
			assert.Equal(t, TierExact, rec.Tier)
		case ConfidenceBrand:
			require.NotEmpty(t, rec.BasedOn)
			_, ok := domain.ParseSize(rec.Size)
			assert.True(t, ok, "brand tier size %q must be numeric", rec.Size)
		case ConfidenceNone:
			assert.Equal(t, UnknownSize, rec.Size)
		default:
			t.Fatalf("unexpected confidence %v", rec.Confidence)
		}

		hasExact := false
		for _, s := range history {
			if s.Fit == domain.FitPerfect && s.Brand != "Adidas" && s.Brand != "Hoka" && (s.Model == "Pegasus" || s.Model == "pegasus") {
				hasExact = true
				break
			}
		}
		assert.Equal(t, hasExact, rec.Tier == TierExact)
	}
}
