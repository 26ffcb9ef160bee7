package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitMultiplier_DefaultTiers(t *testing.T) {
	// GIVEN a $15M company and the default M&A distribution
	tiers := DefaultExitTiers()
	const valuation = 15.0

	tests := []struct {
		name string
		r    float64
		want float64
	}{
		{"top tier lower bound", 0, 150},
		{"top tier", 0.005, 150},
		{"second tier lower bound", 0.01, 75},
		{"second tier", 0.03, 75},
		{"second tier upper", 0.0599, 75},
		{"flat tier lower bound", 0.06, 15},
		{"flat tier", 0.07, 15},
		{"flat tier upper", 0.6599, 15},
		{"write-down tier lower bound", 0.66, 1.5},
		{"write-down tier", 0.67, 1.5},
		{"write-down tier upper", 0.999, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// WHEN the tier is selected with draw r
			got := valuation * ExitMultiplier(tiers, tt.r)

			// THEN the valuation lands in the expected tier
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestExitMultiplier_UncoveredMassFallsToLastTier(t *testing.T) {
	// GIVEN tiers covering only 50% of the probability mass
	tiers := []ExitTier{{Probability: 0.2, Multiplier: 3}, {Probability: 0.3, Multiplier: 2}}

	// THEN draws beyond the covered mass use the last tier, not a renormalised one
	assert.Equal(t, 3.0, ExitMultiplier(tiers, 0.1))
	assert.Equal(t, 2.0, ExitMultiplier(tiers, 0.4))
	assert.Equal(t, 2.0, ExitMultiplier(tiers, 0.9))
}

func TestExitMultiplier_BoundaryBelongsToNextTier(t *testing.T) {
	// GIVEN tiers whose running sum is inexact in binary (0.1+0.2 != 0.3)
	tiers := []ExitTier{
		{Probability: 0.1, Multiplier: 4},
		{Probability: 0.2, Multiplier: 3},
		{Probability: 0.7, Multiplier: 2},
	}

	// THEN a draw on each decimal boundary opens the next tier
	assert.Equal(t, 3.0, ExitMultiplier(tiers, 0.1))
	assert.Equal(t, 2.0, ExitMultiplier(tiers, 0.3))
	assert.Equal(t, 3.0, ExitMultiplier(tiers, 0.29))
}

func TestDefaultExitTiers_SumToOne(t *testing.T) {
	sum := 0.0
	for _, tier := range DefaultExitTiers() {
		sum += tier.Probability
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}
