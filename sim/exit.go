package sim

// ExitTier is one outcome of an M&A exit: with Probability the acquired
// company's valuation is multiplied by Multiplier.
type ExitTier struct {
	Probability float64 `yaml:"pct" toml:"pct" json:"pct"`
	Multiplier  float64 `yaml:"multiple" toml:"multiple" json:"multiple"`
}

// DefaultExitTiers returns the built-in M&A outcome distribution.
func DefaultExitTiers() []ExitTier {
	return []ExitTier{
		{Probability: 0.01, Multiplier: 10},
		{Probability: 0.05, Multiplier: 5},
		{Probability: 0.60, Multiplier: 1},
		{Probability: 0.34, Multiplier: 0.1},
	}
}

// tierBoundaryTolerance absorbs the rounding error of summing tier
// probabilities, so 0.01+0.05 still ends the second tier at 0.06.
const tierBoundaryTolerance = 1e-12

// ExitMultiplier walks tiers as a cumulative distribution and returns the
// multiplier of the first tier whose running probability exceeds r. Tier
// ranges are half-open: a draw equal to a boundary belongs to the next tier.
// Probability mass the tiers do not cover falls to the last tier; tiers are
// never renormalised. tiers must be non-empty.
func ExitMultiplier(tiers []ExitTier, r float64) float64 {
	cumulative := 0.0
	for _, t := range tiers {
		cumulative += t.Probability
		if r < cumulative-tierBoundaryTolerance {
			return t.Multiplier
		}
	}
	return tiers[len(tiers)-1].Multiplier
}
