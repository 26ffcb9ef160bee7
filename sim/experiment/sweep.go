// Package experiment compares fund strategies: it expands a base
// configuration over a grid of alternatives, runs every valid combination and
// lays the results out side by side.
package experiment

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/monaco-sim/monaco/sim"
)

// Sweep is a base configuration plus the alternatives to try on each axis.
// An empty axis keeps the base value.
type Sweep struct {
	Base                   sim.ConfigSpec
	FundSizes              []float64
	FollowOnReserves       []float64
	ProRataCeilings        []float64
	PrimaryInvestments     []map[string]float64
	InitialInvestmentSizes []map[string]float64
	NumScenarios           []int
	ReinvestUnusedReserve  []bool
}

// axis applies choice i of one sweep dimension to a spec.
type axis struct {
	n     int
	apply func(spec *sim.ConfigSpec, i int)
}

// axes lists the sweep dimensions in the order combinations are enumerated:
// the first axis varies slowest.
func (s Sweep) axes() []axis {
	var out []axis
	if n := len(s.FundSizes); n > 0 {
		out = append(out, axis{n, func(spec *sim.ConfigSpec, i int) { spec.FundSize = s.FundSizes[i] }})
	}
	if n := len(s.FollowOnReserves); n > 0 {
		out = append(out, axis{n, func(spec *sim.ConfigSpec, i int) { spec.FollowOnReserve = s.FollowOnReserves[i] }})
	}
	if n := len(s.ProRataCeilings); n > 0 {
		out = append(out, axis{n, func(spec *sim.ConfigSpec, i int) { spec.ProRataAtOrBelow = s.ProRataCeilings[i] }})
	}
	if n := len(s.PrimaryInvestments); n > 0 {
		out = append(out, axis{n, func(spec *sim.ConfigSpec, i int) {
			spec.PrimaryInvestments = cloneAmounts(s.PrimaryInvestments[i])
		}})
	}
	if n := len(s.InitialInvestmentSizes); n > 0 {
		out = append(out, axis{n, func(spec *sim.ConfigSpec, i int) {
			spec.InitialInvestmentSizes = cloneAmounts(s.InitialInvestmentSizes[i])
		}})
	}
	if n := len(s.NumScenarios); n > 0 {
		out = append(out, axis{n, func(spec *sim.ConfigSpec, i int) { spec.NumScenarios = s.NumScenarios[i] }})
	}
	if n := len(s.ReinvestUnusedReserve); n > 0 {
		out = append(out, axis{n, func(spec *sim.ConfigSpec, i int) {
			v := s.ReinvestUnusedReserve[i]
			spec.ReinvestUnusedReserve = &v
		}})
	}
	return out
}

// Size returns the number of combinations, valid or not.
func (s Sweep) Size() int {
	n := 1
	for _, a := range s.axes() {
		n *= a.n
	}
	return n
}

// Specs returns every combination of the sweep axes applied to a clone of
// Base, in enumeration order.
func (s Sweep) Specs() []sim.ConfigSpec {
	axes := s.axes()
	idx := make([]int, len(axes))
	specs := make([]sim.ConfigSpec, 0, s.Size())
	for {
		spec := s.Base.Clone()
		for k, a := range axes {
			a.apply(&spec, idx[k])
		}
		specs = append(specs, spec)

		// odometer increment, last axis fastest
		k := len(axes) - 1
		for ; k >= 0; k-- {
			idx[k]++
			if idx[k] < axes[k].n {
				break
			}
			idx[k] = 0
		}
		if k < 0 {
			return specs
		}
	}
}

// Configurations validates every combination and returns the valid ones with
// the number skipped. Combinations whose budget does not add up or that fail
// validation are logged and dropped.
func (s Sweep) Configurations() ([]*sim.Config, int) {
	var cfgs []*sim.Config
	skipped := 0
	for i, spec := range s.Specs() {
		cfg, err := sim.NewConfig(spec)
		if err != nil {
			skipped++
			if errors.Is(err, sim.ErrBudgetMismatch) {
				logrus.Warnf("sweep combination %d: skipping, allocations do not add up to the fund: %v", i+1, err)
			} else {
				logrus.Warnf("sweep combination %d: skipping: %v", i+1, err)
			}
			continue
		}
		cfgs = append(cfgs, cfg)
	}
	logrus.Infof("sweep: %d valid configurations, %d skipped", len(cfgs), skipped)
	return cfgs, skipped
}

func cloneAmounts(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
