// Package testutil provides shared test infrastructure for the fund simulator.
// It holds assertion helpers and scripted random sources used across the
// sim/ and sim/experiment/ test packages.
package testutil

import (
	"math"
	"testing"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// FixedSource replays a scripted sequence of uniform draws. It fails the
// test when the script runs out.
type FixedSource struct {
	t     *testing.T
	draws []float64
	next  int
}

// NewFixedSource returns a source that yields draws in order.
func NewFixedSource(t *testing.T, draws ...float64) *FixedSource {
	return &FixedSource{t: t, draws: draws}
}

// Float64 returns the next scripted draw.
func (s *FixedSource) Float64() float64 {
	s.t.Helper()
	if s.next >= len(s.draws) {
		s.t.Fatalf("FixedSource: script exhausted after %d draws", len(s.draws))
	}
	v := s.draws[s.next]
	s.next++
	return v
}

// Consumed reports how many draws have been taken.
func (s *FixedSource) Consumed() int { return s.next }
