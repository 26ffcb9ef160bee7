package sim

import (
	"cmp"
	"fmt"
	"slices"
)

// SegmentType classifies a breakdown segment.
type SegmentType string

const (
	SegmentAlive    SegmentType = "alive"
	SegmentAcquired SegmentType = "acquired"
	SegmentFailed   SegmentType = "failed"
)

// Segment is a per-scenario mean company count and value for one slice of
// the portfolio. For failed companies Value is the capital lost.
type Segment struct {
	Label string      `json:"label" yaml:"label"`
	Type  SegmentType `json:"type" yaml:"type"`
	Count float64     `json:"count" yaml:"count"`
	Value float64     `json:"value" yaml:"value"`
}

// Breakdown is the portfolio composition of a group of scenarios.
type Breakdown struct {
	Scenarios int       `json:"scenarios" yaml:"scenarios"`
	Segments  []Segment `json:"segments" yaml:"segments"`
}

// Default histogram shape for BreakdownByBins.
const (
	DefaultBreakdownBins = 24
	DefaultBreakdownCap  = 10.0
)

// breakdownTargets are the percentiles BreakdownByPercentile centres on.
var breakdownTargets = []struct {
	key string
	pct float64
}{
	{"p25", 0.25}, {"p50", 0.50}, {"p75", 0.75}, {"p90", 0.90}, {"p95", 0.95},
}

// Percentile windows cover about 5% of scenarios, never fewer than 5.
const (
	windowFraction = 0.05
	minWindowSize  = 5
)

// breakdownForFirms averages portfolio composition over firms: alive
// companies per stage in ladder order, then acquired, then failed.
// Counts are rounded to 1 decimal and values to 2. Returns nil for no firms.
func breakdownForFirms(ladder *StageLadder, firms []*Firm) *Breakdown {
	if len(firms) == 0 {
		return nil
	}
	aliveCount := make([]int, ladder.Len())
	aliveValue := make([]float64, ladder.Len())
	var acquired, failed OutcomeTally
	for _, f := range firms {
		for _, c := range f.Portfolio {
			switch c.State {
			case Alive:
				aliveCount[c.Stage]++
				aliveValue[c.Stage] += c.FirmValue()
			case Acquired:
				acquired.Count++
				acquired.Value += c.FirmValue()
			case Failed:
				failed.Count++
				failed.Value += c.InvestedCapital
			}
		}
	}

	n := float64(len(firms))
	b := &Breakdown{Scenarios: len(firms)}
	for i := range aliveCount {
		if aliveCount[i] == 0 {
			continue
		}
		b.Segments = append(b.Segments, Segment{
			Label: ladder.Name(i),
			Type:  SegmentAlive,
			Count: roundTo(float64(aliveCount[i])/n, 1),
			Value: roundTo(aliveValue[i]/n, 2),
		})
	}
	b.Segments = append(b.Segments,
		Segment{Label: "Acquired", Type: SegmentAcquired, Count: roundTo(float64(acquired.Count)/n, 1), Value: roundTo(acquired.Value/n, 2)},
		Segment{Label: "Failed", Type: SegmentFailed, Count: roundTo(float64(failed.Count)/n, 1), Value: roundTo(failed.Value/n, 2)},
	)
	return b
}

// BreakdownByBins partitions scenarios into numBins equal-width MOIC bins over
// [0, maxMOIC]; MOICs at or above maxMOIC land in the last bin. Empty bins are
// nil. Panics if numBins < 1 or maxMOIC <= 0.
func (m *Montecarlo) BreakdownByBins(numBins int, maxMOIC float64) []*Breakdown {
	if numBins < 1 || maxMOIC <= 0 {
		panic(fmt.Sprintf("BreakdownByBins: need numBins >= 1 and maxMOIC > 0, got %d, %g", numBins, maxMOIC))
	}
	width := maxMOIC / float64(numBins)
	buckets := make([][]*Firm, numBins)
	for _, f := range m.Firms {
		idx := int(f.MOIC() / width)
		idx = max(0, min(idx, numBins-1))
		buckets[idx] = append(buckets[idx], f)
	}
	out := make([]*Breakdown, numBins)
	for i, bucket := range buckets {
		out[i] = breakdownForFirms(m.config.Ladder, bucket)
	}
	return out
}

// PercentileBreakdown is the composition of the scenarios ranked around one
// percentile of the MOIC distribution; [Lo, Hi) indexes the MOIC-sorted
// scenarios.
type PercentileBreakdown struct {
	Key        string     `json:"key" yaml:"key"`
	Percentile float64    `json:"percentile" yaml:"percentile"`
	Lo         int        `json:"lo" yaml:"lo"`
	Hi         int        `json:"hi" yaml:"hi"`
	Breakdown  *Breakdown `json:"breakdown" yaml:"breakdown"`
}

// BreakdownByPercentile sorts scenarios by MOIC and breaks down a window of
// about 5% of them (at least 5) around p25, p50, p75, p90 and p95.
// Returns nil when there are no scenarios.
func (m *Montecarlo) BreakdownByPercentile() []PercentileBreakdown {
	n := len(m.Firms)
	if n == 0 {
		return nil
	}
	sorted := slices.Clone(m.Firms)
	slices.SortStableFunc(sorted, func(a, b *Firm) int {
		return cmp.Compare(a.MOIC(), b.MOIC())
	})

	window := max(int(float64(n)*windowFraction), minWindowSize)
	half := window / 2
	out := make([]PercentileBreakdown, 0, len(breakdownTargets))
	for _, t := range breakdownTargets {
		idx := int(float64(n) * t.pct)
		lo := max(0, idx-half)
		hi := min(n, lo+window)
		lo = max(0, hi-window)
		out = append(out, PercentileBreakdown{
			Key:        t.key,
			Percentile: t.pct * 100,
			Lo:         lo,
			Hi:         hi,
			Breakdown:  breakdownForFirms(m.config.Ladder, sorted[lo:hi]),
		})
	}
	return out
}
