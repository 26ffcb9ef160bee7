package sim

import (
	"fmt"
)

// StageTransition holds the per-period outcome probabilities of a stage.
// Promote is the listed promotion probability and is carried for reporting
// only: the promote branch always receives the residual 1 - Fail - Acquire.
type StageTransition struct {
	Promote float64
	Fail    float64
	Acquire float64
}

// EffectivePromote returns the probability mass left for promotion.
func (t StageTransition) EffectivePromote() float64 {
	return 1 - t.Fail - t.Acquire
}

// Stage is one funding round on the ladder.
type Stage struct {
	Name       string
	Valuation  float64 // post-money valuation, millions
	Dilution   float64 // applied when a company is promoted into this stage
	Transition StageTransition
}

// StageLadder is the ordered sequence of funding stages. The last stage is
// terminal: its transition probabilities are ignored and no company at that
// stage is ever transitioned.
type StageLadder struct {
	stages []Stage
	index  map[string]int
}

// NewStageLadder validates stages and returns a ladder over a copy of them.
func NewStageLadder(stages []Stage) (*StageLadder, error) {
	if len(stages) < 2 {
		return nil, fmt.Errorf("%w: stage ladder needs at least 2 stages, got %d", ErrInvalidConfig, len(stages))
	}
	l := &StageLadder{
		stages: make([]Stage, len(stages)),
		index:  make(map[string]int, len(stages)),
	}
	copy(l.stages, stages)
	for i, s := range l.stages {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: stage %d has an empty name", ErrInvalidConfig, i)
		}
		if _, dup := l.index[s.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate stage %q", ErrInvalidConfig, s.Name)
		}
		l.index[s.Name] = i
		if s.Valuation <= 0 {
			return nil, fmt.Errorf("%w: stage %q valuation must be positive, got %g", ErrInvalidConfig, s.Name, s.Valuation)
		}
		if s.Dilution < 0 || s.Dilution >= 1 {
			return nil, fmt.Errorf("%w: stage %q dilution must be in [0,1), got %g", ErrInvalidConfig, s.Name, s.Dilution)
		}
		for _, p := range []float64{s.Transition.Promote, s.Transition.Fail, s.Transition.Acquire} {
			if p < 0 || p > 1 {
				return nil, fmt.Errorf("%w: stage %q transition probability %g outside [0,1]", ErrInvalidConfig, s.Name, p)
			}
		}
	}
	return l, nil
}

// Len returns the number of stages.
func (l *StageLadder) Len() int { return len(l.stages) }

// Stage returns the stage at index i.
func (l *StageLadder) Stage(i int) Stage { return l.stages[i] }

// Name returns the name of the stage at index i.
func (l *StageLadder) Name(i int) string { return l.stages[i].Name }

// Index looks up a stage by name.
func (l *StageLadder) Index(name string) (int, bool) {
	i, ok := l.index[name]
	return i, ok
}

// Terminal returns the index of the terminal stage.
func (l *StageLadder) Terminal() int { return len(l.stages) - 1 }

// IsTerminal reports whether i is the terminal stage.
func (l *StageLadder) IsTerminal(i int) bool { return i >= l.Terminal() }

// Next returns the stage after i, clamped to the terminal stage.
func (l *StageLadder) Next(i int) int {
	return min(i+1, l.Terminal())
}

// Names returns the stage names in ladder order.
func (l *StageLadder) Names() []string {
	names := make([]string, len(l.stages))
	for i, s := range l.stages {
		names[i] = s.Name
	}
	return names
}
