package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two runs with the same SimulationKey, run mode and configuration
// MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemShared is the single stream consumed sequentially by every
	// scenario in a sequential run. Uses the master seed directly.
	SubsystemShared = "shared"

	// SubsystemSweep orders strategies and seeds their runs in experiments.
	SubsystemSweep = "sweep"
)

// SubsystemScenario returns the subsystem name for scenario N.
func SubsystemScenario(id int) string {
	return fmt.Sprintf("scenario_%d", id)
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula:
//   - For SubsystemShared: uses masterSeed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Parallel runners take one ForScenario
// stream per scenario on the scheduling goroutine and hand it to the worker.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(p.SeedFor(name)))
	p.subsystems[name] = rng
	return rng
}

// ForScenario returns a fresh stream for scenario id. Scenario streams are not
// cached: a run holds each one only while its scenario is simulated.
func (p *PartitionedRNG) ForScenario(id int) *rand.Rand {
	return rand.New(rand.NewSource(p.SeedFor(SubsystemScenario(id))))
}

// SeedFor returns the derived seed of a subsystem without caching a stream.
func (p *PartitionedRNG) SeedFor(name string) int64 {
	if name == SubsystemShared {
		return int64(p.key)
	}
	return int64(p.key) ^ fnv1a64(name)
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
