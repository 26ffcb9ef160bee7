package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draws(r *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = r.Float64()
	}
	return out
}

func TestNewSimulationKey_PreservesSeed(t *testing.T) {
	for _, seed := range []int64{42, 0, -1, math.MaxInt64, math.MinInt64} {
		assert.Equal(t, seed, int64(NewSimulationKey(seed)))
	}
}

func TestPartitionedRNG_SameKeySameStreams(t *testing.T) {
	a := NewPartitionedRNG(NewSimulationKey(42))
	b := NewPartitionedRNG(NewSimulationKey(42))

	assert.Equal(t, draws(a.ForSubsystem(SubsystemSweep), 5), draws(b.ForSubsystem(SubsystemSweep), 5))
	assert.Equal(t, draws(a.ForScenario(9), 5), draws(b.ForScenario(9), 5))
}

func TestPartitionedRNG_StreamsAreIsolated(t *testing.T) {
	// GIVEN one generator whose shared stream has been drained heavily
	busy := NewPartitionedRNG(NewSimulationKey(42))
	draws(busy.ForSubsystem(SubsystemShared), 100)

	// THEN its sweep stream still starts where a fresh one does
	fresh := NewPartitionedRNG(NewSimulationKey(42))
	assert.Equal(t, draws(fresh.ForSubsystem(SubsystemSweep), 3), draws(busy.ForSubsystem(SubsystemSweep), 3))
}

func TestPartitionedRNG_SharedUsesMasterSeed(t *testing.T) {
	for _, seed := range []int64{42, 0, math.MinInt64} {
		shared := NewPartitionedRNG(NewSimulationKey(seed)).ForSubsystem(SubsystemShared)
		assert.Equal(t, draws(newRandFromSeed(seed), 10), draws(shared, 10), "seed %d", seed)
	}
}

func TestPartitionedRNG_OtherStreamsXorNameHash(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))

	assert.Equal(t, int64(42)^fnv1a64(SubsystemSweep), rng.SeedFor(SubsystemSweep))
	assert.Equal(t, int64(42), rng.SeedFor(SubsystemShared))
	assert.Equal(t, SimulationKey(42), rng.key)
}

func TestPartitionedRNG_CachesLazily(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	require.Empty(t, rng.subsystems)

	first := rng.ForSubsystem(SubsystemShared)
	second := rng.ForSubsystem(SubsystemShared)

	assert.Same(t, first, second)
	assert.Len(t, rng.subsystems, 1)
}

func TestPartitionedRNG_SeedForReplaysScenarioStream(t *testing.T) {
	// The parallel runner builds its per-scenario streams from SeedFor.
	rng := NewPartitionedRNG(NewSimulationKey(7))
	direct := newRandFromSeed(rng.SeedFor(SubsystemScenario(3)))

	assert.Equal(t, draws(rng.ForScenario(3), 10), draws(direct, 10))
	assert.Empty(t, rng.subsystems, "scenario streams must not be cached")
}

func TestPartitionedRNG_ForScenarioReturnsFreshStreams(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(7))

	first := rng.ForScenario(2)
	second := rng.ForScenario(2)

	assert.NotSame(t, first, second)
	assert.Equal(t, draws(first, 5), draws(second, 5))
}

func TestPartitionedRNG_ScenarioStreamsDiffer(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	assert.NotEqual(t, draws(rng.ForScenario(0), 3), draws(rng.ForScenario(1), 3))
}

func TestSubsystemScenario(t *testing.T) {
	assert.Equal(t, "scenario_0", SubsystemScenario(0))
	assert.Equal(t, "scenario_100", SubsystemScenario(100))
}

func TestFnv1a64_DistinctNames(t *testing.T) {
	names := []string{SubsystemShared, SubsystemSweep, SubsystemScenario(0), SubsystemScenario(1), SubsystemScenario(100), ""}
	seen := make(map[int64]string)
	for _, name := range names {
		h := fnv1a64(name)
		assert.Equal(t, h, fnv1a64(name), "hash of %q must be stable", name)
		if other, ok := seen[h]; ok {
			t.Errorf("hash collision: %q and %q both hash to %d", name, other, h)
		}
		seen[h] = name
	}
}

func BenchmarkPartitionedRNG_SeedFor(b *testing.B) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	for i := 0; i < b.N; i++ {
		rng.SeedFor(SubsystemScenario(i % 10000))
	}
}

func newRandFromSeed(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
