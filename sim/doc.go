// Package sim provides the Monte Carlo engine for venture fund portfolios.
//
// # Reading Guide
//
// Start with these files to understand the engine:
//   - stage.go: the ordered stage ladder and per-stage transition probabilities
//   - company.go: a single position and its Alive/Failed/Acquired state machine
//   - config.go: validation and the whole-check rounding of the capital plan
//   - firm.go: one scenario's portfolio, reserve ledger and period snapshots
//   - montecarlo.go: the scenario driver (sequential and parallel) and the
//     leftover-reserve redeployment pass
//   - aggregate.go, breakdown.go: cross-scenario statistics
//
// Package experiment builds on this package to sweep configurations and
// compare strategies.
//
// # Ownership
//
// A Firm exclusively owns its companies and its reserve ledger. Companies
// compute the follow-on amount a promotion consumes and return it; the caller
// debits the firm, so every ledger update happens in one place.
//
// # Randomness
//
// All draws come from a PartitionedRNG. Simulate consumes one shared stream in
// a fixed order; RunParallel gives every scenario its own stream derived from
// the seed and the scenario index.
//
// All monetary quantities share one unit (millions in the presets).
package sim
