// Package strategy provides built-in optimization strategy implementations.
//
// Optimization strategies determine how programs are matched to TPMs. The
// package includes four built-in strategies:
//
//   - Exact: CP-SAT integer programming, provably optimal on small and
//     medium datasets (recommended when runtime is not critical)
//   - Annealing: Simulated annealing over a penalty-based energy function,
//     scales to large datasets
//   - Hybrid: Greedy construction plus Pareto-guided refinement across
//     capacity, utilization, timezone, and portfolio objectives
//   - TwoPhase: Utilization-tiered greedy placement followed by an overload
//     rebalancing pass, fast and deterministic
//
// # Strategy Selection Guide
//
// Exact:
//   - Use when the dataset is small enough to solve within the time budget
//   - Guarantees the best achievable weighted score
//   - Configuration: solver time limit
//
// Annealing:
//   - Use for large datasets where exact search is impractical
//   - Walks legal states only, trading soft-quality penalties (overload
//     tolerance, utilization, timezone) against pair scores
//   - Configuration: temperature schedule, iteration budget
//
// Hybrid:
//   - Use when trade-offs between objectives matter more than a single
//     scalar score
//   - Only ever returns feasible solutions
//   - Configuration: temperature schedule, runtime and retry budgets
//
// TwoPhase:
//   - Use for fast, explainable runs and as a baseline for the others
//   - Deterministic for a given dataset
//   - Configuration: none beyond the shared options
//
// All four satisfy the types.Strategy interface; custom strategies can be
// implemented by satisfying the same interface.
package strategy
