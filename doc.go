// Package tpmopt provides a Go library for assigning programs to technical
// program managers (TPMs) under hard constraints and weighted soft scoring.
//
// The optimizer matches a program portfolio against a TPM roster, honoring
// capacity, seniority, conflict, and fixed-assignment constraints while
// maximizing a weighted blend of timezone fit, skill overlap, level fit,
// portfolio continuity, and stated preferences. Four interchangeable
// strategies cover the accuracy/runtime spectrum, from provably optimal
// integer programming to a fast deterministic greedy pass.
//
// # Quick Start
//
// Basic usage with default settings:
//
//	import "github.com/motiteux/tpm-assignment-optimizer"
//
//	opt, err := tpmopt.New(tpmopt.DefaultConfig(), tpms, programs, tpmopt.MethodHybrid)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	assignments, err := opt.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for programID, tpmID := range assignments {
//	    fmt.Printf("%s -> %s\n", programID, tpmID)
//	}
//
// # Key Features
//
//   - Hard Constraints: Capacity (with per-TPM overload tolerance), seniority
//     levels, conflict lists, and fixed assignment pins are never violated
//     by unpinned work
//   - Weighted Scoring: Timezone barycenter fit, skill overlap, level fit,
//     portfolio continuity, and desired-program preferences
//   - Four Strategies: Exact (CP-SAT), simulated annealing, Pareto-guided
//     hybrid, and two-phase greedy with rebalancing
//   - Deterministic Runs: Randomized strategies derive their seed from the
//     dataset, so repeated runs over the same input agree
//   - Partial Solutions: Programs with no legal TPM are left unassigned and
//     reported, never misassigned
//
// # Choosing a Strategy
//
//	Method       Guarantee            Scale          Use when
//	exact        optimal              small/medium   correctness beats runtime
//	annealing    good, penalty-based  large          datasets too big for exact
//	hybrid       feasible, balanced   medium/large   objective trade-offs matter
//	two-phase    feasible, fast       any            explainable baseline runs
//
// Strategy behavior is tuned through Config; see DefaultConfig for the
// production defaults and TestConfig for fast test budgets.
package tpmopt
