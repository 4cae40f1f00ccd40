package types

import "context"

// Strategy computes a program-to-TPM assignment mapping.
//
// Strategies implement different solving algorithms:
//   - Exact: Integer-programming formulation over the constraint engine
//   - Annealing: Scalar-energy simulated annealing
//   - Hybrid: Pareto-vector-guided local search
//   - TwoPhase: Greedy construction plus bounded rebalancing
//
// Strategy implementations should:
//   - Honor every fixed assignment in any returned mapping
//   - Degrade by leaving programs unassigned rather than erroring on
//     ordinary infeasibility
//   - Treat entity maps as read-only for the duration of the run
//   - Draw all randomness from an injected source so callers control
//     reproducibility
type Strategy interface {
	// Name returns the short strategy identifier used in logs and metrics.
	Name() string

	// Optimize computes the assignment mapping.
	//
	// The returned mapping may be partial: programs with no feasible TPM
	// are simply absent. An error signals an internal inconsistency or a
	// failed solver invocation, never ordinary infeasibility.
	//
	// Parameters:
	//   - ctx: Context for cancellation of long-running searches
	//
	// Returns:
	//   - Assignments: Program-id → TPM-id mapping (possibly partial)
	//   - error: Internal error, nil for any ordinary outcome
	Optimize(ctx context.Context) (Assignments, error)
}
