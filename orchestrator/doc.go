// Package orchestrator drives the turn-taking between a Decomposer and a
// Solver until the problem is solved, a backend fails or the iteration
// ceiling is reached.
//
// A run moves through the states AWAIT_A, AWAIT_B and ends in one of
// SOLVED, FAILED or MAX_ITER_REACHED. Each run owns its two exchange
// histories and its turn counter, so independent runs on one Orchestrator
// may execute concurrently.
//
// Example:
//
//	orch := orchestrator.New(agent.NewDecomposer(a), agent.NewSolver(b),
//	    orchestrator.WithTurnHandler(func(t core.Turn) { fmt.Println(t) }),
//	)
//	res, err := orch.Run(ctx, "What is 2+2?")
package orchestrator
