package events

// StrategyEvent is emitted when the solve manager chooses a solver.
// Action can be "setcover_attempt", "setcover_failure", or "greedy_fallback".
type StrategyEvent struct {
	Instance string
	Action   string
	Err      error
}
