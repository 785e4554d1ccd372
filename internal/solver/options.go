package solver

import "time"

// Options configures a Solver, mirroring yass's flat Options/DefaultOptions
// pair (internal/sat/solver.go) generalized to this CORE's decisions.
type Options struct {
	// VariableDecay is an activity decay value for callers to pass to
	// branching.NewActivityBrancher. The Solver itself does not read it and
	// has no default brancher; Satisfy uses whatever brancher it is given.
	VariableDecay float64

	// MaxConflicts stops the search once this many conflicts have been
	// analysed. Negative means unlimited.
	MaxConflicts int64

	// Timeout stops the search once this much wall-clock time has elapsed
	// since Satisfy was called. Negative means unlimited.
	Timeout time.Duration

	// LubyRestarts enables a Luby-sequence restart policy. If
	// RestartInterval is also set, Luby takes precedence and RestartInterval
	// is ignored.
	LubyRestarts bool

	// RestartInterval, if positive and LubyRestarts is false, enables a
	// constant-interval restart policy with this many conflicts between
	// restarts. Zero disables restarts entirely.
	RestartInterval int64
}

// DefaultOptions matches yass's DefaultOptions: no conflict/time limit, no
// restarts, moderate activity decay.
var DefaultOptions = Options{
	VariableDecay:   0.95,
	MaxConflicts:    -1,
	Timeout:         -1,
	LubyRestarts:    false,
	RestartInterval: 0,
}
