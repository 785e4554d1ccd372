package conflict

import "github.com/rhartert/yalis/internal/domain"

// Outcome classifies what a conflict resolver produced (§4.G, §4.H, §7).
type Outcome int

const (
	// OutcomeNogood means Nogood holds a disjunction of negated predicates
	// (stored as the predicates themselves; the learned clause is their
	// disjunction) to be added to the engine as a fresh propagator, and
	// BackjumpLevel is where search should resume.
	OutcomeNogood Outcome = iota
	// OutcomeConstraint means Constraint holds a learned linear inequality
	// to be installed as a new propagator.
	OutcomeConstraint
	// OutcomeRootConflict means the conflict could not be resolved above
	// decision level 0: the problem is unsatisfiable.
	OutcomeRootConflict
)

// Result is what a conflict resolver returns: exactly one learned artifact
// (or an unsatisfiability verdict) plus the level to backjump to.
type Result struct {
	Outcome       Outcome
	Nogood        []domain.Predicate
	Constraint    domain.LinearInequality
	BackjumpLevel int
}
