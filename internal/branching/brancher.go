// Package branching implements the pluggable variable/value selection
// strategies the driver consults for its next decision (§6).
package branching

import "github.com/rhartert/yalis/internal/domain"

// Brancher selects the next decision predicate to apply. Decide returns
// ok=false once every variable it manages is assigned.
type Brancher interface {
	Decide(store *domain.Store) (pred domain.Predicate, ok bool)
}

// decisionFor builds the predicate a brancher commits to for x: fix x to
// its current lower bound. Since the value already is x's lower bound,
// applying the decision only lowers x's upper bound to it.
func decisionFor(x domain.ID, store *domain.Store) domain.Predicate {
	return domain.EQ(x, store.LowerBound(x))
}
