package branching

import "github.com/rhartert/yalis/internal/domain"

// MaxRegret selects the unfixed variable with the largest regret: the gap
// between its two smallest remaining domain values. Intuitively, this is
// the variable where committing to the smallest value "gives up" the most
// if that turns out to be wrong.
//
// Worst case this walks every value between a variable's bounds to find
// its second-smallest value, since holes are not indexed for fast
// successor queries.
type MaxRegret struct {
	variables []domain.ID
}

// NewMaxRegret returns a MaxRegret selector over variables.
func NewMaxRegret(variables []domain.ID) *MaxRegret {
	return &MaxRegret{variables: variables}
}

func secondSmallest(store *domain.Store, x domain.ID) (int32, bool) {
	lo := store.LowerBound(x)
	hi := store.UpperBound(x)
	for v := lo + 1; v <= hi; v++ {
		if store.Contains(x, v) {
			return v, true
		}
	}
	return 0, false
}

// Decide returns the fixed-to-smallest-value predicate for the unfixed
// variable with the largest regret, or ok=false if every variable is fixed.
func (m *MaxRegret) Decide(store *domain.Store) (domain.Predicate, bool) {
	var best domain.ID
	var bestRegret int64 = -1
	found := false

	for _, x := range m.variables {
		if store.IsAssigned(x) {
			continue
		}
		second, ok := secondSmallest(store, x)
		if !ok {
			continue
		}
		regret := int64(second) - int64(store.LowerBound(x))
		if regret > bestRegret {
			bestRegret = regret
			best = x
			found = true
		}
	}

	if !found {
		return domain.Predicate{}, false
	}
	return decisionFor(best, store), true
}
