package branching

import (
	"github.com/rhartert/yagh"
	"github.com/rhartert/yalis/internal/domain"
)

// ActivityBrancher selects the unfixed variable with the highest activity
// score, VSIDS-style: every variable touched during conflict analysis gets
// its score bumped, and scores are periodically decayed so that recent
// conflicts matter more than old ones (§6). It implements
// conflict.ActivityBumper.
type ActivityBrancher struct {
	heap  *yagh.IntMap[float64]
	store *domain.Store

	scores   []float64
	scoreInc float64
	decay    float64
}

// NewActivityBrancher returns a brancher over all variables currently
// declared in store, with scores decayed by multiplying the bump increment
// by 1/decay after every conflict (decay in (0,1]).
func NewActivityBrancher(store *domain.Store, decay float64) *ActivityBrancher {
	b := &ActivityBrancher{
		heap:     yagh.New[float64](0),
		store:    store,
		scoreInc: 1,
		decay:    decay,
	}
	n := store.NumVariables()
	b.heap.GrowBy(n)
	for v := 0; v < n; v++ {
		b.heap.Put(v, 0)
	}
	b.scores = make([]float64, n)
	return b
}

// Bump increases x's activity score, rescaling every score if the
// increment has grown too large to keep the magnitudes well-conditioned.
func (b *ActivityBrancher) Bump(x domain.ID) {
	v := int(x)
	newScore := b.scores[v] + b.scoreInc
	b.scores[v] = newScore
	if b.heap.Contains(v) {
		b.heap.Put(v, -newScore)
	}
	if newScore > 1e100 {
		b.rescale()
	}
}

// Decay shrinks the relative weight of past activity bumps by growing the
// increment; called once per conflict.
func (b *ActivityBrancher) Decay() {
	b.scoreInc /= b.decay
	if b.scoreInc > 1e100 {
		b.rescale()
	}
}

func (b *ActivityBrancher) rescale() {
	b.scoreInc *= 1e-100
	for v, s := range b.scores {
		newScore := s * 1e-100
		b.scores[v] = newScore
		if b.heap.Contains(v) {
			b.heap.Put(v, -newScore)
		}
	}
}

// VariableUnassigned reinserts x into the candidate heap after a backtrack
// undoes its assignment. Without this, a variable fixed only by
// propagation (never popped via Decide's own put-back path) would be
// dropped from the heap the first time Decide pops it while assigned, and
// never seen again, mirroring yass's VarOrder.Reinsert called by the
// solver's own backtracking path whenever a variable becomes unassigned
// (_examples/rhartert-yass/internal/sat/ordering.go).
func (b *ActivityBrancher) VariableUnassigned(x domain.ID) {
	b.heap.Put(int(x), -b.scores[x])
}

// Decide returns the fixed-to-smallest-value predicate for the highest
// activity unfixed variable, or ok=false once every variable is fixed.
func (b *ActivityBrancher) Decide(store *domain.Store) (domain.Predicate, bool) {
	for {
		next, ok := b.heap.Pop()
		if !ok {
			return domain.Predicate{}, false
		}
		x := domain.ID(next.Elem)
		if store.IsAssigned(x) {
			continue
		}
		// Put it back: Decide must be idempotent with respect to the heap
		// until the variable is actually fixed by search.
		b.heap.Put(next.Elem, -b.scores[next.Elem])
		return decisionFor(x, store), true
	}
}
