package propagation

import (
	"github.com/rhartert/yalis/internal/domain"
	"github.com/rhartert/yalis/internal/engine"
)

// Nogood enforces the disjunction of a set of predicates learned by
// resolution-based conflict analysis (§4.H): at least one must hold. It
// propagates the last remaining undetermined predicate once every other
// one has been falsified, the predicate analogue of unit propagation over
// a clause.
type Nogood struct {
	id       domain.PropagatorID
	priority int
	preds    []domain.Predicate
}

// NewNogood allocates a propagator for the disjunction of preds.
func NewNogood(store *domain.Store, preds []domain.Predicate, priority int) *Nogood {
	return &Nogood{id: store.NewPropagator(priority), priority: priority, preds: preds}
}

func (n *Nogood) ID() domain.PropagatorID { return n.id }
func (n *Nogood) Priority() int           { return n.priority }

func (n *Nogood) LinearExplanation() (domain.LinearInequality, bool) {
	return domain.LinearInequality{}, false
}

// ConjunctionExplanation exposes the nogood's own disjuncts so a conflict
// resolver can use them directly as an explanation when this propagator
// forces a predicate or causes a conflict, mirroring how a linear
// propagator exposes itself via LinearExplanation (§4.H).
func (n *Nogood) ConjunctionExplanation() []domain.Predicate {
	return n.preds
}

// Initialise watches every event that could change any predicate's truth
// value and runs the first propagation pass. Watching the full event set
// per variable (rather than a sharper 2-watched-literals scheme) keeps
// this simple; it only costs extra, harmless wake-ups.
func (n *Nogood) Initialise(ctx *engine.Context) error {
	store := ctx.Store()
	for i, p := range n.preds {
		if p.Kind() == domain.KindTrue || p.Kind() == domain.KindFalse {
			continue
		}
		local := domain.LocalID(i)
		store.Watch(n.id, p.Domain(), domain.EventLowerBound, local)
		store.Watch(n.id, p.Domain(), domain.EventUpperBound, local)
		store.Watch(n.id, p.Domain(), domain.EventHole, local)
	}
	return n.Propagate(ctx)
}

type tri int

const (
	triUnknown tri = iota
	triTrue
	triFalse
)

func holds(store *domain.Store, p domain.Predicate) tri {
	switch p.Kind() {
	case domain.KindTrue:
		return triTrue
	case domain.KindFalse:
		return triFalse
	case domain.KindLowerBound:
		if store.LowerBound(p.Domain()) >= p.Value() {
			return triTrue
		}
		if store.UpperBound(p.Domain()) < p.Value() {
			return triFalse
		}
	case domain.KindUpperBound:
		if store.UpperBound(p.Domain()) <= p.Value() {
			return triTrue
		}
		if store.LowerBound(p.Domain()) > p.Value() {
			return triFalse
		}
	case domain.KindEqual:
		if !store.Contains(p.Domain(), p.Value()) {
			return triFalse
		}
		if store.IsAssigned(p.Domain()) {
			return triTrue
		}
	case domain.KindNotEqual:
		if !store.Contains(p.Domain(), p.Value()) {
			return triTrue
		}
		if store.IsAssigned(p.Domain()) {
			return triFalse
		}
	}
	return triUnknown
}

// Propagate scans every disjunct: if one already holds, the nogood is
// satisfied and there is nothing to do; if all but one are falsified, the
// remaining one is forced; if all are falsified, the nogood is violated.
func (n *Nogood) Propagate(ctx *engine.Context) error {
	store := ctx.Store()

	numFalse := 0
	unknown := -1
	antecedents := make([]domain.Predicate, 0, len(n.preds))
	for i, p := range n.preds {
		switch holds(store, p) {
		case triTrue:
			return nil
		case triFalse:
			numFalse++
			antecedents = append(antecedents, p.Opposite())
		default:
			unknown = i
		}
	}

	if numFalse == len(n.preds) {
		return domain.ErrEmptyDomain
	}
	if numFalse == len(n.preds)-1 && unknown >= 0 {
		return ctx.ApplyWithReason(n.preds[unknown], domain.Conjunction(antecedents...))
	}
	return nil
}
