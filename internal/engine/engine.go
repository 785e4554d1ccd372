// Package engine implements the fixpoint propagation loop (§4.F) that
// drains the Store's propagator queue to quiescence, together with the
// Context object propagators use to read and write the domain store.
package engine

import "github.com/rhartert/yalis/internal/domain"

// Propagator is anything that can be registered with an Engine: it
// subscribes to domain events during Initialise and is invoked from the
// queue whenever one of those events fires.
type Propagator interface {
	// ID returns the PropagatorID this propagator was allocated under.
	ID() domain.PropagatorID

	// Priority returns the bucket, in [0, domain.NumPriorityLevels), this
	// propagator is scheduled at.
	Priority() int

	// Initialise registers watches with the store and performs the
	// propagator's first round of propagation. A non-nil error means the
	// propagator conflicts with the current domains; at the root this makes
	// the problem inconsistent (§7).
	Initialise(ctx *Context) error

	// Propagate runs to local fixpoint, tightening bounds through ctx. A
	// returned error of domain.ErrEmptyDomain means this propagator is the
	// cause of the conflict; the engine wraps it into a Conflict.
	Propagate(ctx *Context) error

	// LinearExplanation exposes the propagator's own inequality when it is
	// a linear-inequality propagator so that a conflict resolver can use it
	// directly as an explanation (§4.E, §4.G). ok is false for propagators
	// with no such representation.
	LinearExplanation() (c domain.LinearInequality, ok bool)
}

// Conflict describes the propagator-caused or decision-caused failure that
// stopped the fixpoint loop (§4.F, §7).
type Conflict struct {
	// Propagator is the propagator whose Propagate call returned
	// ErrEmptyDomain. Meaningless when FromDecision is true.
	Propagator domain.PropagatorID

	// FromDecision is true when the conflict arose from applying a
	// decision predicate directly, outside of any propagator call. The
	// conflict resolver must fall back to classical resolution in this
	// case, since there is no propagator-owned explanation to cut against
	// (§4.G "decision reached").
	FromDecision bool
}

// Context is the handle a Propagator's Initialise/Propagate implementation
// uses to read and mutate the domain store. Every write made through
// SetLowerBound, SetUpperBound or RemoveValue is automatically justified by
// a Reason pointing back at the owning propagator; ApplyWithReason writes
// under the reason its caller passes (§4.D, §9).
type Context struct {
	store *domain.Store
	prop  domain.PropagatorID
}

// Store returns the underlying domain store for read-only queries.
func (c *Context) Store() *domain.Store { return c.store }

func (c *Context) reason() *domain.Reason { return domain.FromPropagator(c.prop) }

// ApplyWithReason applies p against the store under an explicit reason,
// letting a propagator justify an inference as a conjunction of predicates
// it already knows to be false, instead of the default propagator-reference
// reason every SetLowerBound/SetUpperBound/RemoveValue call uses (§3, §9).
func (c *Context) ApplyWithReason(p domain.Predicate, reason *domain.Reason) error {
	return domain.ApplyPredicate(c.store, reason, p)
}

// SetLowerBound tightens x's lower bound, attributing the change to this
// propagator.
func (c *Context) SetLowerBound(x domain.ID, v int32) error {
	return c.store.TightenLowerBound(x, v, c.reason())
}

// SetUpperBound tightens x's upper bound, attributing the change to this
// propagator.
func (c *Context) SetUpperBound(x domain.ID, v int32) error {
	return c.store.TightenUpperBound(x, v, c.reason())
}

// RemoveValue removes v from dom(x), attributing the change to this
// propagator.
func (c *Context) RemoveValue(x domain.ID, v int32) error {
	return c.store.RemoveValue(x, v, c.reason())
}

// Engine drains the Store's propagator queue to quiescence (§4.F). It owns
// no domain state of its own; everything lives in the Store.
type Engine struct {
	store       *domain.Store
	propagators []Propagator
}

// NewEngine returns an Engine with no propagators registered yet.
func NewEngine(store *domain.Store) *Engine {
	return &Engine{store: store}
}

// Register adds p to the set of propagators the engine can schedule, and
// runs its Initialise. The returned Conflict, if any, means p conflicts with
// the current domains: at the root the problem is inconsistent, while during
// search it is the non-fatal §7 InitialisationFailure. p stays registered
// either way.
func (e *Engine) Register(p Propagator) *Conflict {
	e.propagators = append(e.propagators, p)
	ctx := &Context{store: e.store, prop: p.ID()}
	if err := p.Initialise(ctx); err != nil {
		return &Conflict{Propagator: p.ID()}
	}
	return nil
}

// Propagator looks up a registered propagator by id. Panics if id was never
// registered; callers only ever pass ids obtained from this engine's own
// registrations or from a Reason produced during propagation.
func (e *Engine) Propagator(id domain.PropagatorID) Propagator {
	return e.propagators[id]
}

// Run drains the queue until it is empty (a fixpoint) or a propagator
// reports a conflict. On conflict, the queue is left as-is; the caller
// should Backtrack before resuming propagation (§4.F).
func (e *Engine) Run() *Conflict {
	queue := e.store.Queue()
	for !queue.IsEmpty() {
		id := queue.Pop()
		p := e.propagators[id]
		ctx := &Context{store: e.store, prop: id}
		if err := p.Propagate(ctx); err != nil {
			return &Conflict{Propagator: id}
		}
	}
	return nil
}

// Backtrack synchronises the store back to level and clears the pending
// propagator queue, since any enqueued propagator may have been reacting to
// bound changes that no longer hold (§4.F).
func (e *Engine) Backtrack(level int) {
	e.store.Synchronise(level)
	e.store.Queue().Clear()
}
