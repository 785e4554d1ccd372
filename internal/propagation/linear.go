// Package propagation implements the linear-inequality propagator (§4.E):
// bound consistency over Σ aᵢ·xᵢ <= rhs via slack.
package propagation

import (
	"github.com/rhartert/yalis/internal/domain"
	"github.com/rhartert/yalis/internal/engine"
)

// LinearLessEqual propagates a single domain.LinearInequality to bound
// consistency. It watches each term's variable for the event that can
// shrink the term's minimal contribution (LowerBound for a positive
// coefficient, UpperBound for a negative one), and on each invocation
// tightens every other term's bound against the resulting slack (§4.E).
type LinearLessEqual struct {
	id       domain.PropagatorID
	priority int
	ineq     domain.LinearInequality
}

// NewLinearLessEqual allocates a propagator for ineq against store, at the
// given priority bucket.
func NewLinearLessEqual(store *domain.Store, ineq domain.LinearInequality, priority int) *LinearLessEqual {
	return &LinearLessEqual{
		id:       store.NewPropagator(priority),
		priority: priority,
		ineq:     ineq,
	}
}

func (p *LinearLessEqual) ID() domain.PropagatorID { return p.id }
func (p *LinearLessEqual) Priority() int           { return p.priority }

// Inequality returns the propagator's constraint.
func (p *LinearLessEqual) Inequality() domain.LinearInequality { return p.ineq }

func (p *LinearLessEqual) LinearExplanation() (domain.LinearInequality, bool) {
	return p.ineq, true
}

// Initialise registers watches for every term and runs the first
// propagation pass.
func (p *LinearLessEqual) Initialise(ctx *engine.Context) error {
	for i, t := range p.ineq.Lhs {
		v := domain.Var(t.Var)
		if t.Coeff > 0 {
			v.WatchLowerBound(ctx.Store(), p.id, domain.LocalID(i))
		} else {
			v.WatchUpperBound(ctx.Store(), p.id, domain.LocalID(i))
		}
	}
	return p.Propagate(ctx)
}

// Propagate computes the current slack and tightens every term's bound
// that the slack allows to be tightened further (§4.E). It returns
// domain.ErrEmptyDomain when the inequality is already violated.
func (p *LinearLessEqual) Propagate(ctx *engine.Context) error {
	store := ctx.Store()
	now := store.NumTrailEntries() - 1

	slack := p.ineq.Slack(store, now)
	if slack < 0 {
		return domain.ErrEmptyDomain
	}

	for _, t := range p.ineq.Lhs {
		if t.Coeff > 0 {
			newUpper := int32(slack/int64(t.Coeff)) + store.LowerBound(t.Var)
			if newUpper < store.UpperBound(t.Var) {
				if err := ctx.SetUpperBound(t.Var, newUpper); err != nil {
					return err
				}
			}
		} else {
			newLower := store.UpperBound(t.Var) - int32(slack/int64(-t.Coeff))
			if newLower > store.LowerBound(t.Var) {
				if err := ctx.SetLowerBound(t.Var, newLower); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
