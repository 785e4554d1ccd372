package conflict

import (
	"github.com/rhartert/yalis/internal/domain"
	"github.com/rhartert/yalis/internal/engine"
)

// ActivityBumper receives a nudge for every variable touched during
// conflict analysis, letting an activity-ordered brancher prioritise them
// in future decisions (§6, VSIDS-style branching).
type ActivityBumper interface {
	Bump(x domain.ID)
}

// ConjunctionExplainer is implemented by propagators whose explanation is
// naturally a conjunction of predicates rather than a linear inequality
// (e.g. propagation.Nogood, whose disjuncts are already predicates): it
// exposes the raw disjunction so resolution can derive antecedents from it,
// mirroring how LinearExplanation exposes the raw inequality (§4.H).
type ConjunctionExplainer interface {
	ConjunctionExplanation() []domain.Predicate
}

// ResolutionResolver learns a nogood via classical 1-UIP resolution over
// predicates (§4.H). It is IntSat's fallback whenever a conflict cannot be
// explained as a linear inequality, and IntSat also runs it purely for its
// activity-bumping side effect immediately before committing to a learned
// inequality.
type ResolutionResolver struct {
	bumper ActivityBumper
	seen   *resetSet
}

// NewResolutionResolver returns a resolver that bumps activities through
// bumper, which may be nil.
func NewResolutionResolver(bumper ActivityBumper) *ResolutionResolver {
	return &ResolutionResolver{bumper: bumper, seen: newResetSet(0)}
}

// explainedPredicate pairs a predicate derived during analysis with the
// trail position responsible for it, or -1 if it held since the initial
// domain (no trail entry, decision level 0).
type explainedPredicate struct {
	pred domain.Predicate
	pos  int
}

func explainLinearAt(store *domain.Store, ineq domain.LinearInequality, trailPos int, exclude domain.ID) []explainedPredicate {
	out := make([]explainedPredicate, 0, len(ineq.Lhs))
	for _, t := range ineq.Lhs {
		if t.Var == exclude {
			continue
		}
		if t.Coeff > 0 {
			v := store.LowerBoundAt(t.Var, trailPos)
			pos, ok := store.LowerBoundEntryAt(t.Var, trailPos)
			if !ok {
				pos = -1
			}
			out = append(out, explainedPredicate{pred: domain.LB(t.Var, v), pos: pos})
		} else {
			v := store.UpperBoundAt(t.Var, trailPos)
			pos, ok := store.UpperBoundEntryAt(t.Var, trailPos)
			if !ok {
				pos = -1
			}
			out = append(out, explainedPredicate{pred: domain.UB(t.Var, v), pos: pos})
		}
	}
	return out
}

// explainConjunctionAt turns a propagator's raw disjunction of predicates
// (its ConjunctionExplanation) into the antecedents that justify whichever
// disjunct was forced or conflicted: every other disjunct's current
// negation, evaluated at trailPos and excluding the predicate for variable
// exclude. This is ConjunctionExplainer's analogue of explainLinearAt's
// per-term role for linear propagators (§4.H).
func explainConjunctionAt(store *domain.Store, preds []domain.Predicate, trailPos int, exclude domain.ID) []explainedPredicate {
	out := make([]explainedPredicate, 0, len(preds))
	for _, p := range preds {
		if p.Domain() == exclude {
			continue
		}
		neg := p.Opposite()
		out = append(out, explainedPredicate{pred: neg, pos: entryForPredicate(store, neg, trailPos)})
	}
	return out
}

// explainPropagator derives the antecedent predicates for prop's inference
// at trailPos, excluding exclude, using whichever explanation capability
// prop exposes: a linear inequality (§4.E) or a raw conjunction of
// predicates (§4.H). ok is false when prop exposes neither, meaning
// resolution cannot proceed through it.
func explainPropagator(store *domain.Store, prop engine.Propagator, trailPos int, exclude domain.ID) ([]explainedPredicate, bool) {
	if ineq, ok := prop.LinearExplanation(); ok {
		return explainLinearAt(store, ineq, trailPos, exclude), true
	}
	if ce, ok := prop.(ConjunctionExplainer); ok {
		return explainConjunctionAt(store, ce.ConjunctionExplanation(), trailPos, exclude), true
	}
	return nil, false
}

// entryForPredicate finds the trail position responsible for p, searching
// at or before trailPos. Used for the conjunction-reason case, where the
// predicates composing the reason are given directly rather than derived
// from a single inequality.
func entryForPredicate(store *domain.Store, p domain.Predicate, trailPos int) int {
	switch p.Kind() {
	case domain.KindLowerBound:
		if pos, ok := store.LowerBoundEntryAt(p.Domain(), trailPos); ok {
			return pos
		}
	case domain.KindUpperBound:
		if pos, ok := store.UpperBoundEntryAt(p.Domain(), trailPos); ok {
			return pos
		}
	}
	return -1
}

// explainEntry returns the antecedent predicates for the trail entry at
// pos, i.e. the predicates that justify it, evaluated against the domain
// state immediately before pos was applied. ok is false for a decision
// (no reason), which terminates the resolution walk.
func explainEntry(store *domain.Store, eng *engine.Engine, pos int) (preds []explainedPredicate, ok bool) {
	entry := store.TrailEntryAt(pos)
	if entry.Reason == nil {
		return nil, false
	}
	before := pos - 1
	if entry.Reason.IsPropagator() {
		prop := eng.Propagator(entry.Reason.Propagator())
		return explainPropagator(store, prop, before, entry.Predicate.Domain())
	}
	conj := entry.Reason.Conjunction()
	out := make([]explainedPredicate, 0, len(conj))
	for _, p := range conj {
		out = append(out, explainedPredicate{pred: p, pos: entryForPredicate(store, p, before)})
	}
	return out, true
}

// Resolve runs 1-UIP resolution starting from c and returns the learned
// nogood and its backjump level (§4.H). Every propagator in this engine can
// explain itself either as a linear inequality (§4.E) or, like
// propagation.Nogood, as a raw conjunction of predicates (§4.H), so the
// only way Resolve itself gives up is the defensive decision-caused-conflict
// case or a propagator exposing neither capability.
func (r *ResolutionResolver) Resolve(store *domain.Store, eng *engine.Engine, c engine.Conflict) Result {
	level := store.DecisionLevel()
	if level == 0 {
		return Result{Outcome: OutcomeRootConflict, BackjumpLevel: 0}
	}

	if c.FromDecision {
		// Defensive: branchers only ever decide a value within the
		// variable's current domain, so applying a decision should never by
		// itself empty a domain. If it somehow does, there is no propagator
		// to explain against.
		return Result{Outcome: OutcomeRootConflict, BackjumpLevel: 0}
	}

	prop := eng.Propagator(c.Propagator)
	start, ok := explainPropagator(store, prop, store.NumTrailEntries()-1, domain.ID(-1))
	if !ok {
		return Result{Outcome: OutcomeRootConflict, BackjumpLevel: 0}
	}

	return r.resolveFrom(store, eng, start, level)
}

func (r *ResolutionResolver) resolveFrom(store *domain.Store, eng *engine.Engine, start []explainedPredicate, level int) Result {
	r.seen.clear()
	r.seen.expand(store.NumVariables())

	var learned []domain.Predicate
	backtrackLevel := 0
	pending := start
	nImplicationPoints := 0
	nextPos := store.NumTrailEntries() - 1
	var uip domain.Predicate

	for {
		for _, ep := range pending {
			v := int(ep.pred.Domain())
			if v < 0 || r.seen.contains(v) {
				continue
			}
			r.seen.add(v)
			if r.bumper != nil {
				r.bumper.Bump(ep.pred.Domain())
			}

			entryLevel := 0
			if ep.pos >= 0 {
				entryLevel = store.TrailEntryAt(ep.pos).Level
			}
			if entryLevel == level {
				nImplicationPoints++
				continue
			}
			learned = append(learned, ep.pred.Opposite())
			if entryLevel > backtrackLevel {
				backtrackLevel = entryLevel
			}
		}

		// Scan backward for the next seen variable's most recent trail
		// entry: this treats a variable as resolved once any of its bound
		// predicates has been explained, the natural generalisation of
		// per-variable 1-UIP to bound predicates with multiple tightenings.
		var pos int
		for {
			pos = nextPos
			nextPos--
			if pos < 0 {
				// Ran off the trail without reaching a single implication
				// point; this should not happen given the invariants above.
				return Result{Outcome: OutcomeRootConflict, BackjumpLevel: 0}
			}
			entry := store.TrailEntryAt(pos)
			if r.seen.contains(int(entry.Predicate.Domain())) {
				break
			}
		}

		entry := store.TrailEntryAt(pos)
		nImplicationPoints--
		if nImplicationPoints <= 0 {
			uip = entry.Predicate
			break
		}

		next, ok := explainEntry(store, eng, pos)
		if !ok {
			uip = entry.Predicate
			break
		}
		pending = next
	}

	nogood := append([]domain.Predicate{uip.Opposite()}, learned...)
	return Result{Outcome: OutcomeNogood, Nogood: nogood, BackjumpLevel: backtrackLevel}
}
