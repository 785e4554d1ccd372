package conflict

import (
	"github.com/rhartert/yalis/internal/domain"
	"github.com/rhartert/yalis/internal/engine"
)

// IntSatResolver learns a cutting-plane linear inequality by repeatedly
// cancelling the conflicting constraint against the explanation of the
// trail entry that makes it infeasible (§4.G). It falls back to classical
// 1-UIP resolution whenever the cut cannot be carried through: the
// conflict was not caused by a linear-inequality propagator, a decision
// was reached before a cut closed, overflow occurred, or the cut yielded
// nothing useful.
type IntSatResolver struct {
	fallback *ResolutionResolver
}

// NewIntSatResolver returns a resolver whose fallback bumps activities
// through bumper (which may be nil).
func NewIntSatResolver(bumper ActivityBumper) *IntSatResolver {
	return &IntSatResolver{fallback: NewResolutionResolver(bumper)}
}

// cutResult is the outcome of eliminating one variable between two
// inequalities with opposite-signed coefficients on it.
type cutResult struct {
	kind               cutKind
	inequality         domain.LinearInequality
	skipEarlyBackjump  bool
}

type cutKind int

const (
	cutSuccess cutKind = iota
	cutNothingLearned
	cutOverflow
	cutContradiction
)

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

const cutI32Max = int64(1)<<31 - 1
const cutI32Min = -int64(1) << 31

func fitsI32(v int64) bool { return v >= cutI32Min && v <= cutI32Max }

// applyCut eliminates v between c1 and c2, whose coefficients on v must
// have opposite signs, by multiplying each side so that var's coefficient
// cancels and adding them (§4.G).
func applyCut(v domain.ID, c1, c2 domain.LinearInequality) cutResult {
	c1Scale, _ := c1.CoefficientOf(v)
	c2Scale, _ := c2.CoefficientOf(v)

	g := gcd(int64(c1Scale), int64(c2Scale))
	if g == 0 {
		g = 1
	}
	mult1 := abs64(int64(c2Scale)) / g
	mult2 := abs64(int64(c1Scale)) / g

	skipEarlyBackjump := true
	newLhs := map[domain.ID]int64{}
	order := []domain.ID{}

	for _, t := range c1.Lhs {
		scaled := int64(t.Coeff) * mult1
		if !fitsI32(scaled) {
			return cutResult{kind: cutOverflow}
		}
		newLhs[t.Var] = scaled
		order = append(order, t.Var)
	}

	for _, t := range c2.Lhs {
		scaled := int64(t.Coeff) * mult2
		if !fitsI32(scaled) {
			return cutResult{kind: cutOverflow}
		}
		if cur, present := newLhs[t.Var]; present {
			if t.Var != v {
				skipEarlyBackjump = false
			}
			sum := cur + scaled
			if !fitsI32(sum) {
				return cutResult{kind: cutOverflow}
			}
			newLhs[t.Var] = sum
		} else {
			newLhs[t.Var] = scaled
			order = append(order, t.Var)
		}
	}

	c1RhsScaled := int64(c1.Rhs) * mult1
	c2RhsScaled := int64(c2.Rhs) * mult2
	if !fitsI32(c1RhsScaled) || !fitsI32(c2RhsScaled) {
		return cutResult{kind: cutOverflow}
	}
	newRhs := c1RhsScaled + c2RhsScaled
	if !fitsI32(newRhs) {
		return cutResult{kind: cutOverflow}
	}

	terms := make([]domain.Term, 0, len(order))
	for _, id := range order {
		if id == v {
			continue
		}
		if c := newLhs[id]; c != 0 {
			terms = append(terms, domain.Term{Var: id, Coeff: int32(c)})
		}
	}

	if len(terms) == 0 {
		if newRhs < 0 {
			return cutResult{kind: cutContradiction}
		}
		return cutResult{kind: cutNothingLearned}
	}

	newGcd := int64(0)
	for _, t := range terms {
		newGcd = gcd(newGcd, int64(t.Coeff))
	}
	newGcd = gcd(newGcd, newRhs)
	if newGcd == 0 {
		newGcd = 1
	}

	for i := range terms {
		terms[i].Coeff = int32(divCeil64(int64(terms[i].Coeff), newGcd))
	}
	newRhs = divCeil64(newRhs, newGcd)

	return cutResult{
		kind:              cutSuccess,
		inequality:        domain.NewLinearInequality(terms, int32(newRhs)),
		skipEarlyBackjump: skipEarlyBackjump,
	}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func divCeil64(a, b int64) int64 {
	q := a / b
	r := a % b
	if r != 0 && (r < 0) == (b < 0) {
		q++
	}
	return q
}

// Resolve runs cutting-plane conflict analysis, falling back to classical
// resolution whenever the cut cannot proceed (§4.G, §7).
func (r *IntSatResolver) Resolve(store *domain.Store, eng *engine.Engine, c engine.Conflict) Result {
	if store.DecisionLevel() == 0 {
		return Result{Outcome: OutcomeRootConflict, BackjumpLevel: 0}
	}
	if c.FromDecision {
		return r.fallback.Resolve(store, eng, c)
	}

	prop := eng.Propagator(c.Propagator)
	conflicting, ok := prop.LinearExplanation()
	if !ok {
		return r.fallback.Resolve(store, eng, c)
	}

	currentLevel := store.DecisionLevel()
	trailIdx := store.NumTrailEntries() - 1

	for {
		var cuttingVar domain.ID
		found := false
		for {
			if trailIdx < 0 {
				return r.fallback.Resolve(store, eng, c)
			}
			entry := store.TrailEntryAt(trailIdx)
			v := entry.Predicate.Domain()

			if entry.Reason == nil {
				return r.fallback.Resolve(store, eng, c) // decision reached
			}
			if !conflicting.ContainsVariable(v) {
				trailIdx--
				continue
			}
			if conflicting.IsConflicting(store, trailIdx) {
				cuttingVar = v
				found = true
				trailIdx--
				break
			}
			trailIdx--
		}
		if !found {
			return r.fallback.Resolve(store, eng, c)
		}

		entryPos := trailIdx + 1
		entry := store.TrailEntryAt(entryPos)
		if !entry.Reason.IsPropagator() {
			return r.fallback.Resolve(store, eng, c) // conjunction reason: not a linear explanation
		}
		propExpl := eng.Propagator(entry.Reason.Propagator())
		propConstraint, ok := propExpl.LinearExplanation()
		if !ok {
			return r.fallback.Resolve(store, eng, c)
		}

		c1Scale, _ := conflicting.CoefficientOf(cuttingVar)
		c2Scale, _ := propConstraint.CoefficientOf(cuttingVar)
		if (c1Scale > 0) == (c2Scale > 0) {
			continue // same sign: not the actual culprit, keep scanning
		}

		cut := applyCut(cuttingVar, conflicting, propConstraint)
		switch cut.kind {
		case cutNothingLearned, cutOverflow:
			return r.fallback.Resolve(store, eng, c)
		case cutContradiction:
			return Result{Outcome: OutcomeRootConflict, BackjumpLevel: 0}
		}

		if cut.inequality.Overflows(store, trailIdx) {
			return r.fallback.Resolve(store, eng, c)
		}
		if !cut.inequality.IsConflicting(store, trailIdx) {
			return r.fallback.Resolve(store, eng, c)
		}

		conflicting = cut.inequality
		if cut.skipEarlyBackjump {
			continue
		}

		for backjumpLevel := 0; backjumpLevel < currentLevel; backjumpLevel++ {
			backjumpTrailLevel := store.TrailPositionForLevel(backjumpLevel) - 1
			if conflicting.Overflows(store, backjumpTrailLevel) {
				return r.fallback.Resolve(store, eng, c)
			}
			propagating := conflicting.IsPropagating(store, backjumpTrailLevel)
			isFalse := conflicting.IsConflicting(store, backjumpTrailLevel)
			if propagating || isFalse {
				// Run resolution purely for its activity-bumping side
				// effect; its learned nogood is discarded here (§4.H).
				_ = r.fallback.Resolve(store, eng, c)

				return Result{
					Outcome:       OutcomeConstraint,
					Constraint:    conflicting,
					BackjumpLevel: backjumpLevel,
				}
			}
		}
	}
}
