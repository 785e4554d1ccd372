package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Term is one (coefficient, variable) pair of a LinearInequality's
// left-hand side.
type Term struct {
	Var   ID
	Coeff int32
}

// LinearInequality represents Σ aᵢ·xᵢ <= rhs (§3). Lhs never contains a
// zero coefficient or a duplicated variable; equality between two
// LinearInequality values ignores Lhs ordering.
type LinearInequality struct {
	Lhs []Term
	Rhs int32
}

// NewLinearInequality builds a normalized LinearInequality: terms for the
// same variable are summed together, and zero-coefficient terms are
// dropped.
func NewLinearInequality(terms []Term, rhs int32) LinearInequality {
	byVar := map[ID]int32{}
	order := []ID{}
	for _, t := range terms {
		if _, ok := byVar[t.Var]; !ok {
			order = append(order, t.Var)
		}
		byVar[t.Var] += t.Coeff
	}
	lhs := make([]Term, 0, len(order))
	for _, v := range order {
		if c := byVar[v]; c != 0 {
			lhs = append(lhs, Term{Var: v, Coeff: c})
		}
	}
	return LinearInequality{Lhs: lhs, Rhs: rhs}
}

// ContainsVariable reports whether x appears in Lhs.
func (c LinearInequality) ContainsVariable(x ID) bool {
	_, ok := c.CoefficientOf(x)
	return ok
}

// CoefficientOf returns x's coefficient and whether x appears at all.
func (c LinearInequality) CoefficientOf(x ID) (int32, bool) {
	for _, t := range c.Lhs {
		if t.Var == x {
			return t.Coeff, true
		}
	}
	return 0, false
}

// Clone returns a deep copy of c.
func (c LinearInequality) Clone() LinearInequality {
	lhs := make([]Term, len(c.Lhs))
	copy(lhs, c.Lhs)
	return LinearInequality{Lhs: lhs, Rhs: c.Rhs}
}

// Equal reports structural equality, ignoring Lhs ordering (§3).
func (c LinearInequality) Equal(other LinearInequality) bool {
	if c.Rhs != other.Rhs || len(c.Lhs) != len(other.Lhs) {
		return false
	}
	a := append([]Term(nil), c.Lhs...)
	b := append([]Term(nil), other.Lhs...)
	byVarID := func(s []Term) { sort.Slice(s, func(i, j int) bool { return s[i].Var < s[j].Var }) }
	byVarID(a)
	byVarID(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// lbContribution is the minimal value a_i*x_i can currently take: a_i*lb(x_i)
// for a positive coefficient, a_i*ub(x_i) for a negative one.
func lbContribution(s *Store, t Term, trailPos int) int64 {
	if t.Coeff > 0 {
		return int64(t.Coeff) * int64(s.LowerBoundAt(t.Var, trailPos))
	}
	return int64(t.Coeff) * int64(s.UpperBoundAt(t.Var, trailPos))
}

// LowerBoundSum returns Σ aᵢ·lb(xᵢ) (bound chosen per sign of aᵢ) at the
// given trail position.
func (c LinearInequality) LowerBoundSum(s *Store, trailPos int) int64 {
	var sum int64
	for _, t := range c.Lhs {
		sum += lbContribution(s, t, trailPos)
	}
	return sum
}

// Slack returns rhs - LowerBoundSum; non-negative when the inequality is
// satisfiable at the given bounds.
func (c LinearInequality) Slack(s *Store, trailPos int) int64 {
	return int64(c.Rhs) - c.LowerBoundSum(s, trailPos)
}

// IsConflicting reports whether the inequality evaluates to false at the
// given trail position.
func (c LinearInequality) IsConflicting(s *Store, trailPos int) bool {
	return c.Slack(s, trailPos) < 0
}

// IsPropagating reports whether some term's current upper contribution
// exceeds what the inequality would allow, i.e. there is a tighter bound
// left to propagate (§4.G step 6).
func (c LinearInequality) IsPropagating(s *Store, trailPos int) bool {
	lbLhs := c.LowerBoundSum(s, trailPos)
	for _, t := range c.Lhs {
		var xLower, xUpper int64
		if t.Coeff > 0 {
			xLower = int64(t.Coeff) * int64(s.LowerBoundAt(t.Var, trailPos))
			xUpper = int64(t.Coeff) * int64(s.UpperBoundAt(t.Var, trailPos))
		} else {
			xLower = int64(t.Coeff) * int64(s.UpperBoundAt(t.Var, trailPos))
			xUpper = int64(t.Coeff) * int64(s.LowerBoundAt(t.Var, trailPos))
		}
		bound := int64(c.Rhs) - (lbLhs - xLower)
		if xUpper > bound {
			return true
		}
	}
	return false
}

// Overflows reports whether evaluating c at trailPos would overflow int32
// arithmetic, used by the conflict resolver before committing to a
// candidate cut (§4.G).
func (c LinearInequality) Overflows(s *Store, trailPos int) bool {
	const maxI32 = int64(1)<<31 - 1
	const minI32 = -int64(1) << 31

	for _, t := range c.Lhs {
		var bound int64
		if t.Coeff < 0 {
			bound = int64(s.UpperBoundAt(t.Var, trailPos))
		} else {
			bound = int64(s.LowerBoundAt(t.Var, trailPos))
		}
		prod := int64(t.Coeff) * bound
		if prod > maxI32 || prod < minI32 {
			return true
		}
	}

	slack := c.Slack(s, trailPos)
	for _, t := range c.Lhs {
		lb := s.LowerBoundAt(t.Var, trailPos)
		if t.Coeff < 0 {
			lb = s.UpperBoundAt(t.Var, trailPos)
		}
		v := slack + int64(t.Coeff)*int64(lb)
		if v > maxI32 || v < minI32 {
			return true
		}
	}
	return false
}

// Explain returns, for every term other than exclude, the predicate that
// realized its contribution to LowerBoundSum at trailPos ([x >= lb] for a
// positive coefficient, [x <= ub] for a negative one). This turns a
// propagator's inequality into the conjunction-of-predicates shape that
// resolution-based conflict analysis consumes (§4.H).
func (c LinearInequality) Explain(s *Store, trailPos int, exclude ID) []Predicate {
	preds := make([]Predicate, 0, len(c.Lhs))
	for _, t := range c.Lhs {
		if t.Var == exclude {
			continue
		}
		if t.Coeff > 0 {
			preds = append(preds, LB(t.Var, s.LowerBoundAt(t.Var, trailPos)))
		} else {
			preds = append(preds, UB(t.Var, s.UpperBoundAt(t.Var, trailPos)))
		}
	}
	return preds
}

func (c LinearInequality) String() string {
	parts := make([]string, 0, len(c.Lhs))
	sorted := append([]Term(nil), c.Lhs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Var < sorted[j].Var })
	for _, t := range sorted {
		switch t.Coeff {
		case 1:
			parts = append(parts, t.Var.String())
		case -1:
			parts = append(parts, "-"+t.Var.String())
		default:
			parts = append(parts, fmt.Sprintf("%d%s", t.Coeff, t.Var))
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("0 <= %d", c.Rhs)
	}
	return fmt.Sprintf("%s <= %d", strings.Join(parts, " + "), c.Rhs)
}
