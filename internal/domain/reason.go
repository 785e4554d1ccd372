package domain

// Reason justifies a trail entry: either a propositional conjunction of
// predicates, or an opaque reference to the propagator that produced the
// inference. The latter lets a conflict resolver re-derive a linear
// explanation lazily instead of storing it eagerly (§3, §9).
type Reason struct {
	conjunction []Predicate
	propagator  PropagatorID
	hasProp     bool
}

// Conjunction builds a Reason that is a propositional conjunction of
// predicates (used for resolution-based explanations).
func Conjunction(preds ...Predicate) *Reason {
	return &Reason{conjunction: preds}
}

// FromPropagator builds a Reason that refers back to the propagator that
// produced the inference.
func FromPropagator(p PropagatorID) *Reason {
	return &Reason{propagator: p, hasProp: true}
}

// IsPropagator reports whether this Reason refers to a propagator rather
// than carrying an explicit conjunction.
func (r *Reason) IsPropagator() bool {
	return r != nil && r.hasProp
}

// Propagator returns the referenced propagator. Only valid if IsPropagator.
func (r *Reason) Propagator() PropagatorID {
	return r.propagator
}

// Conjunction returns the explicit list of predicates. Only valid if
// !IsPropagator.
func (r *Reason) Conjunction() []Predicate {
	return r.conjunction
}
