package domain

// ApplyPredicate applies p directly against store, attributing the change
// to reason. It is the shared mechanism behind both decisions (reason ==
// nil, §6 "decide") and nogood-propagator unit propagation
// (internal/propagation.Nogood), since both ultimately reduce a Predicate
// to one of the Store's four primitive bound operations.
func ApplyPredicate(store *Store, reason *Reason, p Predicate) error {
	switch p.Kind() {
	case KindTrue:
		return nil
	case KindFalse:
		return ErrEmptyDomain
	case KindLowerBound:
		return store.TightenLowerBound(p.Domain(), p.Value(), reason)
	case KindUpperBound:
		return store.TightenUpperBound(p.Domain(), p.Value(), reason)
	case KindEqual:
		return store.MakeAssignment(p.Domain(), p.Value(), reason)
	case KindNotEqual:
		return store.RemoveValue(p.Domain(), p.Value(), reason)
	default:
		return nil
	}
}
