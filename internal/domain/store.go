package domain

import "sort"

// TrailEntry records one predicate application: which predicate became
// true, why (nil reason means a decision), and at which decision level
// (§3). Entries also carry enough undo information for Synchronise to
// restore the exact prior domain state.
type TrailEntry struct {
	Predicate Predicate
	Reason    *Reason
	Level     int

	kind        undoKind
	restoreLow  int32
	restoreHigh int32
	holes       []int32 // holes absorbed (bound tighten) or the one hole removed
}

type undoKind uint8

const (
	undoLowerBound undoKind = iota
	undoUpperBound
	undoHole
)

// variable holds the per-variable bookkeeping the Store needs beyond the
// live domainState: the variable's immutable initial bounds, and the trail
// positions at which its bounds last changed (to answer LowerBoundAt /
// UpperBoundAt in better than linear time).
type variable struct {
	state       domainState
	initLower   int32
	initUpper   int32
	lowerTrail  []int // trail indices, ascending
	upperTrail  []int
}

// Store is the integer-domain store with a trail (§4.A), coupled with the
// watch lists and propagator queue (§4.D) that bound-changing operations
// notify synchronously.
type Store struct {
	vars []variable

	trail    []TrailEntry
	trailLim []int // trail length at the start of each decision level > 0

	watches       watchLists
	queue         *PropagatorQueue
	propPriority  []int

	unassignObservers []UnassignObserver
}

// UnassignObserver is notified when Synchronise undoes a variable's
// assignment, i.e. it goes from fixed to a single value back to having more
// than one value in its domain. A brancher that removes candidates from a
// selection structure once picked (e.g. branching.ActivityBrancher's heap)
// registers itself here so a variable fixed only by propagation, and later
// unassigned by a backjump, is not lost from the candidate pool (§9).
type UnassignObserver interface {
	VariableUnassigned(x ID)
}

// OnUnassign registers o to be notified by every future Synchronise call
// that unassigns a previously fixed variable.
func (s *Store) OnUnassign(o UnassignObserver) {
	s.unassignObservers = append(s.unassignObservers, o)
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{queue: NewPropagatorQueue()}
}

// NewBoundedInteger creates a new DomainId with the given inclusive bounds.
func (s *Store) NewBoundedInteger(lb, ub int32) ID {
	id := ID(len(s.vars))
	s.vars = append(s.vars, variable{
		state:     newDomainState(lb, ub),
		initLower: lb,
		initUpper: ub,
	})
	s.watches.expand()
	return id
}

// NewPropagator allocates a fresh PropagatorID with the given priority in
// [0, NumPriorityLevels).
func (s *Store) NewPropagator(priority int) PropagatorID {
	id := PropagatorID(len(s.propPriority))
	s.propPriority = append(s.propPriority, priority)
	return id
}

// Watch registers prop (under the given LocalID) to be notified when evt
// fires on x.
func (s *Store) Watch(prop PropagatorID, x ID, evt Event, local LocalID) {
	s.watches.register(x, evt, prop, local)
}

// Queue returns the propagator queue that the propagation engine drains.
func (s *Store) Queue() *PropagatorQueue {
	return s.queue
}

// NumVariables returns the number of declared DomainIds.
func (s *Store) NumVariables() int {
	return len(s.vars)
}

// LowerBound returns the current lower bound of x.
func (s *Store) LowerBound(x ID) int32 {
	return s.vars[x].state.lower
}

// UpperBound returns the current upper bound of x.
func (s *Store) UpperBound(x ID) int32 {
	return s.vars[x].state.upper
}

// Contains reports whether v is still in the domain of x.
func (s *Store) Contains(x ID, v int32) bool {
	return s.vars[x].state.contains(v)
}

// IsAssigned reports whether x is fixed to a single value.
func (s *Store) IsAssigned(x ID) bool {
	v := &s.vars[x].state
	return v.lower == v.upper
}

// DecisionLevel returns the number of decisions currently on the trail.
func (s *Store) DecisionLevel() int {
	return len(s.trailLim)
}

// NumTrailEntries returns the number of entries currently on the trail.
func (s *Store) NumTrailEntries() int {
	return len(s.trail)
}

// TrailEntryAt returns the trail entry at the given position.
func (s *Store) TrailEntryAt(pos int) TrailEntry {
	return s.trail[pos]
}

// TrailPositionForLevel returns the trail index *after* the last entry of
// decision level L (equivalently, the number of trail entries with level
// <= L). This is the "backjump-level semantics" convention used throughout
// the engine and conflict resolvers (§9).
func (s *Store) TrailPositionForLevel(level int) int {
	if level >= len(s.trailLim) {
		return len(s.trail)
	}
	return s.trailLim[level]
}

// PushDecisionLevel starts a new decision level. The driver calls this
// before applying a decision predicate.
func (s *Store) PushDecisionLevel() {
	s.trailLim = append(s.trailLim, len(s.trail))
}

func (s *Store) notify(x ID, evt Event) {
	for _, w := range s.watches.watchersFor(x, evt) {
		s.queue.Enqueue(w.prop, s.propPriority[w.prop])
	}
}

func (s *Store) appendTrail(entry TrailEntry) {
	entry.Level = s.DecisionLevel()
	s.trail = append(s.trail, entry)
}

// TightenLowerBound raises lb(x) to v if v > lb(x). Returns ErrEmptyDomain
// if v > ub(x) (§4.A).
func (s *Store) TightenLowerBound(x ID, v int32, reason *Reason) error {
	vr := &s.vars[x]
	st := &vr.state
	if v > st.upper {
		return ErrEmptyDomain
	}
	if v <= st.lower {
		return nil
	}

	oldLower := st.lower
	absorbed := absorbHolesBelow(st, v)
	st.lower = v

	pos := len(s.trail)
	s.appendTrail(TrailEntry{
		Predicate:  LB(x, v),
		Reason:     reason,
		kind:       undoLowerBound,
		restoreLow: oldLower,
		holes:      absorbed,
	})
	vr.lowerTrail = append(vr.lowerTrail, pos)

	s.notify(x, EventLowerBound)
	if st.lower == st.upper {
		s.notify(x, EventAssign)
	}
	return nil
}

// TightenUpperBound lowers ub(x) to v if v < ub(x). Returns ErrEmptyDomain
// if v < lb(x) (§4.A).
func (s *Store) TightenUpperBound(x ID, v int32, reason *Reason) error {
	vr := &s.vars[x]
	st := &vr.state
	if v < st.lower {
		return ErrEmptyDomain
	}
	if v >= st.upper {
		return nil
	}

	oldUpper := st.upper
	absorbed := absorbHolesAbove(st, v)
	st.upper = v

	pos := len(s.trail)
	s.appendTrail(TrailEntry{
		Predicate:   UB(x, v),
		Reason:      reason,
		kind:        undoUpperBound,
		restoreHigh: oldUpper,
		holes:       absorbed,
	})
	vr.upperTrail = append(vr.upperTrail, pos)

	s.notify(x, EventUpperBound)
	if st.lower == st.upper {
		s.notify(x, EventAssign)
	}
	return nil
}

// RemoveValue removes v from dom(x). If v is outside [lb(x), ub(x)] this is
// a no-op. If v equals a current bound, the bound is tightened instead of
// recording an interior hole (§4.A).
func (s *Store) RemoveValue(x ID, v int32, reason *Reason) error {
	st := &s.vars[x].state
	if v < st.lower || v > st.upper {
		return nil
	}
	if v == st.lower {
		next := st.smallestAtOrAbove(v + 1)
		return s.TightenLowerBound(x, next, reason)
	}
	if v == st.upper {
		prev := st.largestAtOrBelow(v - 1)
		return s.TightenUpperBound(x, prev, reason)
	}

	st.addHole(v)
	s.appendTrail(TrailEntry{
		Predicate: NE(x, v),
		Reason:    reason,
		kind:      undoHole,
		holes:     []int32{v},
	})
	s.notify(x, EventHole)
	return nil
}

// MakeAssignment tightens both bounds of x to v (§4.A).
func (s *Store) MakeAssignment(x ID, v int32, reason *Reason) error {
	if err := s.TightenLowerBound(x, v, reason); err != nil {
		return err
	}
	return s.TightenUpperBound(x, v, reason)
}

// Synchronise truncates the trail back to decision level L, restoring every
// domain bound and hole exactly as it was immediately after the last entry
// with level <= L (§4.A, §8).
func (s *Store) Synchronise(level int) {
	for s.DecisionLevel() > level {
		start := s.trailLim[len(s.trailLim)-1]
		s.trailLim = s.trailLim[:len(s.trailLim)-1]
		for i := len(s.trail) - 1; i >= start; i-- {
			s.undo(i)
		}
		s.trail = s.trail[:start]
	}
}

func (s *Store) undo(pos int) {
	e := &s.trail[pos]
	x := e.Predicate.Domain()
	vr := &s.vars[x]
	st := &vr.state
	wasAssigned := st.lower == st.upper

	switch e.kind {
	case undoLowerBound:
		st.lower = e.restoreLow
		for _, h := range e.holes {
			st.addHole(h)
		}
		vr.lowerTrail = vr.lowerTrail[:len(vr.lowerTrail)-1]
	case undoUpperBound:
		st.upper = e.restoreHigh
		for _, h := range e.holes {
			st.addHole(h)
		}
		vr.upperTrail = vr.upperTrail[:len(vr.upperTrail)-1]
	case undoHole:
		st.removeHole(e.holes[0])
	}

	if wasAssigned && st.lower != st.upper {
		for _, o := range s.unassignObservers {
			o.VariableUnassigned(x)
		}
	}
}

// LowerBoundAt returns the value lb(x) had immediately after trail position
// t (t == -1 means "before any trail entry", i.e. the initial bound).
func (s *Store) LowerBoundAt(x ID, t int) int32 {
	vr := &s.vars[x]
	idx := vr.lowerTrail
	i := sort.Search(len(idx), func(i int) bool { return idx[i] > t })
	if i == 0 {
		return vr.initLower
	}
	return s.trail[idx[i-1]].Predicate.Value()
}

// UpperBoundAt is the symmetric counterpart of LowerBoundAt.
func (s *Store) UpperBoundAt(x ID, t int) int32 {
	vr := &s.vars[x]
	idx := vr.upperTrail
	i := sort.Search(len(idx), func(i int) bool { return idx[i] > t })
	if i == 0 {
		return vr.initUpper
	}
	return s.trail[idx[i-1]].Predicate.Value()
}

// LowerBoundEntryAt returns the trail position of the entry that set the
// lower bound lb(x) has at trail position t, and false if that bound is
// still x's initial lower bound (no trail entry responsible).
func (s *Store) LowerBoundEntryAt(x ID, t int) (int, bool) {
	vr := &s.vars[x]
	idx := vr.lowerTrail
	i := sort.Search(len(idx), func(i int) bool { return idx[i] > t })
	if i == 0 {
		return 0, false
	}
	return idx[i-1], true
}

// UpperBoundEntryAt is the symmetric counterpart of LowerBoundEntryAt.
func (s *Store) UpperBoundEntryAt(x ID, t int) (int, bool) {
	vr := &s.vars[x]
	idx := vr.upperTrail
	i := sort.Search(len(idx), func(i int) bool { return idx[i] > t })
	if i == 0 {
		return 0, false
	}
	return idx[i-1], true
}

func absorbHolesBelow(st *domainState, newLower int32) []int32 {
	if st.holes == nil {
		return nil
	}
	var removed []int32
	for v := range st.holes {
		if v < newLower {
			removed = append(removed, v)
		}
	}
	for _, v := range removed {
		delete(st.holes, v)
	}
	return removed
}

func absorbHolesAbove(st *domainState, newUpper int32) []int32 {
	if st.holes == nil {
		return nil
	}
	var removed []int32
	for v := range st.holes {
		if v > newUpper {
			removed = append(removed, v)
		}
	}
	for _, v := range removed {
		delete(st.holes, v)
	}
	return removed
}
