package domain

// IntVar is the capability set that raw DomainIds, AffineViews, and nested
// AffineViews over AffineViews all satisfy: bound-read, bound-write,
// watch-register and event-unpack (§9 "Polymorphism"). LinearLessEqual
// registers its watches through it; bound writes in the propagators, and
// the branchers, work on raw IDs through the Store.
type IntVar interface {
	LowerBound(s *Store) int32
	UpperBound(s *Store) int32
	Contains(s *Store, v int32) bool
	LowerBoundAt(s *Store, t int) int32
	UpperBoundAt(s *Store, t int) int32
	SetLowerBound(s *Store, v int32, reason *Reason) error
	SetUpperBound(s *Store, v int32, reason *Reason) error
	WatchLowerBound(s *Store, prop PropagatorID, local LocalID)
	WatchUpperBound(s *Store, prop PropagatorID, local LocalID)
	WatchAssign(s *Store, prop PropagatorID, local LocalID)
	// Scaled returns a·self.
	Scaled(a int32) AffineView
	// Offset returns self+b.
	Offset(b int32) AffineView
}

// baseVar adapts a raw DomainId to the IntVar interface, i.e. AffineView
// with scale 1, offset 0 without the indirection.
type baseVar struct{ id ID }

func (b baseVar) LowerBound(s *Store) int32               { return s.LowerBound(b.id) }
func (b baseVar) UpperBound(s *Store) int32                { return s.UpperBound(b.id) }
func (b baseVar) Contains(s *Store, v int32) bool          { return s.Contains(b.id, v) }
func (b baseVar) LowerBoundAt(s *Store, t int) int32       { return s.LowerBoundAt(b.id, t) }
func (b baseVar) UpperBoundAt(s *Store, t int) int32       { return s.UpperBoundAt(b.id, t) }
func (b baseVar) SetLowerBound(s *Store, v int32, r *Reason) error {
	return s.TightenLowerBound(b.id, v, r)
}
func (b baseVar) SetUpperBound(s *Store, v int32, r *Reason) error {
	return s.TightenUpperBound(b.id, v, r)
}
func (b baseVar) WatchLowerBound(s *Store, prop PropagatorID, local LocalID) {
	s.Watch(prop, b.id, EventLowerBound, local)
}
func (b baseVar) WatchUpperBound(s *Store, prop PropagatorID, local LocalID) {
	s.Watch(prop, b.id, EventUpperBound, local)
}
func (b baseVar) WatchAssign(s *Store, prop PropagatorID, local LocalID) {
	s.Watch(prop, b.id, EventAssign, local)
}
func (b baseVar) Scaled(a int32) AffineView { return AffineView{inner: b, scale: a, offset: 0} }
func (b baseVar) Offset(c int32) AffineView { return AffineView{inner: b, scale: 1, offset: c} }

// Var wraps a raw DomainId as an IntVar, so it can be used anywhere an
// AffineView is expected (the identity view).
func Var(id ID) IntVar { return baseVar{id} }

// AffineView represents y = scale*inner + offset (§3, §4.B). It is a
// read/write adapter over inner, not an independent domain: every bound
// read or write delegates to inner with the scale inverted. scale must
// never be zero.
type AffineView struct {
	inner IntVar
	scale int32
	offset int32
}

// NewAffineView builds y = scale*inner + offset.
func NewAffineView(inner IntVar, scale, offset int32) AffineView {
	if scale == 0 {
		panic("affine view scale must be non-zero")
	}
	return AffineView{inner: inner, scale: scale, offset: offset}
}

func (v AffineView) mapForward(x int32) int32 {
	return v.scale*x + v.offset
}

// divFloor and divCeil implement the rounding rules §4.B needs when
// inverting a bound through a (possibly negative) scale, since Go's
// integer division truncates toward zero rather than flooring.
func divFloor(a, b int32) int32 {
	q := a / b
	r := a % b
	if (r != 0) && ((r < 0) != (b < 0)) {
		q--
	}
	return q
}

func divCeil(a, b int32) int32 {
	q := a / b
	r := a % b
	if (r != 0) && ((r < 0) == (b < 0)) {
		q++
	}
	return q
}

// invertCeil and invertFloor map a value in the view's domain back to a
// value in inner's domain, rounding up or down respectively.
func (v AffineView) invertCeil(value int32) int32 {
	return divCeil(value-v.offset, v.scale)
}

func (v AffineView) invertFloor(value int32) int32 {
	return divFloor(value-v.offset, v.scale)
}

// LowerBound returns a*lb(x)+b for a>0, or a*ub(x)+b for a<0 (§4.B, §8).
func (v AffineView) LowerBound(s *Store) int32 {
	if v.scale > 0 {
		return v.mapForward(v.inner.LowerBound(s))
	}
	return v.mapForward(v.inner.UpperBound(s))
}

// UpperBound is the mirror of LowerBound.
func (v AffineView) UpperBound(s *Store) int32 {
	if v.scale > 0 {
		return v.mapForward(v.inner.UpperBound(s))
	}
	return v.mapForward(v.inner.LowerBound(s))
}

func (v AffineView) LowerBoundAt(s *Store, t int) int32 {
	if v.scale > 0 {
		return v.mapForward(v.inner.LowerBoundAt(s, t))
	}
	return v.mapForward(v.inner.UpperBoundAt(s, t))
}

func (v AffineView) UpperBoundAt(s *Store, t int) int32 {
	if v.scale > 0 {
		return v.mapForward(v.inner.UpperBoundAt(s, t))
	}
	return v.mapForward(v.inner.LowerBoundAt(s, t))
}

// Contains reports whether value is attainable through this view: (value -
// offset) must be a multiple of scale, and the corresponding inner value
// must be in inner's domain (§4.B).
func (v AffineView) Contains(s *Store, value int32) bool {
	diff := value - v.offset
	if diff%v.scale != 0 {
		return false
	}
	return v.inner.Contains(s, diff/v.scale)
}

// SetLowerBound tightens inner's bound that corresponds to [y >= value]:
// the inner lower bound when scale > 0 (ceil rounding), the inner upper
// bound when scale < 0 (floor rounding) (§4.B).
func (v AffineView) SetLowerBound(s *Store, value int32, reason *Reason) error {
	if v.scale > 0 {
		return v.inner.SetLowerBound(s, v.invertCeil(value), reason)
	}
	return v.inner.SetUpperBound(s, v.invertFloor(value), reason)
}

// SetUpperBound tightens inner's bound that corresponds to [y <= value]
// (§4.B).
func (v AffineView) SetUpperBound(s *Store, value int32, reason *Reason) error {
	if v.scale > 0 {
		return v.inner.SetUpperBound(s, v.invertFloor(value), reason)
	}
	return v.inner.SetLowerBound(s, v.invertCeil(value), reason)
}

// WatchLowerBound registers for [y's lower bound changed]. When scale < 0
// this corresponds to inner's UpperBound event (§4.B).
func (v AffineView) WatchLowerBound(s *Store, prop PropagatorID, local LocalID) {
	if v.scale > 0 {
		v.inner.WatchLowerBound(s, prop, local)
	} else {
		v.inner.WatchUpperBound(s, prop, local)
	}
}

// WatchUpperBound is the mirror of WatchLowerBound.
func (v AffineView) WatchUpperBound(s *Store, prop PropagatorID, local LocalID) {
	if v.scale > 0 {
		v.inner.WatchUpperBound(s, prop, local)
	} else {
		v.inner.WatchLowerBound(s, prop, local)
	}
}

// WatchAssign forwards unchanged: whether x or y becomes fixed is the same
// event regardless of scale sign.
func (v AffineView) WatchAssign(s *Store, prop PropagatorID, local LocalID) {
	v.inner.WatchAssign(s, prop, local)
}

// Scaled composes views by multiplying scales and transforming the offset:
// (a*inner+b).Scaled(k) == k*a*inner + k*b (§4.B).
func (v AffineView) Scaled(k int32) AffineView {
	return AffineView{inner: v.inner, scale: v.scale * k, offset: v.offset * k}
}

// Offset adds a constant: (a*inner+b).Offset(k) == a*inner + (b+k) (§4.B).
func (v AffineView) Offset(k int32) AffineView {
	return AffineView{inner: v.inner, scale: v.scale, offset: v.offset + k}
}

// Scale returns the view's multiplicative coefficient.
func (v AffineView) Scale() int32 { return v.scale }

// OffsetValue returns the view's additive offset.
func (v AffineView) OffsetValue() int32 { return v.offset }
