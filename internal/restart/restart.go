// Package restart implements restart policies (when to abandon the current
// search path and resume from the root with accumulated learned
// constraints/nogoods still in place), plus an exponential moving average
// type. Policy decides on conflict counts alone and does not use EMA.
package restart

// SequenceGenerator produces the number of conflicts to allow before the
// next restart, one call per restart.
type SequenceGenerator interface {
	Next() int64
}

// ConstantSequence always returns the same interval.
type ConstantSequence struct {
	interval int64
}

// NewConstantSequence returns a generator that always yields interval.
func NewConstantSequence(interval int64) *ConstantSequence {
	return &ConstantSequence{interval: interval}
}

func (c *ConstantSequence) Next() int64 { return c.interval }

// LubySequence produces the Luby restart sequence (1, 1, 2, 1, 1, 2, 4, 1,
// 1, 2, 1, 1, 2, 4, 8, ...) scaled by a base interval.
type LubySequence struct {
	base  int64
	index int64
}

// NewLubySequence returns a Luby generator scaled by base.
func NewLubySequence(base int64) *LubySequence {
	return &LubySequence{base: base}
}

func (l *LubySequence) Next() int64 {
	l.index++
	return l.base * luby(l.index)
}

// luby returns the i-th term (1-indexed) of the unscaled Luby sequence.
func luby(i int64) int64 {
	// Find k such that i == 2^k - 1.
	k := int64(1)
	for k < i+1 {
		k *= 2
	}
	if k-1 == i {
		return k / 2
	}
	return luby(i - k/2 + 1)
}

// EMA is an exponential moving average, used to track the recent rate of a
// quantity (e.g. learned-constraint length) without storing its full
// history.
type EMA struct {
	decay float64
	value float64
	init  bool
}

// NewEMA returns an EMA with the given decay in (0,1): higher decay weighs
// history more heavily relative to new samples.
func NewEMA(decay float64) EMA {
	return EMA{decay: decay}
}

// Add folds a new sample into the average.
func (ema *EMA) Add(x float64) {
	if !ema.init {
		ema.init = true
		ema.value = x
	} else {
		ema.value = ema.decay*ema.value + x*(1-ema.decay)
	}
}

// Value returns the current average.
func (ema *EMA) Value() float64 { return ema.value }

// Policy decides when the driver should abandon the current search path
// and restart from the root, based on a conflict-count sequence generator.
type Policy struct {
	seq              SequenceGenerator
	sinceLastRestart int64
	untilNextRestart int64
	numRestarts      int64
}

// NewPolicy returns a restart policy driven by seq.
func NewPolicy(seq SequenceGenerator) *Policy {
	return &Policy{seq: seq, untilNextRestart: seq.Next()}
}

// NotifyConflict records that a conflict occurred since the last restart.
func (p *Policy) NotifyConflict() {
	p.sinceLastRestart++
}

// ShouldRestart reports whether enough conflicts have accumulated to
// trigger a restart.
func (p *Policy) ShouldRestart() bool {
	return p.sinceLastRestart >= p.untilNextRestart
}

// NotifyRestart resets the conflict counter and pulls the next interval
// from the sequence generator.
func (p *Policy) NotifyRestart() {
	p.sinceLastRestart = 0
	p.untilNextRestart = p.seq.Next()
	p.numRestarts++
}

// NumRestarts returns how many restarts have been performed.
func (p *Policy) NumRestarts() int64 { return p.numRestarts }
