package propagation

import (
	"testing"

	"github.com/rhartert/yalis/internal/domain"
	"github.com/rhartert/yalis/internal/engine"
	"github.com/stretchr/testify/require"
)

func newTestEngine() (*domain.Store, *engine.Engine) {
	store := domain.NewStore()
	return store, engine.NewEngine(store)
}

func TestLinearLessEqual_PropagatesUpperBound(t *testing.T) {
	store, eng := newTestEngine()
	x := store.NewBoundedInteger(0, 10)
	y := store.NewBoundedInteger(0, 10)

	// x + y <= 8, with y >= 3: x must be tightened to <= 5.
	ineq := domain.NewLinearInequality([]domain.Term{{Var: x, Coeff: 1}, {Var: y, Coeff: 1}}, 8)
	p := NewLinearLessEqual(store, ineq, 2)
	require.Nil(t, eng.Register(p))

	require.NoError(t, store.TightenLowerBound(y, 3, nil))
	require.Nil(t, eng.Run())

	require.Equal(t, int32(5), store.UpperBound(x))
}

func TestLinearLessEqual_NegativeCoefficientPropagatesLowerBound(t *testing.T) {
	store, eng := newTestEngine()
	x := store.NewBoundedInteger(-10, 10)
	y := store.NewBoundedInteger(0, 10)

	// -x + y <= 3, with y fixed to 0: -x <= 3 => x >= -3.
	ineq := domain.NewLinearInequality([]domain.Term{{Var: x, Coeff: -1}, {Var: y, Coeff: 1}}, 3)
	p := NewLinearLessEqual(store, ineq, 2)
	require.Nil(t, eng.Register(p))

	require.NoError(t, store.TightenUpperBound(y, 0, nil))
	require.Nil(t, eng.Run())

	require.Equal(t, int32(-3), store.LowerBound(x))
}

func TestLinearLessEqual_ConflictWhenSlackNegative(t *testing.T) {
	store, eng := newTestEngine()
	x := store.NewBoundedInteger(5, 10)
	y := store.NewBoundedInteger(5, 10)

	ineq := domain.NewLinearInequality([]domain.Term{{Var: x, Coeff: 1}, {Var: y, Coeff: 1}}, 8)
	p := NewLinearLessEqual(store, ineq, 2)

	conflict := eng.Register(p)
	require.NotNil(t, conflict, "5+5=10 > 8 must already conflict at initialisation")
}

// TestLinearLessEqual_IdempotentAtFixpoint exercises §8's "after every
// propagator call returning Success, the propagator is at local fixpoint":
// a second Run() with no intervening bound change must not re-tighten
// anything (it won't even be re-enqueued, since nothing changed).
func TestLinearLessEqual_IdempotentAtFixpoint(t *testing.T) {
	store, eng := newTestEngine()
	x := store.NewBoundedInteger(0, 10)
	y := store.NewBoundedInteger(0, 10)

	ineq := domain.NewLinearInequality([]domain.Term{{Var: x, Coeff: 1}, {Var: y, Coeff: 1}}, 8)
	p := NewLinearLessEqual(store, ineq, 2)
	require.Nil(t, eng.Register(p))
	require.NoError(t, store.TightenLowerBound(y, 3, nil))
	require.Nil(t, eng.Run())

	upperBefore := store.UpperBound(x)
	store.Queue().Enqueue(p.ID(), p.Priority())
	require.Nil(t, eng.Run())
	require.Equal(t, upperBefore, store.UpperBound(x), "re-running at fixpoint must not tighten further")
}

func TestLinearLessEqual_LinearExplanationReturnsInequality(t *testing.T) {
	store, _ := newTestEngine()
	x := store.NewBoundedInteger(0, 10)
	ineq := domain.NewLinearInequality([]domain.Term{{Var: x, Coeff: 1}}, 5)
	p := NewLinearLessEqual(store, ineq, 2)

	got, ok := p.LinearExplanation()
	require.True(t, ok)
	require.True(t, got.Equal(ineq))
}
