package solver

import (
	"testing"

	"github.com/rhartert/yalis/internal/branching"
	"github.com/rhartert/yalis/internal/domain"
	"github.com/stretchr/testify/require"
)

// TestSatisfy_SimpleInfeasibleLinearSystem is end-to-end scenario §8.1:
// x, y in [0,3], with 3x+4y <= -2 and -y <= -1 (i.e. y >= 1). The first
// constraint already conflicts at the root (3*0+4*0 = 0 > -2), so the
// problem is unsatisfiable before search even starts.
func TestSatisfy_SimpleInfeasibleLinearSystem(t *testing.T) {
	s := New(DefaultOptions, nil)
	x := s.NewBoundedInteger(0, 3)
	y := s.NewBoundedInteger(0, 3)

	require.Equal(t, PostRootInconsistent, s.AddConstraint(
		domain.NewLinearInequality([]domain.Term{{Var: x, Coeff: 3}, {Var: y, Coeff: 4}}, -2)))
	s.AddConstraint(domain.NewLinearInequality([]domain.Term{{Var: y, Coeff: -1}}, -1))

	status, err := s.Satisfy(branching.NewMaxRegret(s.Variables()), nil)

	require.NoError(t, err)
	require.Equal(t, StatusUnsatisfiable, status)
}

// TestSatisfy_ThreeVariableInfeasibleSystem is end-to-end scenario §8.2,
// the IntSat-literature example: x, y in [-10,1], z in [-10,3], with
// -x-y-z <= -2, x+y <= 1, x+z <= 1, y+z <= 1. None of these conflicts at
// the root individually, so this exercises full search plus conflict
// analysis down to a root-level contradiction.
func TestSatisfy_ThreeVariableInfeasibleSystem(t *testing.T) {
	s := New(DefaultOptions, nil)
	x := s.NewBoundedInteger(-10, 1)
	y := s.NewBoundedInteger(-10, 1)
	z := s.NewBoundedInteger(-10, 3)

	require.Equal(t, PostOK, s.AddConstraint(
		domain.NewLinearInequality([]domain.Term{{Var: x, Coeff: -1}, {Var: y, Coeff: -1}, {Var: z, Coeff: -1}}, -2)))
	require.Equal(t, PostOK, s.AddConstraint(
		domain.NewLinearInequality([]domain.Term{{Var: x, Coeff: 1}, {Var: y, Coeff: 1}}, 1)))
	require.Equal(t, PostOK, s.AddConstraint(
		domain.NewLinearInequality([]domain.Term{{Var: x, Coeff: 1}, {Var: z, Coeff: 1}}, 1)))
	require.Equal(t, PostOK, s.AddConstraint(
		domain.NewLinearInequality([]domain.Term{{Var: y, Coeff: 1}, {Var: z, Coeff: 1}}, 1)))

	status, err := s.Satisfy(branching.NewMaxRegret(s.Variables()), nil)

	require.NoError(t, err)
	require.Equal(t, StatusUnsatisfiable, status)
}

// TestSatisfy_SmallSatisfiableSystem exercises the satisfiable path end to
// end: a solution must exist and must actually satisfy the posted
// constraint.
func TestSatisfy_SmallSatisfiableSystem(t *testing.T) {
	s := New(DefaultOptions, nil)
	x := s.NewBoundedInteger(0, 5)
	y := s.NewBoundedInteger(0, 5)

	require.Equal(t, PostOK, s.AddConstraint(
		domain.NewLinearInequality([]domain.Term{{Var: x, Coeff: 1}, {Var: y, Coeff: 1}}, 5)))

	status, err := s.Satisfy(branching.NewMaxRegret(s.Variables()), nil)

	require.NoError(t, err)
	require.Equal(t, StatusSatisfiable, status)
	require.LessOrEqual(t, s.IntegerValue(x)+s.IntegerValue(y), int32(5))
}

func TestSatisfy_ActivityBruncherBumpsOnConflict(t *testing.T) {
	s := New(DefaultOptions, nil)
	x := s.NewBoundedInteger(-10, 1)
	y := s.NewBoundedInteger(-10, 1)
	z := s.NewBoundedInteger(-10, 3)

	s.AddConstraint(domain.NewLinearInequality([]domain.Term{{Var: x, Coeff: -1}, {Var: y, Coeff: -1}, {Var: z, Coeff: -1}}, -2))
	s.AddConstraint(domain.NewLinearInequality([]domain.Term{{Var: x, Coeff: 1}, {Var: y, Coeff: 1}}, 1))
	s.AddConstraint(domain.NewLinearInequality([]domain.Term{{Var: x, Coeff: 1}, {Var: z, Coeff: 1}}, 1))
	s.AddConstraint(domain.NewLinearInequality([]domain.Term{{Var: y, Coeff: 1}, {Var: z, Coeff: 1}}, 1))

	brancher := branching.NewActivityBrancher(s.Store(), 0.95)
	status, err := s.Satisfy(brancher, nil)

	require.NoError(t, err)
	require.Equal(t, StatusUnsatisfiable, status)
	require.Greater(t, s.TotalConflicts, int64(0))
}

func TestSatisfy_UnknownOnImmediateTermination(t *testing.T) {
	s := New(DefaultOptions, nil)
	x := s.NewBoundedInteger(0, 5)
	_ = x

	status, err := s.Satisfy(branching.NewMaxRegret(s.Variables()), alwaysStop{})

	require.NoError(t, err)
	require.Equal(t, StatusUnknown, status)
}

type alwaysStop struct{}

func (alwaysStop) ShouldStop() bool { return true }
