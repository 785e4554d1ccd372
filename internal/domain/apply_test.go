package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyPredicate_LowerBoundDecision(t *testing.T) {
	s := NewStore()
	x := s.NewBoundedInteger(0, 10)

	require.NoError(t, ApplyPredicate(s, nil, LB(x, 4)))

	require.Equal(t, int32(4), s.LowerBound(x))
	require.Nil(t, s.TrailEntryAt(0).Reason, "a decision has no reason")
}

func TestApplyPredicate_EqualAssignsBothBounds(t *testing.T) {
	s := NewStore()
	x := s.NewBoundedInteger(0, 10)

	require.NoError(t, ApplyPredicate(s, nil, EQ(x, 7)))

	require.Equal(t, int32(7), s.LowerBound(x))
	require.Equal(t, int32(7), s.UpperBound(x))
}

func TestApplyPredicate_NotEqualRemovesHole(t *testing.T) {
	s := NewStore()
	x := s.NewBoundedInteger(0, 10)

	require.NoError(t, ApplyPredicate(s, nil, NE(x, 5)))

	require.False(t, s.Contains(x, 5))
}

func TestApplyPredicate_FalseIsAlwaysEmptyDomain(t *testing.T) {
	s := NewStore()
	require.ErrorIs(t, ApplyPredicate(s, nil, False), ErrEmptyDomain)
}

func TestApplyPredicate_TrueIsNoOp(t *testing.T) {
	s := NewStore()
	require.NoError(t, ApplyPredicate(s, nil, True))
	require.Equal(t, 0, s.NumTrailEntries())
}
