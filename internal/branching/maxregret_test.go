package branching

import (
	"testing"

	"github.com/rhartert/yalis/internal/domain"
	"github.com/stretchr/testify/require"
)

// TestMaxRegret_SelectsLargestRegret is end-to-end scenario §8.7: x has
// every value in [0,10] (regret 1, the gap to its second-smallest value),
// while y is missing 6 (regret 2, the gap from 5 to 7). MaxRegret must
// select y.
func TestMaxRegret_SelectsLargestRegret(t *testing.T) {
	store := domain.NewStore()
	x := store.NewBoundedInteger(0, 10)
	y := store.NewBoundedInteger(5, 20)
	require.NoError(t, store.RemoveValue(y, 6, nil))

	m := NewMaxRegret([]domain.ID{x, y})
	pred, ok := m.Decide(store)

	require.True(t, ok)
	require.Equal(t, y, pred.Domain())
}

func TestMaxRegret_SkipsAssignedVariables(t *testing.T) {
	store := domain.NewStore()
	x := store.NewBoundedInteger(3, 3)
	y := store.NewBoundedInteger(0, 5)

	m := NewMaxRegret([]domain.ID{x, y})
	pred, ok := m.Decide(store)

	require.True(t, ok)
	require.Equal(t, y, pred.Domain())
}

func TestMaxRegret_NoneLeftWhenAllAssigned(t *testing.T) {
	store := domain.NewStore()
	x := store.NewBoundedInteger(1, 1)

	m := NewMaxRegret([]domain.ID{x})
	_, ok := m.Decide(store)

	require.False(t, ok)
}
