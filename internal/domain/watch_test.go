package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPropagatorQueue_FIFOWithinPriority(t *testing.T) {
	q := NewPropagatorQueue()

	q.Enqueue(5, 2)
	q.Enqueue(3, 1)
	q.Enqueue(4, 1)
	q.Enqueue(1, 0)

	require.Equal(t, PropagatorID(1), q.Pop())
	require.Equal(t, PropagatorID(3), q.Pop())
	require.Equal(t, PropagatorID(4), q.Pop())
	require.Equal(t, PropagatorID(5), q.Pop())
	require.True(t, q.IsEmpty())
}

func TestPropagatorQueue_DedupIsNoOp(t *testing.T) {
	q := NewPropagatorQueue()

	q.Enqueue(7, 3)
	q.Enqueue(7, 3)
	q.Enqueue(7, 0) // priority ignored once already present

	require.Equal(t, PropagatorID(7), q.Pop())
	require.True(t, q.IsEmpty())
}

func TestPropagatorQueue_ClearEmptiesAllBuckets(t *testing.T) {
	q := NewPropagatorQueue()

	q.Enqueue(1, 0)
	q.Enqueue(2, 4)
	q.Clear()

	require.True(t, q.IsEmpty())
	q.Enqueue(1, 0)
	require.Equal(t, PropagatorID(1), q.Pop())
}
