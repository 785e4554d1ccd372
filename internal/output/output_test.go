package output

import (
	"testing"

	"github.com/rhartert/yalis/internal/domain"
	"github.com/stretchr/testify/require"
)

type fakeValuer struct {
	ints  map[domain.ID]int32
	preds map[domain.Predicate]bool
}

func (f fakeValuer) IntegerValue(x domain.ID) int32       { return f.ints[x] }
func (f fakeValuer) PredicateHolds(p domain.Predicate) bool { return f.preds[p] }

func TestFormat_ScalarInt(t *testing.T) {
	v := fakeValuer{ints: map[domain.ID]int32{domain.ID(0): 7}}
	item := Int("x", domain.ID(0))

	require.Equal(t, "x = 7;", Format(item, v))
}

func TestFormat_ScalarBool(t *testing.T) {
	p := domain.LB(domain.ID(0), 3)
	v := fakeValuer{preds: map[domain.Predicate]bool{p: true}}
	item := Bool("b", p)

	require.Equal(t, "b = true;", Format(item, v))
}

// TestFormat_ArrayOfInt_RowMajor checks §6's formatting rule: "name =
// arrayNd(lo1..hi1, ..., [v1, v2, ...]);" with values in row-major order.
func TestFormat_ArrayOfInt_RowMajor(t *testing.T) {
	ids := []domain.ID{domain.ID(0), domain.ID(1), domain.ID(2)}
	v := fakeValuer{ints: map[domain.ID]int32{
		domain.ID(0): 1, domain.ID(1): 2, domain.ID(2): 3,
	}}
	item := ArrayOfInt("a", []Range{{Lo: 1, Hi: 3}}, ids)

	require.Equal(t, "a = array1d(1..3, [1, 2, 3]);", Format(item, v))
}

func TestFormat_ArrayOfInt_TwoDimensional(t *testing.T) {
	ids := []domain.ID{domain.ID(0), domain.ID(1), domain.ID(2), domain.ID(3)}
	v := fakeValuer{ints: map[domain.ID]int32{
		domain.ID(0): 10, domain.ID(1): 20, domain.ID(2): 30, domain.ID(3): 40,
	}}
	item := ArrayOfInt("m", []Range{{Lo: 1, Hi: 2}, {Lo: 1, Hi: 2}}, ids)

	require.Equal(t, "m = array2d(1..2, 1..2, [10, 20, 30, 40]);", Format(item, v))
}

func TestRange_Size(t *testing.T) {
	require.Equal(t, 5, Range{Lo: 1, Hi: 5}.Size())
	require.Equal(t, 1, Range{Lo: 0, Hi: 0}.Size())
}
