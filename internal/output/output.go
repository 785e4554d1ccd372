// Package output formats solved variables for a FlatZinc-style
// post-processor (§6): named scalars and row-major arrays of either
// booleans (read off a Predicate) or integers (read off a DomainId).
package output

import (
	"fmt"
	"strings"

	"github.com/rhartert/yalis/internal/domain"
)

// Range is one dimension of an array output's index set, inclusive on
// both ends.
type Range struct {
	Lo, Hi int
}

// Size returns the number of indices this range covers.
func (r Range) Size() int { return r.Hi - r.Lo + 1 }

// Item is one entry of the solution's output list: a scalar bool/int or a
// row-major array of either (§6).
type Item struct {
	kind      itemKind
	name      string
	pred      domain.Predicate
	id        domain.ID
	shape     []Range
	predArray []domain.Predicate
	idArray   []domain.ID
}

type itemKind int

const (
	kindBool itemKind = iota
	kindInt
	kindArrayOfBool
	kindArrayOfInt
)

// Bool builds a scalar boolean output whose value is whether pred holds in
// the solution.
func Bool(name string, pred domain.Predicate) Item {
	return Item{kind: kindBool, name: name, pred: pred}
}

// Int builds a scalar integer output reading off x's solution value.
func Int(name string, x domain.ID) Item {
	return Item{kind: kindInt, name: name, id: x}
}

// ArrayOfBool builds a row-major array of boolean outputs over shape.
func ArrayOfBool(name string, shape []Range, preds []domain.Predicate) Item {
	return Item{kind: kindArrayOfBool, name: name, shape: shape, predArray: preds}
}

// ArrayOfInt builds a row-major array of integer outputs over shape.
func ArrayOfInt(name string, shape []Range, ids []domain.ID) Item {
	return Item{kind: kindArrayOfInt, name: name, shape: shape, idArray: ids}
}

// valuer reads a DomainId's solved value; the driver satisfies this with
// its own accessor so this package never depends on solver state directly.
type valuer interface {
	IntegerValue(x domain.ID) int32
	PredicateHolds(p domain.Predicate) bool
}

// Format renders item as FlatZinc-style output text using v to resolve
// variable values (§6).
func Format(item Item, v valuer) string {
	switch item.kind {
	case kindBool:
		return fmt.Sprintf("%s = %t;", item.name, v.PredicateHolds(item.pred))
	case kindInt:
		return fmt.Sprintf("%s = %d;", item.name, v.IntegerValue(item.id))
	case kindArrayOfBool:
		vals := make([]string, len(item.predArray))
		for i, p := range item.predArray {
			vals[i] = fmt.Sprintf("%t", v.PredicateHolds(p))
		}
		return formatArray(item.name, item.shape, vals)
	case kindArrayOfInt:
		vals := make([]string, len(item.idArray))
		for i, id := range item.idArray {
			vals[i] = fmt.Sprintf("%d", v.IntegerValue(id))
		}
		return formatArray(item.name, item.shape, vals)
	default:
		return ""
	}
}

func formatArray(name string, shape []Range, values []string) string {
	dims := make([]string, len(shape))
	for i, r := range shape {
		dims[i] = fmt.Sprintf("%d..%d", r.Lo, r.Hi)
	}
	return fmt.Sprintf("%s = array%dd(%s, [%s]);",
		name, len(shape), strings.Join(dims, ", "), strings.Join(values, ", "))
}
