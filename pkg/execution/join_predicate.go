package execution

import (
	"fmt"

	"heapdb/pkg/dberror"
	"heapdb/pkg/primitives"
	"heapdb/pkg/tuple"
)

// JoinPredicate compares a field of a left tuple with a field of a right tuple.
// A join operator evaluates it on every candidate pair.
type JoinPredicate struct {
	leftIndex  int
	rightIndex int
	op         primitives.Predicate
}

// NewJoinPredicate fails with InvalidArgument for a negative field index.
func NewJoinPredicate(leftIndex int, op primitives.Predicate, rightIndex int) (*JoinPredicate, error) {
	if leftIndex < 0 || rightIndex < 0 {
		return nil, dberror.ErrInvalidArgument.Detailf("join field indexes must be non-negative, got %d and %d",
			leftIndex, rightIndex)
	}
	return &JoinPredicate{leftIndex: leftIndex, rightIndex: rightIndex, op: op}, nil
}

func (jp *JoinPredicate) LeftIndex() int { return jp.leftIndex }

func (jp *JoinPredicate) RightIndex() int { return jp.rightIndex }

func (jp *JoinPredicate) Op() primitives.Predicate { return jp.op }

// Filter reports whether "left[l] op right[r]" holds. As with Predicate, a
// missing field never matches and fields of different types are an error.
func (jp *JoinPredicate) Filter(left, right *tuple.Tuple) (bool, error) {
	if left == nil || right == nil {
		return false, dberror.ErrInvalidArgument.Detailf("cannot evaluate join predicate on nil tuple")
	}

	l, r := left.GetField(jp.leftIndex), right.GetField(jp.rightIndex)
	if l == nil || r == nil {
		return false, nil
	}
	return l.Compare(jp.op, r)
}

// String renders the predicate, e.g. "left[0] = right[1]".
func (jp *JoinPredicate) String() string {
	return fmt.Sprintf("left[%d] %s right[%d]", jp.leftIndex, jp.op, jp.rightIndex)
}
