package types

import (
	"cmp"
	"hash/fnv"

	"heapdb/pkg/dberror"
	"heapdb/pkg/primitives"
)

// compareOrdered performs a comparison between two ordered values using the given predicate.
// LIKE on ordered values behaves as equality.
func compareOrdered[T cmp.Ordered](a, b T, op primitives.Predicate) (bool, error) {
	switch op {
	case primitives.Equals, primitives.Like:
		return a == b, nil
	case primitives.LessThan:
		return a < b, nil
	case primitives.GreaterThan:
		return a > b, nil
	case primitives.LessThanOrEqual:
		return a <= b, nil
	case primitives.GreaterThanOrEqual:
		return a >= b, nil
	case primitives.NotEqual:
		return a != b, nil
	default:
		return false, dberror.ErrInvalidArgument.Detailf("unknown predicate %d", int(op))
	}
}

// fnvHash computes an FNV-1a hash of the given byte slice.
func fnvHash(data []byte) primitives.HashCode {
	h := fnv.New32a()
	_, _ = h.Write(data)
	return primitives.HashCode(h.Sum32())
}

func typeMismatch(want Type, other Field) error {
	if other == nil {
		return dberror.ErrSchemaMismatch.Detailf("cannot compare %s with a nil field", want)
	}
	return dberror.ErrSchemaMismatch.Detailf("cannot compare %s with %s", want, other.Type())
}
