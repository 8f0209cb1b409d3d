package iterator

import "heapdb/pkg/tuple"

// Iterate feeds every remaining tuple of an open iterator to visit until the
// iterator is drained, visit returns false, or either side fails. Nil tuples
// are not passed to visit.
func Iterate(iter TupleIterator, visit func(*tuple.Tuple) (more bool, err error)) error {
	more := true
	for more {
		ok, err := iter.HasNext()
		if err != nil || !ok {
			return err
		}

		t, err := iter.Next()
		if err != nil {
			return err
		}
		if t == nil {
			continue
		}

		if more, err = visit(t); err != nil {
			return err
		}
	}
	return nil
}

// ForEach is Iterate without early exit.
func ForEach(iter TupleIterator, fn func(*tuple.Tuple) error) error {
	return Iterate(iter, func(t *tuple.Tuple) (bool, error) {
		return true, fn(t)
	})
}

// Take reads at most n tuples. A non-positive n reads nothing.
func Take(iter TupleIterator, n int) ([]*tuple.Tuple, error) {
	if n <= 0 {
		return []*tuple.Tuple{}, nil
	}

	out := make([]*tuple.Tuple, 0, n)
	err := Iterate(iter, func(t *tuple.Tuple) (bool, error) {
		out = append(out, t)
		return len(out) < n, nil
	})
	return out, err
}

// Count drains iter and returns the number of tuples seen.
func Count(iter TupleIterator) (int, error) {
	n := 0
	err := ForEach(iter, func(*tuple.Tuple) error {
		n++
		return nil
	})
	return n, err
}

// Collect drains iter into a slice.
func Collect(iter TupleIterator) ([]*tuple.Tuple, error) {
	var out []*tuple.Tuple
	err := ForEach(iter, func(t *tuple.Tuple) error {
		out = append(out, t)
		return nil
	})
	return out, err
}
