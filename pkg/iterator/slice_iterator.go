package iterator

import (
	"heapdb/pkg/dberror"
	"heapdb/pkg/tuple"
)

// SliceIterator walks a materialized slice. It has no lifecycle: it is ready on
// construction and Rewind simply resets the read position.
type SliceIterator[T any] struct {
	data         []T
	currentIndex int
}

// NewSliceIterator creates a new iterator over the given slice.
func NewSliceIterator[T any](data []T) *SliceIterator[T] {
	return &SliceIterator[T]{data: data}
}

// HasNext reports whether at least one more element remains.
func (it *SliceIterator[T]) HasNext() bool {
	return it.currentIndex < len(it.data)
}

// Next returns the next element and advances, failing with NoMoreTuples at the end.
func (it *SliceIterator[T]) Next() (T, error) {
	var zero T
	if it.currentIndex >= len(it.data) {
		return zero, dberror.ErrNoMoreTuples.At("Next", "SliceIterator")
	}

	element := it.data[it.currentIndex]
	it.currentIndex++
	return element, nil
}

// Rewind resets the read position to the start of the slice.
func (it *SliceIterator[T]) Rewind() {
	it.currentIndex = 0
}

// Len returns the total number of elements in the slice.
func (it *SliceIterator[T]) Len() int {
	return len(it.data)
}

// TupleSliceIterator exposes a fixed list of tuples through the DbIterator protocol.
// Aggregators use it to hand out their materialized results, and tests use it as a
// child operator.
type TupleSliceIterator struct {
	base   *BaseIterator
	td     *tuple.TupleDescription
	tuples *SliceIterator[*tuple.Tuple]
}

// NewTupleSliceIterator wraps tuples with schema td.
func NewTupleSliceIterator(td *tuple.TupleDescription, tuples []*tuple.Tuple) *TupleSliceIterator {
	it := &TupleSliceIterator{
		td:     td,
		tuples: NewSliceIterator(tuples),
	}
	it.base = NewBaseIterator(it.readNext)
	return it
}

func (it *TupleSliceIterator) readNext() (*tuple.Tuple, error) {
	if !it.tuples.HasNext() {
		return nil, nil
	}
	return it.tuples.Next()
}

func (it *TupleSliceIterator) Open() error {
	it.tuples.Rewind()
	it.base.MarkOpened()
	return nil
}

func (it *TupleSliceIterator) HasNext() (bool, error) { return it.base.HasNext() }

func (it *TupleSliceIterator) Next() (*tuple.Tuple, error) { return it.base.Next() }

func (it *TupleSliceIterator) Rewind() error {
	if err := it.base.Rewind(); err != nil {
		return err
	}
	it.tuples.Rewind()
	return nil
}

func (it *TupleSliceIterator) Close() error { return it.base.Close() }

func (it *TupleSliceIterator) GetTupleDesc() *tuple.TupleDescription { return it.td }
