package iterator

import (
	"heapdb/pkg/dberror"
	"heapdb/pkg/tuple"
)

// ReadNextFunc produces the next tuple of a source. A nil tuple with a nil error
// means the source is exhausted.
type ReadNextFunc func() (*tuple.Tuple, error)

// BaseIterator adds the open/closed state and a one-tuple lookahead to a
// ReadNextFunc. Scans, operators and slice iterators embed it so that HasNext can
// be called any number of times while the source is read once per tuple.
type BaseIterator struct {
	read    ReadNextFunc
	pending *tuple.Tuple
	opened  bool
}

// NewBaseIterator wraps read. The result is closed until MarkOpened.
func NewBaseIterator(read ReadNextFunc) *BaseIterator {
	return &BaseIterator{read: read}
}

// fill loads the lookahead slot if it is empty and reports whether it holds a tuple.
func (it *BaseIterator) fill(op string) (bool, error) {
	if !it.opened {
		return false, dberror.ErrIteratorState.Detailf("iterator is not open").At(op, "BaseIterator")
	}
	if it.pending != nil {
		return true, nil
	}

	t, err := it.read()
	if err != nil {
		return false, err
	}
	it.pending = t
	return t != nil, nil
}

// HasNext reports whether Next would return a tuple.
func (it *BaseIterator) HasNext() (bool, error) {
	return it.fill("HasNext")
}

// Next hands out the lookahead tuple, reading one first if none is pending.
// At the end of the source it fails with NoMoreTuples.
func (it *BaseIterator) Next() (*tuple.Tuple, error) {
	ok, err := it.fill("Next")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, dberror.ErrNoMoreTuples.At("Next", "BaseIterator")
	}

	t := it.pending
	it.pending = nil
	return t, nil
}

// Rewind forgets the pending tuple. Resetting the position of the source itself
// is up to the owner of the ReadNextFunc.
func (it *BaseIterator) Rewind() error {
	if !it.opened {
		return dberror.ErrIteratorState.Detailf("iterator is not open").At("Rewind", "BaseIterator")
	}
	it.pending = nil
	return nil
}

func (it *BaseIterator) Close() error {
	it.pending = nil
	it.opened = false
	return nil
}

// MarkOpened enables HasNext and Next and clears any stale lookahead.
func (it *BaseIterator) MarkOpened() {
	it.pending = nil
	it.opened = true
}
