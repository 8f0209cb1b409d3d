package iterator

import "heapdb/pkg/tuple"

// TupleIterator is the minimal pull interface shared by DbIterator and DbFileIterator,
// so helpers such as ForEach and Collect work with either.
type TupleIterator interface {
	// HasNext reports whether another tuple is available. Repeated calls without an
	// intervening Next are side-effect free.
	HasNext() (bool, error)

	// Next returns the next tuple and advances. It fails with NoMoreTuples at the end.
	Next() (*tuple.Tuple, error)
}

// DbIterator defines the contract for all operators in the execution engine.
//
// HasNext and Next fail with an IteratorState error before Open or after Close.
// Close followed by Open restarts the operator from the beginning.
type DbIterator interface {
	TupleIterator

	// Open prepares the operator (and its children) for tuple retrieval.
	Open() error

	// Rewind resets the operator so the next call to Next returns the first tuple again.
	Rewind() error

	// Close releases resources held by the operator and its children.
	Close() error

	// GetTupleDesc returns the schema of the tuples this operator produces.
	// It can be called regardless of iterator state.
	GetTupleDesc() *tuple.TupleDescription
}

// DbFileIterator iterates over the tuples of a table file. Unlike DbIterator it carries
// no schema; the file itself owns that.
type DbFileIterator interface {
	TupleIterator

	Open() error
	Rewind() error
	Close() error
}
