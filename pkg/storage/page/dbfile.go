package page

import (
	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/iterator"
	"heapdb/pkg/primitives"
	"heapdb/pkg/tuple"
)

// DbFile is the page-addressable storage backing one table.
type DbFile interface {
	// GetID returns the table identifier derived from the file's canonical path.
	GetID() primitives.TableID

	// GetTupleDesc returns the schema of the tuples stored in the file.
	GetTupleDesc() *tuple.TupleDescription

	// NumPages returns the number of whole pages in the file.
	NumPages() (primitives.PageNumber, error)

	// ReadPage reads and decodes one page directly from disk.
	ReadPage(pid primitives.PageID) (Page, error)

	// WritePage overwrites one page on disk.
	WritePage(p Page) error

	// InsertTuple adds t to the first page with room, fetching pages through pages.
	// It returns the pages it modified.
	InsertTuple(tid *transaction.TransactionID, t *tuple.Tuple, pages PageFetcher) ([]Page, error)

	// DeleteTuple removes t from the page named by its RecordID and returns that page.
	DeleteTuple(tid *transaction.TransactionID, t *tuple.Tuple, pages PageFetcher) (Page, error)

	// Iterator returns a lazy iterator over every tuple in the file.
	Iterator(tid *transaction.TransactionID, pages PageFetcher) iterator.DbFileIterator

	// Close releases the underlying file handle.
	Close() error
}
