package heap

import (
	"github.com/pkg/errors"

	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/iterator"
	"heapdb/pkg/primitives"
	"heapdb/pkg/storage/page"
	"heapdb/pkg/tuple"
)

// HeapFileIterator walks every tuple of a HeapFile in page then slot order. Pages
// are fetched one at a time through the page fetcher with read intent. The page
// count is re-read on each page boundary, so pages appended during the scan are
// visited.
type HeapFileIterator struct {
	base        *iterator.BaseIterator
	file        *HeapFile
	tid         *transaction.TransactionID
	pages       page.PageFetcher
	currentPage primitives.PageNumber
	started     bool
	pageTuples  *iterator.SliceIterator[*tuple.Tuple]
}

// NewHeapFileIterator creates a new iterator for the given HeapFile
func NewHeapFileIterator(file *HeapFile, tid *transaction.TransactionID, pages page.PageFetcher) *HeapFileIterator {
	it := &HeapFileIterator{
		file:  file,
		tid:   tid,
		pages: pages,
	}
	it.base = iterator.NewBaseIterator(it.readNext)
	return it
}

// Open positions the iterator before the first page.
func (it *HeapFileIterator) Open() error {
	it.reset()
	it.base.MarkOpened()
	return nil
}

func (it *HeapFileIterator) HasNext() (bool, error) {
	return it.base.HasNext()
}

func (it *HeapFileIterator) Next() (*tuple.Tuple, error) {
	return it.base.Next()
}

// Rewind restarts the scan from page 0.
func (it *HeapFileIterator) Rewind() error {
	if err := it.base.Rewind(); err != nil {
		return err
	}
	it.reset()
	return nil
}

// Close releases iterator resources
func (it *HeapFileIterator) Close() error {
	it.pageTuples = nil
	return it.base.Close()
}

func (it *HeapFileIterator) reset() {
	it.currentPage = 0
	it.started = false
	it.pageTuples = nil
}

func (it *HeapFileIterator) readNext() (*tuple.Tuple, error) {
	for {
		if it.pageTuples != nil && it.pageTuples.HasNext() {
			return it.pageTuples.Next()
		}

		numPages, err := it.file.NumPages()
		if err != nil {
			return nil, err
		}

		next := it.currentPage
		if it.started {
			next++
		}
		if next >= numPages {
			return nil, nil
		}

		if err := it.loadPage(next); err != nil {
			return nil, err
		}
	}
}

func (it *HeapFileIterator) loadPage(pageNo primitives.PageNumber) error {
	pid := primitives.NewPageID(it.file.GetID(), pageNo)
	p, err := it.pages.GetPage(it.tid, pid, primitives.ReadOnly)
	if err != nil {
		return errors.Wrapf(err, "failed to get %s", pid)
	}

	hp, ok := p.(*HeapPage)
	if !ok {
		return errors.Errorf("%s is not a heap page", pid)
	}

	it.currentPage = pageNo
	it.started = true
	it.pageTuples = iterator.NewSliceIterator(hp.GetTuples())
	return nil
}
