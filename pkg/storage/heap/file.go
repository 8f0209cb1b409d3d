package heap

import (
	"github.com/pkg/errors"

	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/dberror"
	"heapdb/pkg/iterator"
	"heapdb/pkg/primitives"
	"heapdb/pkg/storage/page"
	"heapdb/pkg/tuple"
)

// HeapFile is an unordered table stored as a sequence of HeapPages in one OS file.
// It implements page.DbFile.
//
// Storage Layout:
//   - Each page is exactly page.Size() bytes
//   - Pages are numbered sequentially starting from 0
//   - Page offsets are calculated as: pageNo * page.Size()
type HeapFile struct {
	*page.BaseFile
	tupleDesc *tuple.TupleDescription
}

// NewHeapFile opens (or creates) the heap file at filename.
//
// Parameters:
//   - filename: Path to the heap file on disk (cannot be empty)
//   - td: Schema definition for tuples that will be stored in this file
//
// Returns:
//   - *HeapFile: The initialized heap file
//   - error: if the file cannot be opened or its length is not a whole number of pages
func NewHeapFile(filename primitives.Filepath, td *tuple.TupleDescription) (*HeapFile, error) {
	if td == nil {
		return nil, dberror.ErrInvalidArgument.Detailf("tuple description cannot be nil")
	}
	if _, err := NumSlotsFor(td); err != nil {
		return nil, err
	}

	baseFile, err := page.NewBaseFile(filename)
	if err != nil {
		return nil, err
	}

	size, err := baseFile.FileSize()
	if err != nil {
		_ = baseFile.Close()
		return nil, err
	}
	if size%int64(page.Size()) != 0 {
		_ = baseFile.Close()
		return nil, dberror.ErrCorruptFile.Detailf("%s is %d bytes, not a multiple of the %d byte page size",
			filename, size, page.Size())
	}

	return &HeapFile{
		BaseFile:  baseFile,
		tupleDesc: td,
	}, nil
}

// GetTupleDesc returns the schema definition for tuples stored in this file.
func (hf *HeapFile) GetTupleDesc() *tuple.TupleDescription {
	return hf.tupleDesc
}

// ReadPage reads the specified page from disk into memory.
// This performs physical I/O and should normally be reached through the buffer pool.
//
// Errors:
//   - InvalidArgument if pid belongs to another table
//   - InvalidPage if the page lies beyond the end of the file
//   - ShortRead if the page could not be read whole
func (hf *HeapFile) ReadPage(pid primitives.PageID) (page.Page, error) {
	if pid.TableID != hf.GetID() {
		return nil, dberror.ErrInvalidArgument.Detailf("%s does not belong to table %d", pid, hf.GetID())
	}

	pageData, err := hf.ReadPageData(pid.PageNo)
	if err != nil {
		return nil, dberror.Wrap(err, dberror.CodeIOFailure, "ReadPage", "HeapFile")
	}

	return NewHeapPage(pid, pageData, hf.tupleDesc)
}

// WritePage writes the given page to disk at its designated location.
//
// Errors:
//   - InvalidArgument if p is nil or belongs to another table
//   - InvalidPage if p would leave a gap past the end of the file
func (hf *HeapFile) WritePage(p page.Page) error {
	if p == nil {
		return dberror.ErrInvalidArgument.Detailf("page cannot be nil")
	}

	pid := p.GetID()
	if pid.TableID != hf.GetID() {
		return dberror.ErrInvalidArgument.Detailf("%s does not belong to table %d", pid, hf.GetID())
	}
	return hf.WritePageData(pid.PageNo, p.GetPageData())
}

// InsertTuple adds t to the first page with a free slot, scanning pages in order
// through pages with write intent. When every page is full, one zero-filled page
// is appended and t is placed in its first slot.
//
// Returns:
//   - []page.Page: the pages modified (always one)
//   - error: SchemaMismatch if t's schema differs from the file's, or an I/O error
func (hf *HeapFile) InsertTuple(tid *transaction.TransactionID, t *tuple.Tuple, pages page.PageFetcher) ([]page.Page, error) {
	if !hf.tupleDesc.Equals(t.TupleDesc) {
		return nil, dberror.ErrSchemaMismatch.Detailf("tuple schema %s does not match table schema %s",
			t.TupleDesc, hf.tupleDesc).At("InsertTuple", "HeapFile")
	}

	numPages, err := hf.NumPages()
	if err != nil {
		return nil, err
	}

	for pageNo := primitives.PageNumber(0); pageNo < numPages; pageNo++ {
		hp, err := hf.fetchHeapPage(tid, pageNo, pages)
		if err != nil {
			return nil, err
		}

		if hp.GetNumEmptySlots() == 0 {
			continue
		}

		if err := hp.InsertTuple(t); err != nil {
			if errors.Is(err, dberror.ErrPageFull) {
				continue
			}
			return nil, err
		}
		return []page.Page{hp}, nil
	}

	pageNo, err := hf.AllocateNewPage()
	if err != nil {
		return nil, err
	}

	hp, err := hf.fetchHeapPage(tid, pageNo, pages)
	if err != nil {
		return nil, err
	}
	if err := hp.InsertTuple(t); err != nil {
		return nil, err
	}
	return []page.Page{hp}, nil
}

// DeleteTuple removes t from the page its RecordID names.
//
// Errors:
//   - WrongPage if t has no RecordID or belongs to another table
//   - SlotEmpty if the slot is already empty
func (hf *HeapFile) DeleteTuple(tid *transaction.TransactionID, t *tuple.Tuple, pages page.PageFetcher) (page.Page, error) {
	if t.RecordID == nil {
		return nil, dberror.ErrWrongPage.Detailf("tuple has no record id").At("DeleteTuple", "HeapFile")
	}
	if t.RecordID.PageID.TableID != hf.GetID() {
		return nil, dberror.ErrWrongPage.Detailf("tuple %s is not in table %d", t.RecordID, hf.GetID()).
			At("DeleteTuple", "HeapFile")
	}

	hp, err := hf.fetchHeapPage(tid, t.RecordID.PageID.PageNo, pages)
	if err != nil {
		return nil, err
	}

	if err := hp.DeleteTuple(t); err != nil {
		return nil, err
	}
	return hp, nil
}

// Iterator returns a lazy iterator over every tuple in the file, reading pages
// through pages.
func (hf *HeapFile) Iterator(tid *transaction.TransactionID, pages page.PageFetcher) iterator.DbFileIterator {
	return NewHeapFileIterator(hf, tid, pages)
}

func (hf *HeapFile) fetchHeapPage(tid *transaction.TransactionID, pageNo primitives.PageNumber, pages page.PageFetcher) (*HeapPage, error) {
	pid := primitives.NewPageID(hf.GetID(), pageNo)
	p, err := pages.GetPage(tid, pid, primitives.ReadWrite)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get %s", pid)
	}

	hp, ok := p.(*HeapPage)
	if !ok {
		return nil, dberror.ErrInvalidArgument.Detailf("%s is not a heap page", pid)
	}
	return hp, nil
}
