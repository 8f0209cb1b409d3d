package page

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"

	"heapdb/pkg/dberror"
	"heapdb/pkg/primitives"
)

// BaseFile provides the raw page I/O shared by table files: locating pages by
// number, whole-page reads and writes, and file growth.
//
// Thread-safety: all public methods take the file's read/write lock.
type BaseFile struct {
	file     *os.File
	tableID  primitives.TableID
	mutex    sync.RWMutex
	filePath primitives.Filepath
}

// NewBaseFile opens (creating if needed) the file at filePath.
//
// The table id is the hash of the canonical path, so two BaseFiles opened on the
// same backing file through different spellings report the same id.
//
// Returns:
//   - *BaseFile: the opened file
//   - error: if the path is empty or the file cannot be opened
func NewBaseFile(filePath primitives.Filepath) (*BaseFile, error) {
	if filePath.IsEmpty() {
		return nil, dberror.ErrInvalidArgument.Detailf("file path cannot be empty")
	}

	file, err := os.OpenFile(filePath.String(), os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, dberror.Wrap(err, dberror.CodeIOFailure, "NewBaseFile", "BaseFile")
	}

	canonical, err := filePath.Canonical()
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrapf(err, "failed to canonicalize %s", filePath)
	}

	return &BaseFile{
		file:     file,
		tableID:  primitives.TableID(canonical.Hash()),
		filePath: canonical,
	}, nil
}

// GetID returns the table identifier of this file.
func (bf *BaseFile) GetID() primitives.TableID {
	return bf.tableID
}

// FilePath returns the canonical path of the file.
func (bf *BaseFile) FilePath() primitives.Filepath {
	return bf.filePath
}

// NumPages returns floor(file length / page size). A trailing partial page is not counted.
func (bf *BaseFile) NumPages() (primitives.PageNumber, error) {
	bf.mutex.RLock()
	defer bf.mutex.RUnlock()
	return bf.numPages()
}

func (bf *BaseFile) numPages() (primitives.PageNumber, error) {
	size, err := bf.size()
	if err != nil {
		return 0, err
	}
	return primitives.PageNumber(size / int64(Size())), nil
}

func (bf *BaseFile) size() (int64, error) {
	if bf.file == nil {
		return 0, dberror.ErrIOFailure.Detailf("file is closed")
	}

	fileInfo, err := bf.file.Stat()
	if err != nil {
		return 0, dberror.Wrap(err, dberror.CodeIOFailure, "Stat", "BaseFile")
	}
	return fileInfo.Size(), nil
}

// FileSize returns the length of the file in bytes.
func (bf *BaseFile) FileSize() (int64, error) {
	bf.mutex.RLock()
	defer bf.mutex.RUnlock()
	return bf.size()
}

// ReadPageData reads exactly one page of bytes at pageNo.
//
// Returns:
//   - []byte: the raw page, always Size() bytes
//   - error: InvalidPage if the page's byte range extends past the end of the file,
//     ShortRead if fewer than Size() bytes could be read
func (bf *BaseFile) ReadPageData(pageNo primitives.PageNumber) ([]byte, error) {
	bf.mutex.RLock()
	defer bf.mutex.RUnlock()

	length, err := bf.size()
	if err != nil {
		return nil, err
	}

	ps := int64(Size())
	offset := int64(pageNo) * ps
	if offset+ps > length {
		return nil, dberror.ErrInvalidPage.Detailf("page %d ends at byte %d, file has %d bytes",
			pageNo, offset+ps, length)
	}

	pageData := make([]byte, ps)
	n, err := bf.file.ReadAt(pageData, offset)
	if n < len(pageData) {
		if err == nil || errors.Is(err, io.EOF) {
			return nil, dberror.ErrShortRead.Detailf("read %d of %d bytes for page %d", n, ps, pageNo)
		}
		return nil, dberror.Wrap(err, dberror.CodeIOFailure, "ReadPageData", "BaseFile")
	}
	return pageData, nil
}

// WritePageData overwrites page pageNo with pageData and syncs the file.
// pageNo may be at most the current page count, which appends a page.
func (bf *BaseFile) WritePageData(pageNo primitives.PageNumber, pageData []byte) error {
	bf.mutex.Lock()
	defer bf.mutex.Unlock()

	if len(pageData) != Size() {
		return dberror.ErrInvalidArgument.Detailf("invalid page data size: expected %d, got %d", Size(), len(pageData))
	}

	numPages, err := bf.numPages()
	if err != nil {
		return err
	}
	if pageNo > numPages {
		return dberror.ErrInvalidPage.Detailf("cannot write page %d, file has %d pages", pageNo, numPages)
	}

	return bf.writeAt(pageNo, pageData)
}

// AllocateNewPage appends one zero-filled page and returns its number. The
// append happens under the write lock so concurrent callers get distinct pages.
func (bf *BaseFile) AllocateNewPage() (primitives.PageNumber, error) {
	bf.mutex.Lock()
	defer bf.mutex.Unlock()

	numPages, err := bf.numPages()
	if err != nil {
		return 0, err
	}

	if err := bf.writeAt(numPages, make([]byte, Size())); err != nil {
		return 0, errors.Wrap(err, "failed to reserve page space")
	}
	return numPages, nil
}

func (bf *BaseFile) writeAt(pageNo primitives.PageNumber, data []byte) error {
	if bf.file == nil {
		return dberror.ErrIOFailure.Detailf("file is closed")
	}

	offset := int64(pageNo) * int64(Size())
	if _, err := bf.file.WriteAt(data, offset); err != nil {
		return dberror.Wrap(err, dberror.CodeIOFailure, "WritePageData", "BaseFile")
	}

	if err := bf.file.Sync(); err != nil {
		return dberror.Wrap(err, dberror.CodeIOFailure, "Sync", "BaseFile")
	}
	return nil
}

// Close closes the underlying file handle. Closing twice is a no-op.
func (bf *BaseFile) Close() error {
	bf.mutex.Lock()
	defer bf.mutex.Unlock()

	if bf.file == nil {
		return nil
	}
	err := bf.file.Close()
	bf.file = nil
	return err
}
