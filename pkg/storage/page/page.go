package page

import (
	"sync/atomic"

	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/primitives"
)

// DefaultPageSize is the size of each page in bytes (4KB).
const DefaultPageSize = 4096

var pageSize atomic.Int64

func init() {
	pageSize.Store(DefaultPageSize)
}

// Size returns the process-wide page size used for every page read and write.
func Size() int {
	return int(pageSize.Load())
}

// SetPageSize overrides the page size. It exists for tests that want pages holding
// only a handful of tuples; it must not be called while any table file is open.
func SetPageSize(n int) {
	pageSize.Store(int64(n))
}

// ResetPageSize restores DefaultPageSize.
func ResetPageSize() {
	pageSize.Store(DefaultPageSize)
}

// Page interface represents a page that is resident in the buffer pool
// Pages may be "dirty", indicating they have been modified since last written to disk
type Page interface {
	// GetID returns the ID of this page
	GetID() primitives.PageID

	// IsDirty reports whether the page has unwritten modifications
	IsDirty() bool

	// LastDirtier returns the transaction that last dirtied this page, or nil.
	// A nil transaction may still dirty a page.
	LastDirtier() *transaction.TransactionID

	// MarkDirty sets the dirty state of this page
	MarkDirty(dirty bool, tid *transaction.TransactionID)

	// GetPageData returns a byte array representing the contents of this page
	// Used to serialize this page to disk
	GetPageData() []byte

	// GetBeforeImage returns a representation of this page as it was when loaded
	// or when SetBeforeImage was last called. Used by recovery.
	GetBeforeImage() Page

	// SetBeforeImage copies current content to the before image
	SetBeforeImage()
}

// PageFetcher loads pages on behalf of a transaction. The buffer pool implements it;
// table files receive one so that their reads and writes go through the cache.
type PageFetcher interface {
	GetPage(tid *transaction.TransactionID, pid primitives.PageID, perm primitives.Permissions) (Page, error)
}
