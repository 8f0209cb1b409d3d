// Package memory provides the buffer pool: a bounded in-memory cache of pages
// with pluggable eviction.
package memory

import (
	"maps"
	"slices"

	"heapdb/pkg/dberror"
	"heapdb/pkg/primitives"
	"heapdb/pkg/storage/page"
)

// PageCache defines the interface for caching database pages in memory.
// It is responsible ONLY for storing and retrieving pages in memory.
// It knows nothing about transactions, eviction or durability, and is not
// safe for concurrent use; the BufferPool serializes access.
type PageCache interface {
	// Get retrieves a page from the cache by its page ID.
	Get(pid primitives.PageID) (page.Page, bool)

	// Put stores a page. Replacing an existing page always succeeds; adding a new
	// page to a full cache fails with CacheExhausted.
	Put(pid primitives.PageID, p page.Page) error

	// Remove removes a page from the cache. Does nothing if the page is absent.
	Remove(pid primitives.PageID)

	// Size returns the current number of pages in the cache.
	Size() int

	// Clear removes all pages from the cache.
	Clear()

	// GetAll returns the ids of all cached pages in ascending order.
	GetAll() []primitives.PageID
}

type mapPageCache struct {
	maxSize int
	pages   map[primitives.PageID]page.Page
}

// NewPageCache creates a map-backed cache holding at most maxSize pages.
func NewPageCache(maxSize int) PageCache {
	return &mapPageCache{
		maxSize: maxSize,
		pages:   make(map[primitives.PageID]page.Page, maxSize),
	}
}

func (c *mapPageCache) Get(pid primitives.PageID) (page.Page, bool) {
	p, ok := c.pages[pid]
	return p, ok
}

func (c *mapPageCache) Put(pid primitives.PageID, p page.Page) error {
	if _, exists := c.pages[pid]; !exists && len(c.pages) >= c.maxSize {
		return dberror.ErrCacheExhausted.Detailf("cache full (%d pages), cannot add %s", c.maxSize, pid)
	}
	c.pages[pid] = p
	return nil
}

func (c *mapPageCache) Remove(pid primitives.PageID) {
	delete(c.pages, pid)
}

func (c *mapPageCache) Size() int {
	return len(c.pages)
}

func (c *mapPageCache) Clear() {
	clear(c.pages)
}

func (c *mapPageCache) GetAll() []primitives.PageID {
	return slices.SortedFunc(maps.Keys(c.pages), comparePageIDs)
}

func comparePageIDs(a, b primitives.PageID) int {
	switch {
	case a.TableID < b.TableID:
		return -1
	case a.TableID > b.TableID:
		return 1
	case a.PageNo < b.PageNo:
		return -1
	case a.PageNo > b.PageNo:
		return 1
	default:
		return 0
	}
}
