package memory

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/dberror"
	"heapdb/pkg/logging"
	"heapdb/pkg/primitives"
	"heapdb/pkg/storage/page"
	"heapdb/pkg/tuple"
)

// DefaultCapacity is the number of pages a buffer pool holds when none is configured.
const DefaultCapacity = 50

// FileResolver finds the file backing a table. The catalog implements it.
type FileResolver interface {
	GetDatabaseFile(id primitives.TableID) (page.DbFile, error)
}

// BufferPool manages a bounded in-memory cache of pages. Every page access in the
// database goes through GetPage; table files receive the pool as their
// page.PageFetcher so that their reads are cached too.
//
// The cache, the policy and the metrics are guarded by one mutex, so no caller
// observes a partially installed or partially evicted page. Access permissions
// are accepted but not enforced: there is no per-page locking.
type BufferPool struct {
	files    FileResolver
	capacity int
	cache    PageCache
	policy   ReplacementPolicy
	metrics  *Metrics
	logger   *zap.Logger
	mutex    sync.Mutex
}

// Option configures a BufferPool.
type Option func(*BufferPool)

// WithPolicy sets the replacement policy. The default is random.
func WithPolicy(policy ReplacementPolicy) Option {
	return func(bp *BufferPool) { bp.policy = policy }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(bp *BufferPool) { bp.logger = logger }
}

// WithMetrics sets the prometheus instruments. The default is unregistered instruments.
func WithMetrics(metrics *Metrics) Option {
	return func(bp *BufferPool) { bp.metrics = metrics }
}

// NewBufferPool creates a pool holding at most capacity pages (DefaultCapacity when
// capacity is not positive) whose files are resolved through files.
func NewBufferPool(files FileResolver, capacity int, opts ...Option) *BufferPool {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	bp := &BufferPool{
		files:    files,
		capacity: capacity,
		cache:    NewPageCache(capacity),
	}
	for _, opt := range opts {
		opt(bp)
	}

	if bp.policy == nil {
		bp.policy = NewRandomPolicy(nil)
	}
	if bp.logger == nil {
		bp.logger = zap.NewNop()
	}
	if bp.metrics == nil {
		bp.metrics = NewMetrics(nil)
	}
	bp.logger = bp.logger.With(zap.String("component", "buffer_pool"))
	return bp
}

// Capacity returns the maximum number of cached pages.
func (bp *BufferPool) Capacity() int {
	return bp.capacity
}

// Size returns the number of currently cached pages.
func (bp *BufferPool) Size() int {
	bp.mutex.Lock()
	defer bp.mutex.Unlock()
	return bp.cache.Size()
}

// GetPage retrieves a page on behalf of tid.
//
// A cached page is returned directly and never triggers eviction. Otherwise the
// page is read from its table file; if the cache is full one victim is evicted
// (flushed first when dirty) before the new page is installed.
//
// Parameters:
//   - tid: the requesting transaction
//   - pid: the page to fetch
//   - perm: the declared access intent (not enforced)
//
// Returns:
//   - page.Page: the cached page
//   - error: NotFound for an unknown table, the file's read error, or CacheExhausted
func (bp *BufferPool) GetPage(tid *transaction.TransactionID, pid primitives.PageID, perm primitives.Permissions) (page.Page, error) {
	bp.mutex.Lock()
	defer bp.mutex.Unlock()

	if p, ok := bp.cache.Get(pid); ok {
		bp.policy.RecordAccess(pid)
		bp.metrics.Hits.Inc()
		return p, nil
	}
	bp.metrics.Misses.Inc()

	dbFile, err := bp.files.GetDatabaseFile(pid.TableID)
	if err != nil {
		return nil, errors.Wrapf(err, "no file for %s", pid)
	}

	p, err := dbFile.ReadPage(pid)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", pid)
	}

	if err := bp.installLocked(pid, p); err != nil {
		return nil, err
	}

	logging.WithPage(bp.logger, pid).Debug("page loaded", zap.Stringer("tx_id", tid), zap.Stringer("perm", perm))
	return p, nil
}

// installLocked puts p in the cache, evicting first when a new entry would exceed
// capacity. Must hold the mutex.
func (bp *BufferPool) installLocked(pid primitives.PageID, p page.Page) error {
	if _, cached := bp.cache.Get(pid); !cached && bp.cache.Size() >= bp.capacity {
		if err := bp.evictLocked(); err != nil {
			return err
		}
	}

	if err := bp.cache.Put(pid, p); err != nil {
		return err
	}
	bp.policy.RecordAccess(pid)
	bp.metrics.ResidentPages.Set(float64(bp.cache.Size()))
	return nil
}

// InsertTuple adds t to table tableID on behalf of tid. Every page the table file
// modifies is marked dirty by tid and installed in the cache.
func (bp *BufferPool) InsertTuple(tid *transaction.TransactionID, tableID primitives.TableID, t *tuple.Tuple) error {
	dbFile, err := bp.files.GetDatabaseFile(tableID)
	if err != nil {
		return errors.Wrapf(err, "no file for table %d", tableID)
	}

	modified, err := dbFile.InsertTuple(tid, t, bp)
	if err != nil {
		return err
	}

	return bp.markAndInstall(tid, modified...)
}

// DeleteTuple removes t from the table its RecordID names on behalf of tid. The
// modified page is marked dirty by tid and installed in the cache.
func (bp *BufferPool) DeleteTuple(tid *transaction.TransactionID, t *tuple.Tuple) error {
	if t.RecordID == nil {
		return dberror.ErrWrongPage.Detailf("tuple has no record id").At("DeleteTuple", "BufferPool")
	}

	tableID := t.RecordID.PageID.TableID
	dbFile, err := bp.files.GetDatabaseFile(tableID)
	if err != nil {
		return errors.Wrapf(err, "no file for table %d", tableID)
	}

	modified, err := dbFile.DeleteTuple(tid, t, bp)
	if err != nil {
		return err
	}

	return bp.markAndInstall(tid, modified)
}

func (bp *BufferPool) markAndInstall(tid *transaction.TransactionID, pages ...page.Page) error {
	bp.mutex.Lock()
	defer bp.mutex.Unlock()

	for _, p := range pages {
		p.MarkDirty(true, tid)
		if err := bp.installLocked(p.GetID(), p); err != nil {
			return err
		}
	}
	return nil
}

// FlushAllPages writes every dirty cached page to disk and marks it clean.
func (bp *BufferPool) FlushAllPages() error {
	bp.mutex.Lock()
	defer bp.mutex.Unlock()

	for _, pid := range bp.cache.GetAll() {
		if err := bp.flushLocked(pid); err != nil {
			return err
		}
	}
	return nil
}

// FlushPages writes every dirty cached page whose last dirtier is tid. A nil tid
// selects pages dirtied without a transaction.
func (bp *BufferPool) FlushPages(tid *transaction.TransactionID) error {
	bp.mutex.Lock()
	defer bp.mutex.Unlock()

	for _, pid := range bp.cache.GetAll() {
		p, _ := bp.cache.Get(pid)
		if !p.IsDirty() || !p.LastDirtier().Equals(tid) {
			continue
		}
		if err := bp.flushLocked(pid); err != nil {
			return err
		}
	}
	return nil
}

// FlushPage writes one cached page to disk if it is dirty. Uncached pages are ignored.
func (bp *BufferPool) FlushPage(pid primitives.PageID) error {
	bp.mutex.Lock()
	defer bp.mutex.Unlock()
	return bp.flushLocked(pid)
}

func (bp *BufferPool) flushLocked(pid primitives.PageID) error {
	p, ok := bp.cache.Get(pid)
	if !ok || !p.IsDirty() {
		return nil
	}

	dbFile, err := bp.files.GetDatabaseFile(pid.TableID)
	if err != nil {
		return errors.Wrapf(err, "no file for %s", pid)
	}

	if err := dbFile.WritePage(p); err != nil {
		return errors.Wrapf(err, "failed to flush %s", pid)
	}
	p.MarkDirty(false, nil)

	bp.metrics.Flushes.Inc()
	logging.WithPage(bp.logger, pid).Debug("page flushed")
	return nil
}

// DiscardPage removes pid from the cache without writing it.
func (bp *BufferPool) DiscardPage(pid primitives.PageID) {
	bp.mutex.Lock()
	defer bp.mutex.Unlock()

	bp.cache.Remove(pid)
	bp.policy.Remove(pid)
	bp.metrics.ResidentPages.Set(float64(bp.cache.Size()))
}

// EvictPage evicts one page chosen by the replacement policy, flushing it first if
// dirty. It fails with CacheExhausted when there is nothing to evict.
func (bp *BufferPool) EvictPage() error {
	bp.mutex.Lock()
	defer bp.mutex.Unlock()
	return bp.evictLocked()
}

func (bp *BufferPool) evictLocked() error {
	for {
		if bp.cache.Size() == 0 {
			return dberror.ErrCacheExhausted.Detailf("cache is empty").At("EvictPage", "BufferPool")
		}

		victim, ok := bp.policy.Victim()
		if !ok {
			return dberror.ErrCacheExhausted.Detailf("policy has no victim for %d cached pages", bp.cache.Size()).
				At("EvictPage", "BufferPool")
		}

		if _, cached := bp.cache.Get(victim); !cached {
			bp.policy.Remove(victim)
			continue
		}

		if err := bp.flushLocked(victim); err != nil {
			return err
		}

		bp.cache.Remove(victim)
		bp.policy.Remove(victim)
		bp.metrics.Evictions.Inc()
		bp.metrics.ResidentPages.Set(float64(bp.cache.Size()))
		logging.WithPage(bp.logger, victim).Debug("page evicted")
		return nil
	}
}

// ResetPageCache drops every cached page without flushing.
func (bp *BufferPool) ResetPageCache() {
	bp.mutex.Lock()
	defer bp.mutex.Unlock()

	for _, pid := range bp.cache.GetAll() {
		bp.policy.Remove(pid)
	}
	bp.cache.Clear()
	bp.metrics.ResidentPages.Set(0)
}
