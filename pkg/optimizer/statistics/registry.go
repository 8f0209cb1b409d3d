package statistics

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"heapdb/pkg/dberror"
	"heapdb/pkg/primitives"
	"heapdb/pkg/storage/page"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TableSource enumerates the tables whose statistics a Registry computes.
// The catalog satisfies it.
type TableSource interface {
	TableIDs() []primitives.TableID
	GetTableName(id primitives.TableID) (string, error)
	GetDatabaseFile(id primitives.TableID) (page.DbFile, error)
}

// Registry maps table names to their statistics. It is safe for concurrent use.
type Registry struct {
	mutex         sync.RWMutex
	stats         map[string]*TableStats
	bins          int
	ioCostPerPage int
	parallelism   int
	logger        *zap.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

func WithHistogramBins(bins int) RegistryOption {
	return func(r *Registry) { r.bins = bins }
}

func WithIOCostPerPage(cost int) RegistryOption {
	return func(r *Registry) { r.ioCostPerPage = cost }
}

// WithParallelism bounds how many tables ComputeStatistics scans at once.
func WithParallelism(n int) RegistryOption {
	return func(r *Registry) { r.parallelism = n }
}

func WithLogger(logger *zap.Logger) RegistryOption {
	return func(r *Registry) { r.logger = logger }
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		stats:         make(map[string]*TableStats),
		bins:          DefaultHistogramBins,
		ioCostPerPage: DefaultIOCostPerPage,
		parallelism:   1,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.parallelism < 1 {
		r.parallelism = 1
	}
	return r
}

// Get returns the statistics registered under tableName.
func (r *Registry) Get(tableName string) (*TableStats, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	ts, ok := r.stats[tableName]
	return ts, ok
}

func (r *Registry) Set(tableName string, ts *TableStats) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.stats[tableName] = ts
}

// Replace swaps the whole table of statistics for a copy of stats.
func (r *Registry) Replace(stats map[string]*TableStats) {
	fresh := make(map[string]*TableStats, len(stats))
	maps.Copy(fresh, stats)

	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.stats = fresh
}

// Snapshot returns a copy of the current name to statistics mapping.
func (r *Registry) Snapshot() map[string]*TableStats {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return maps.Clone(r.stats)
}

// Names returns the registered table names in sorted order.
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	names := make([]string, 0, len(r.stats))
	for name := range r.stats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compute builds statistics for one table using the registry's settings.
func (r *Registry) Compute(file page.DbFile, pages page.PageFetcher) (*TableStats, error) {
	return NewTableStats(file, pages, r.ioCostPerPage, r.bins)
}

// ComputeStatistics rebuilds the entry of every table known to tables, scanning
// up to the configured parallelism at once. The first failure cancels the
// remaining scans; entries computed before it stay registered.
func (r *Registry) ComputeStatistics(ctx context.Context, tables TableSource, pages page.PageFetcher) error {
	if tables == nil || pages == nil {
		return dberror.ErrInvalidArgument.Detailf("computing statistics needs a table source and a page fetcher")
	}

	start := time.Now()
	ids := tables.TableIDs()
	r.logger.Info("computing table statistics", zap.Int("tables", len(ids)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)

	for _, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			name, err := tables.GetTableName(id)
			if err != nil {
				return err
			}
			file, err := tables.GetDatabaseFile(id)
			if err != nil {
				return err
			}

			ts, err := r.Compute(file, pages)
			if err != nil {
				return errors.Wrapf(err, "compute statistics for %s", name)
			}
			r.Set(name, ts)

			r.logger.Info("table statistics computed",
				zap.String("table", name),
				zap.Uint64("table_id", uint64(id)),
				zap.Int("tuples", ts.TotalTuples()),
				zap.Uint64("pages", uint64(ts.NumPages())))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.logger.Error("computing table statistics failed", zap.Error(err))
		return err
	}

	r.logger.Info("table statistics done", zap.Duration("elapsed", time.Since(start)))
	return nil
}
