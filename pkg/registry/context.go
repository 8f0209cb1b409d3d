// Package registry wires the shared components of a database instance.
package registry

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"heapdb/pkg/catalog"
	"heapdb/pkg/config"
	"heapdb/pkg/dberror"
	"heapdb/pkg/logging"
	"heapdb/pkg/memory"
	"heapdb/pkg/optimizer/statistics"
	"heapdb/pkg/primitives"
	"heapdb/pkg/storage/heap"
	"heapdb/pkg/tuple"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// tableFileExt is appended to a table name to form its file name under DataDir.
const tableFileExt = ".dat"

// DatabaseContext holds all shared components that are needed across the database system.
// Operators receive it at construction instead of reaching for globals.
type DatabaseContext struct {
	config     *config.Config
	catalog    *catalog.Catalog
	bufferPool *memory.BufferPool
	stats      *statistics.Registry
	metrics    *prometheus.Registry
	logger     *zap.Logger
	mutex      sync.RWMutex // guards stats
}

// NewDatabaseContext builds a catalog, buffer pool and statistics registry from cfg.
// A nil cfg means config.Default(); a nil logger means the global logger.
func NewDatabaseContext(cfg *config.Config, logger *zap.Logger) (*DatabaseContext, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.GetLogger()
	}

	policy, err := memory.NewPolicy(cfg.BufferPool.Policy)
	if err != nil {
		return nil, err
	}

	metrics := prometheus.NewRegistry()
	cat := catalog.NewCatalog(logger)
	pool := memory.NewBufferPool(cat, cfg.BufferPool.MaxPages,
		memory.WithPolicy(policy),
		memory.WithLogger(logger),
		memory.WithMetrics(memory.NewMetrics(metrics)),
	)
	stats := statistics.NewRegistry(
		statistics.WithHistogramBins(cfg.Statistics.HistogramBins),
		statistics.WithIOCostPerPage(cfg.Statistics.IOCostPerPage),
		statistics.WithParallelism(cfg.Statistics.Parallelism),
		statistics.WithLogger(logging.WithComponent(logger, "statistics")),
	)

	logger.Info("database context ready",
		zap.String("data_dir", cfg.DataDir),
		zap.Int("buffer_pool_pages", pool.Capacity()),
		zap.String("policy", cfg.BufferPool.Policy))

	return &DatabaseContext{
		config:     cfg,
		catalog:    cat,
		bufferPool: pool,
		stats:      stats,
		metrics:    metrics,
		logger:     logger,
	}, nil
}

func (ctx *DatabaseContext) Config() *config.Config {
	return ctx.config
}

func (ctx *DatabaseContext) DataDir() string {
	return ctx.config.DataDir
}

func (ctx *DatabaseContext) Catalog() *catalog.Catalog {
	return ctx.catalog
}

func (ctx *DatabaseContext) BufferPool() *memory.BufferPool {
	return ctx.bufferPool
}

func (ctx *DatabaseContext) Stats() *statistics.Registry {
	ctx.mutex.RLock()
	defer ctx.mutex.RUnlock()
	return ctx.stats
}

// SetStatsRegistry swaps in a different statistics registry, typically one
// pre-populated by a test or an external optimizer.
func (ctx *DatabaseContext) SetStatsRegistry(stats *statistics.Registry) {
	ctx.mutex.Lock()
	defer ctx.mutex.Unlock()
	ctx.stats = stats
}

// Metrics returns the prometheus registry holding buffer pool metrics.
func (ctx *DatabaseContext) Metrics() *prometheus.Registry {
	return ctx.metrics
}

func (ctx *DatabaseContext) Logger() *zap.Logger {
	return ctx.logger
}

// OpenTable opens (creating if needed) DataDir/<name>.dat as a heap file and
// registers it in the catalog, replacing any table with the same name.
func (ctx *DatabaseContext) OpenTable(name string, td *tuple.TupleDescription, primaryKey string) (*heap.HeapFile, error) {
	if name == "" {
		return nil, dberror.ErrInvalidArgument.Detailf("table name must not be empty")
	}
	if err := os.MkdirAll(ctx.config.DataDir, 0o750); err != nil {
		return nil, errors.Wrapf(err, "create data dir %s", ctx.config.DataDir)
	}

	path := primitives.Filepath(filepath.Join(ctx.config.DataDir, name+tableFileExt))
	hf, err := heap.NewHeapFile(path, td)
	if err != nil {
		return nil, err
	}
	if err := ctx.catalog.AddTable(hf, name, primaryKey); err != nil {
		_ = hf.Close()
		return nil, err
	}

	ctx.logger.Debug("table opened", zap.String("table", name), zap.String("path", string(path)))
	return hf, nil
}

// ComputeStatistics rebuilds statistics for every catalog table.
func (ctx *DatabaseContext) ComputeStatistics(c context.Context) error {
	return ctx.Stats().ComputeStatistics(c, ctx.catalog, ctx.bufferPool)
}

// Close flushes every dirty page and closes all table files.
func (ctx *DatabaseContext) Close() error {
	err := ctx.bufferPool.FlushAllPages()
	if err != nil {
		ctx.logger.Error("flush on close failed", zap.Error(err))
	}
	ctx.bufferPool.ResetPageCache()
	ctx.catalog.Clear()
	return err
}
