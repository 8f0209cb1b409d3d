package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/config"
	"heapdb/pkg/dberror"
	"heapdb/pkg/iterator"
	"heapdb/pkg/optimizer/statistics"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.BufferPool.MaxPages = 4
	cfg.BufferPool.Policy = "lru"
	return cfg
}

func intDesc() *tuple.TupleDescription {
	return tuple.MustNewTupleDesc([]types.Type{types.IntType}, []string{"v"})
}

func TestNewDatabaseContext_Defaults(t *testing.T) {
	cfg := testConfig(t)
	db, err := NewDatabaseContext(cfg, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	assert.Same(t, cfg, db.Config())
	assert.Equal(t, cfg.DataDir, db.DataDir())
	assert.Equal(t, 4, db.BufferPool().Capacity())
	assert.NotNil(t, db.Catalog())
	assert.NotNil(t, db.Stats())
	assert.NotNil(t, db.Logger())

	families, err := db.Metrics().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewDatabaseContext_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.BufferPool.Policy = "clock"
	_, err := NewDatabaseContext(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestDatabaseContext_OpenTablePersistsAcrossContexts(t *testing.T) {
	cfg := testConfig(t)

	db, err := NewDatabaseContext(cfg, zap.NewNop())
	require.NoError(t, err)

	hf, err := db.OpenTable("numbers", intDesc(), "v")
	require.NoError(t, err)

	id, err := db.Catalog().GetTableID("numbers")
	require.NoError(t, err)
	assert.Equal(t, hf.GetID(), id)

	tid := transaction.NewTransactionID()
	for i := int32(0); i < 5; i++ {
		tup := tuple.NewTupleWithFields(intDesc(), types.NewIntField(i))
		require.NoError(t, db.BufferPool().InsertTuple(tid, id, tup))
	}
	require.NoError(t, db.Close())

	reopened, err := NewDatabaseContext(cfg, zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()

	hf2, err := reopened.OpenTable("numbers", intDesc(), "v")
	require.NoError(t, err)
	assert.Equal(t, hf.GetID(), hf2.GetID())

	it := hf2.Iterator(transaction.NewTransactionID(), reopened.BufferPool())
	require.NoError(t, it.Open())
	defer it.Close()

	n, err := iterator.Count(it)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestDatabaseContext_OpenTableEmptyName(t *testing.T) {
	db, err := NewDatabaseContext(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	_, err = db.OpenTable("", intDesc(), "")
	assert.ErrorIs(t, err, dberror.ErrInvalidArgument)
}

func TestDatabaseContext_ComputeStatistics(t *testing.T) {
	db, err := NewDatabaseContext(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	_, err = db.OpenTable("numbers", intDesc(), "")
	require.NoError(t, err)
	id, err := db.Catalog().GetTableID("numbers")
	require.NoError(t, err)

	tid := transaction.NewTransactionID()
	for i := int32(0); i < 10; i++ {
		require.NoError(t, db.BufferPool().InsertTuple(tid, id, tuple.NewTupleWithFields(intDesc(), types.NewIntField(i))))
	}

	require.NoError(t, db.ComputeStatistics(context.Background()))

	ts, ok := db.Stats().Get("numbers")
	require.True(t, ok)
	assert.Equal(t, 10, ts.TotalTuples())
	assert.Equal(t, 5, ts.EstimateTableCardinality(0.5))
}

func TestDatabaseContext_SetStatsRegistry(t *testing.T) {
	db, err := NewDatabaseContext(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	injected := statistics.NewRegistry()
	db.SetStatsRegistry(injected)
	assert.Same(t, injected, db.Stats())
}

func TestDatabaseContext_SetStatsRegistryConcurrent(t *testing.T) {
	db, err := NewDatabaseContext(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	hf, err := db.OpenTable("numbers", intDesc(), "")
	require.NoError(t, err)
	for i := int32(0); i < 20; i++ {
		require.NoError(t, db.BufferPool().InsertTuple(nil, hf.GetID(), tuple.NewTupleWithFields(intDesc(), types.NewIntField(i))))
	}

	g, gctx := errgroup.WithContext(context.Background())
	for i := 0; i < 4; i++ {
		g.Go(func() error {
			db.SetStatsRegistry(statistics.NewRegistry())
			return nil
		})
		g.Go(func() error {
			return db.ComputeStatistics(gctx)
		})
	}
	require.NoError(t, g.Wait())

	require.NoError(t, db.ComputeStatistics(context.Background()))
	ts, ok := db.Stats().Get("numbers")
	require.True(t, ok)
	assert.Equal(t, 20, ts.TotalTuples())
}
