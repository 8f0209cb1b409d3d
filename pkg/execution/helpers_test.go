package execution

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/config"
	"heapdb/pkg/iterator"
	"heapdb/pkg/primitives"
	"heapdb/pkg/registry"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

func newTestDB(t *testing.T, logger *zap.Logger) *registry.DatabaseContext {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := registry.NewDatabaseContext(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func pairDesc() *tuple.TupleDescription {
	return tuple.MustNewTupleDesc([]types.Type{types.IntType, types.StringType}, []string{"id", "name"})
}

func pairTuple(id int32, name string) *tuple.Tuple {
	return tuple.NewTupleWithFields(pairDesc(), types.NewIntField(id), types.NewStringField(name))
}

// createTable opens a table holding one row per name, with ids counting from 0.
func createTable(t *testing.T, db *registry.DatabaseContext, table string, names ...string) primitives.TableID {
	t.Helper()
	hf, err := db.OpenTable(table, pairDesc(), "id")
	require.NoError(t, err)

	tid := transaction.NewTransactionID()
	for i, name := range names {
		require.NoError(t, db.BufferPool().InsertTuple(tid, hf.GetID(), pairTuple(int32(i), name)))
	}
	return hf.GetID()
}

func scanAll(t *testing.T, db *registry.DatabaseContext, tableID primitives.TableID) []*tuple.Tuple {
	t.Helper()
	scan, err := NewSeqScan(db, transaction.NewTransactionID(), tableID, "")
	require.NoError(t, err)
	require.NoError(t, scan.Open())
	defer scan.Close()

	tuples, err := iterator.Collect(scan)
	require.NoError(t, err)
	return tuples
}

func ids(t *testing.T, tuples []*tuple.Tuple) []int32 {
	t.Helper()
	out := make([]int32, 0, len(tuples))
	for _, tup := range tuples {
		f, ok := tup.GetField(0).(*types.IntField)
		require.True(t, ok)
		out = append(out, f.Value)
	}
	return out
}

func singleCount(t *testing.T, it iterator.DbIterator) int32 {
	t.Helper()
	tuples, err := iterator.Collect(it)
	require.NoError(t, err)
	require.Len(t, tuples, 1)
	f, ok := tuples[0].GetField(0).(*types.IntField)
	require.True(t, ok)
	return f.Value
}
