package execution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/dberror"
	"heapdb/pkg/iterator"
	"heapdb/pkg/primitives"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

func TestInsert(t *testing.T) {
	db := newTestDB(t, nil)
	tableID := createTable(t, db, "people")

	ins, err := NewInsert(db, transaction.NewTransactionID(), pairSource(), tableID)
	require.NoError(t, err)
	assert.Equal(t, tableID, ins.TableID())

	td := ins.GetTupleDesc()
	assert.Equal(t, 1, td.NumFields())
	assert.Equal(t, types.IntType, td.Types[0])

	require.NoError(t, ins.Open())
	defer ins.Close()

	assert.Equal(t, int32(4), singleCount(t, ins))

	// further calls signal end of data
	hasNext, err := ins.HasNext()
	require.NoError(t, err)
	assert.False(t, hasNext)

	assert.Equal(t, []int32{1, 2, 3, 4}, ids(t, scanAll(t, db, tableID)))

	// rewind drains the child again and inserts a second batch
	require.NoError(t, ins.Rewind())
	assert.Equal(t, int32(4), singleCount(t, ins))
	assert.Equal(t, []int32{1, 2, 3, 4, 1, 2, 3, 4}, ids(t, scanAll(t, db, tableID)))
}

func TestInsert_FromScanOfAnotherTable(t *testing.T) {
	db := newTestDB(t, nil)
	src := createTable(t, db, "src", "a", "b", "c")
	dst := createTable(t, db, "dst")

	scan, err := NewSeqScan(db, transaction.NewTransactionID(), src, "")
	require.NoError(t, err)
	ins, err := NewInsert(db, transaction.NewTransactionID(), scan, dst)
	require.NoError(t, err)

	require.NoError(t, ins.Open())
	assert.Equal(t, int32(3), singleCount(t, ins))
	require.NoError(t, ins.Close())

	// source tuples keep their own record ids
	for _, tup := range scanAll(t, db, src) {
		assert.Equal(t, src, tup.RecordID.PageID.TableID)
	}
	assert.Len(t, scanAll(t, db, dst), 3)
}

func TestInsert_SchemaMismatch(t *testing.T) {
	db := newTestDB(t, nil)
	tableID := createTable(t, db, "people")

	intOnly := tuple.MustNewTupleDesc([]types.Type{types.IntType}, []string{"id"})
	child := iterator.NewTupleSliceIterator(intOnly, nil)

	_, err := NewInsert(db, transaction.NewTransactionID(), child, tableID)
	assert.ErrorIs(t, err, dberror.ErrSchemaMismatch)

	renamed := tuple.MustNewTupleDesc([]types.Type{types.IntType, types.StringType}, []string{"id", "label"})
	_, err = NewInsert(db, transaction.NewTransactionID(), iterator.NewTupleSliceIterator(renamed, nil), tableID)
	assert.ErrorIs(t, err, dberror.ErrSchemaMismatch)

	_, err = NewInsert(db, transaction.NewTransactionID(), pairSource(), primitives.TableID(999))
	assert.ErrorIs(t, err, dberror.ErrNotFound)
}

func TestInsert_CloseOpenRunsAgain(t *testing.T) {
	db := newTestDB(t, nil)
	tableID := createTable(t, db, "people")

	ins, err := NewInsert(db, transaction.NewTransactionID(), pairSource(), tableID)
	require.NoError(t, err)

	require.NoError(t, ins.Open())
	assert.Equal(t, int32(4), singleCount(t, ins))
	require.NoError(t, ins.Close())

	require.NoError(t, ins.Open())
	assert.Equal(t, int32(4), singleCount(t, ins))
	require.NoError(t, ins.Close())

	assert.Len(t, scanAll(t, db, tableID), 8)
}

func TestInsert_SkipsAndLogsFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	db := newTestDB(t, zap.New(core))
	tableID := createTable(t, db, "people")

	// the child declares the table's schema but yields one tuple of another shape
	intOnly := tuple.MustNewTupleDesc([]types.Type{types.IntType}, []string{"id"})
	child := iterator.NewTupleSliceIterator(pairDesc(), []*tuple.Tuple{
		pairTuple(1, "a"),
		tuple.NewTupleWithFields(intOnly, types.NewIntField(2)),
		pairTuple(3, "c"),
	})

	ins, err := NewInsert(db, transaction.NewTransactionID(), child, tableID)
	require.NoError(t, err)
	require.NoError(t, ins.Open())
	assert.Equal(t, int32(2), singleCount(t, ins))
	require.NoError(t, ins.Close())

	skipped := logs.FilterMessage("tuple skipped").All()
	require.Len(t, skipped, 1)
	assert.Equal(t, "insert", skipped[0].ContextMap()["component"])

	assert.Equal(t, []int32{1, 3}, ids(t, scanAll(t, db, tableID)))
}

func TestMutation_NilTransactionSurvivesReload(t *testing.T) {
	db := newTestDB(t, nil)
	tableID := createTable(t, db, "people")

	ins, err := NewInsert(db, nil, pairSource(), tableID)
	require.NoError(t, err)
	require.NoError(t, ins.Open())
	assert.Equal(t, int32(4), singleCount(t, ins))
	require.NoError(t, ins.Close())

	require.NoError(t, db.BufferPool().FlushAllPages())
	db.BufferPool().ResetPageCache()
	assert.Equal(t, []int32{1, 2, 3, 4}, ids(t, scanAll(t, db, tableID)))

	scan, err := NewSeqScan(db, nil, tableID, "")
	require.NoError(t, err)
	filter, err := NewFilter(NewPredicate(0, primitives.GreaterThan, types.NewIntField(2)), scan)
	require.NoError(t, err)
	del, err := NewDelete(db, nil, filter)
	require.NoError(t, err)
	require.NoError(t, del.Open())
	assert.Equal(t, int32(2), singleCount(t, del))
	require.NoError(t, del.Close())

	require.NoError(t, db.BufferPool().FlushAllPages())
	db.BufferPool().ResetPageCache()
	assert.Equal(t, []int32{1, 2}, ids(t, scanAll(t, db, tableID)))
}
