package execution

import (
	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/dberror"
	"heapdb/pkg/iterator"
	"heapdb/pkg/logging"
	"heapdb/pkg/primitives"
	"heapdb/pkg/registry"
	"heapdb/pkg/tuple"
)

// Insert adds every tuple of its child to a table and emits the number inserted.
type Insert struct {
	*mutation
	tableID primitives.TableID
}

// NewInsert fails with SchemaMismatch unless the child's schema equals the
// target table's.
func NewInsert(dbCtx *registry.DatabaseContext, tid *transaction.TransactionID, child iterator.DbIterator, tableID primitives.TableID) (*Insert, error) {
	if dbCtx == nil {
		return nil, dberror.ErrInvalidArgument.Detailf("database context cannot be nil")
	}
	if child == nil {
		return nil, dberror.ErrInvalidArgument.Detailf("child operator cannot be nil")
	}

	td, err := dbCtx.Catalog().GetTupleDesc(tableID)
	if err != nil {
		return nil, err
	}
	if !child.GetTupleDesc().Equals(td) {
		return nil, dberror.ErrSchemaMismatch.Detailf("child schema %s does not match table %d schema %s",
			child.GetTupleDesc(), tableID, td)
	}

	logger := logging.WithTable(logging.WithTx(logging.WithComponent(dbCtx.Logger(), "insert"), tid), tableID)
	pool := dbCtx.BufferPool()

	m, err := newMutation(child, logger, func(t *tuple.Tuple) error {
		// The child's tuple may still belong to a cached page.
		return pool.InsertTuple(tid, tableID, t.Clone())
	})
	if err != nil {
		return nil, err
	}
	return &Insert{mutation: m, tableID: tableID}, nil
}

func (i *Insert) TableID() primitives.TableID {
	return i.tableID
}
