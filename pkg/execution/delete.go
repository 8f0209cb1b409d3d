package execution

import (
	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/dberror"
	"heapdb/pkg/iterator"
	"heapdb/pkg/logging"
	"heapdb/pkg/registry"
	"heapdb/pkg/tuple"
)

// Delete removes every tuple of its child from the table named by the tuple's
// RecordID and emits the number removed.
type Delete struct {
	*mutation
}

func NewDelete(dbCtx *registry.DatabaseContext, tid *transaction.TransactionID, child iterator.DbIterator) (*Delete, error) {
	if dbCtx == nil {
		return nil, dberror.ErrInvalidArgument.Detailf("database context cannot be nil")
	}

	logger := logging.WithTx(logging.WithComponent(dbCtx.Logger(), "delete"), tid)
	pool := dbCtx.BufferPool()

	m, err := newMutation(child, logger, func(t *tuple.Tuple) error {
		return pool.DeleteTuple(tid, t)
	})
	if err != nil {
		return nil, err
	}
	return &Delete{mutation: m}, nil
}
