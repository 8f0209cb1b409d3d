package execution

import (
	"github.com/pkg/errors"

	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/dberror"
	"heapdb/pkg/iterator"
	"heapdb/pkg/primitives"
	"heapdb/pkg/registry"
	"heapdb/pkg/tuple"
)

// SequentialScan reads every tuple of a table, page by page, through the
// buffer pool.
type SequentialScan struct {
	base      *iterator.BaseIterator
	dbCtx     *registry.DatabaseContext
	tid       *transaction.TransactionID
	tableID   primitives.TableID
	alias     string
	tupleDesc *tuple.TupleDescription
	fileIter  iterator.DbFileIterator
}

// NewSeqScan creates a scan of tableID. A non-empty alias prefixes every output
// field name as "alias.name".
func NewSeqScan(dbCtx *registry.DatabaseContext, tid *transaction.TransactionID, tableID primitives.TableID, alias string) (*SequentialScan, error) {
	if dbCtx == nil {
		return nil, dberror.ErrInvalidArgument.Detailf("database context cannot be nil")
	}

	td, err := dbCtx.Catalog().GetTupleDesc(tableID)
	if err != nil {
		return nil, err
	}

	ss := &SequentialScan{
		dbCtx:     dbCtx,
		tid:       tid,
		tableID:   tableID,
		alias:     alias,
		tupleDesc: aliasedDesc(td, alias),
	}
	ss.base = iterator.NewBaseIterator(ss.readNext)
	return ss, nil
}

func aliasedDesc(td *tuple.TupleDescription, alias string) *tuple.TupleDescription {
	if alias == "" {
		return td
	}

	names := make([]string, td.NumFields())
	for i := range names {
		name, _ := td.GetFieldName(i)
		if name == "" {
			name = "null"
		}
		names[i] = alias + "." + name
	}
	return tuple.MustNewTupleDesc(td.Types, names)
}

func (ss *SequentialScan) TableID() primitives.TableID { return ss.tableID }

func (ss *SequentialScan) Alias() string { return ss.alias }

func (ss *SequentialScan) Open() error {
	dbFile, err := ss.dbCtx.Catalog().GetDatabaseFile(ss.tableID)
	if err != nil {
		return errors.Wrapf(err, "open scan of table %d", ss.tableID)
	}

	ss.fileIter = dbFile.Iterator(ss.tid, ss.dbCtx.BufferPool())
	if err := ss.fileIter.Open(); err != nil {
		return errors.Wrap(err, "open file iterator")
	}

	ss.base.MarkOpened()
	return nil
}

func (ss *SequentialScan) readNext() (*tuple.Tuple, error) {
	if ss.fileIter == nil {
		return nil, dberror.ErrIteratorState.At("readNext", "SequentialScan")
	}

	hasNext, err := ss.fileIter.HasNext()
	if err != nil || !hasNext {
		return nil, err
	}

	t, err := ss.fileIter.Next()
	if err != nil {
		return nil, err
	}
	if ss.alias == "" {
		return t, nil
	}

	// Pages own their tuples, so rebinding happens on a copy.
	out := t.Clone()
	out.RecordID = t.RecordID
	out.SetTupleDesc(ss.tupleDesc)
	return out, nil
}

func (ss *SequentialScan) Rewind() error {
	if err := ss.base.Rewind(); err != nil {
		return err
	}
	return ss.fileIter.Rewind()
}

func (ss *SequentialScan) Close() error {
	if ss.fileIter != nil {
		_ = ss.fileIter.Close()
		ss.fileIter = nil
	}
	return ss.base.Close()
}

func (ss *SequentialScan) GetTupleDesc() *tuple.TupleDescription { return ss.tupleDesc }

func (ss *SequentialScan) HasNext() (bool, error) { return ss.base.HasNext() }

func (ss *SequentialScan) Next() (*tuple.Tuple, error) { return ss.base.Next() }
