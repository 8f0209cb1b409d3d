package aggregation

import (
	"sync"

	"heapdb/pkg/dberror"
	"heapdb/pkg/iterator"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// StringAggregator counts string values per group. COUNT is the only
// operation it supports.
type StringAggregator struct {
	spec      Spec
	tupleDesc *tuple.TupleDescription
	groups    *groupTable[int32]
	mutex     sync.Mutex
}

func NewStringAggregator(spec Spec) (*StringAggregator, error) {
	if spec.Op != Count {
		return nil, dberror.ErrUnsupportedAggregate.Detailf("string aggregator does not support %s", spec.Op)
	}

	return &StringAggregator{
		spec:      spec,
		tupleDesc: spec.ResultDesc(),
		groups:    newGroupTable[int32](),
	}, nil
}

func (sa *StringAggregator) GetTupleDesc() *tuple.TupleDescription {
	return sa.tupleDesc
}

func (sa *StringAggregator) MergeInto(t *tuple.Tuple) error {
	key, err := groupKey(sa.spec, t)
	if err != nil {
		return err
	}
	if _, ok := t.GetField(sa.spec.AggField).(*types.StringField); !ok {
		return dberror.ErrSchemaMismatch.Detailf("aggregate field %d is not a string", sa.spec.AggField)
	}

	sa.mutex.Lock()
	defer sa.mutex.Unlock()

	grp := sa.groups.lookup(key, func() int32 { return 0 })
	grp.state++
	return nil
}

func (sa *StringAggregator) Materialize() iterator.DbIterator {
	sa.mutex.Lock()
	defer sa.mutex.Unlock()

	results := make([]*tuple.Tuple, 0, sa.groups.len())
	for _, grp := range sa.groups.order {
		results = append(results, resultTuple(sa.tupleDesc, grp.key, types.NewIntField(grp.state)))
	}
	return iterator.NewTupleSliceIterator(sa.tupleDesc, results)
}
