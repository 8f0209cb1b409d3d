package aggregation

import (
	"sync"

	"heapdb/pkg/dberror"
	"heapdb/pkg/iterator"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

type intState struct {
	value int32 // MIN, MAX or the current AVG
	sum   int64
	count int64
}

// IntegerAggregator implements every AggregateOp over an integer field.
type IntegerAggregator struct {
	spec      Spec
	tupleDesc *tuple.TupleDescription
	groups    *groupTable[intState]
	mutex     sync.Mutex
}

func NewIntegerAggregator(spec Spec) (*IntegerAggregator, error) {
	switch spec.Op {
	case Min, Max, Sum, Avg, Count, SumCount:
	default:
		return nil, dberror.ErrUnsupportedAggregate.Detailf("integer aggregator does not support %s", spec.Op)
	}

	return &IntegerAggregator{
		spec:      spec,
		tupleDesc: spec.ResultDesc(),
		groups:    newGroupTable[intState](),
	}, nil
}

func (ia *IntegerAggregator) GetTupleDesc() *tuple.TupleDescription {
	return ia.tupleDesc
}

func (ia *IntegerAggregator) MergeInto(t *tuple.Tuple) error {
	key, err := groupKey(ia.spec, t)
	if err != nil {
		return err
	}

	f, ok := t.GetField(ia.spec.AggField).(*types.IntField)
	if !ok {
		return dberror.ErrSchemaMismatch.Detailf("aggregate field %d is not an integer", ia.spec.AggField)
	}
	v := f.Value

	ia.mutex.Lock()
	defer ia.mutex.Unlock()

	grp := ia.groups.lookup(key, func() intState { return intState{value: v} })
	st := &grp.state
	st.sum += int64(v)
	st.count++

	switch ia.spec.Op {
	case Min:
		st.value = min(st.value, v)
	case Max:
		st.value = max(st.value, v)
	case Avg:
		st.value = int32(st.sum / st.count) // #nosec G115
	}
	return nil
}

func (ia *IntegerAggregator) Materialize() iterator.DbIterator {
	ia.mutex.Lock()
	defer ia.mutex.Unlock()

	results := make([]*tuple.Tuple, 0, ia.groups.len())
	for _, grp := range ia.groups.order {
		results = append(results, resultTuple(ia.tupleDesc, grp.key, ia.values(grp.state)...))
	}
	return iterator.NewTupleSliceIterator(ia.tupleDesc, results)
}

func (ia *IntegerAggregator) values(st intState) []types.Field {
	// #nosec G115
	switch ia.spec.Op {
	case Sum:
		return []types.Field{types.NewIntField(int32(st.sum))}
	case Count:
		return []types.Field{types.NewIntField(int32(st.count))}
	case SumCount:
		return []types.Field{types.NewIntField(int32(st.sum)), types.NewIntField(int32(st.count))}
	default:
		return []types.Field{types.NewIntField(st.value)}
	}
}
