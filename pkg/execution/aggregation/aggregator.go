package aggregation

import (
	"fmt"
	"sync"

	"heapdb/pkg/dberror"
	"heapdb/pkg/iterator"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// Aggregator folds tuples into per-group running state.
type Aggregator interface {
	// MergeInto updates the running state of the tuple's group.
	MergeInto(t *tuple.Tuple) error

	// Materialize returns the finished results as a restartable iterator with
	// schema GetTupleDesc. Groups appear in the order they were first seen.
	Materialize() iterator.DbIterator

	GetTupleDesc() *tuple.TupleDescription
}

// Spec describes one aggregation: which field is folded, which field groups
// it, and the operation applied.
type Spec struct {
	GroupField int
	GroupType  types.Type
	GroupName  string
	AggField   int
	AggName    string
	Op         AggregateOp
}

// Grouped reports whether the aggregation has a grouping field.
func (s Spec) Grouped() bool {
	return s.GroupField != NoGrouping
}

// ResultDesc builds the output schema [group?, OP(field), COUNT(field)?].
func (s Spec) ResultDesc() *tuple.TupleDescription {
	var (
		fieldTypes []types.Type
		names      []string
	)
	if s.Grouped() {
		fieldTypes = append(fieldTypes, s.GroupType)
		names = append(names, s.GroupName)
	}

	if s.Op == SumCount {
		fieldTypes = append(fieldTypes, types.IntType, types.IntType)
		names = append(names, columnName(Sum, s.AggName), columnName(Count, s.AggName))
	} else {
		fieldTypes = append(fieldTypes, types.IntType)
		names = append(names, columnName(s.Op, s.AggName))
	}
	return tuple.MustNewTupleDesc(fieldTypes, names)
}

func columnName(op AggregateOp, field string) string {
	return fmt.Sprintf("%s(%s)", op, field)
}

// Factory builds the aggregator for one aggregated field type.
type Factory func(spec Spec) (Aggregator, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[types.Type]Factory{
		types.IntType:    integerFactory,
		types.StringType: stringFactory,
	}
)

func integerFactory(spec Spec) (Aggregator, error) {
	agg, err := NewIntegerAggregator(spec)
	if err != nil {
		return nil, err
	}
	return agg, nil
}

func stringFactory(spec Spec) (Aggregator, error) {
	agg, err := NewStringAggregator(spec)
	if err != nil {
		return nil, err
	}
	return agg, nil
}

// RegisterFactory installs the aggregator factory for fields of type t,
// replacing any previous one.
func RegisterFactory(t types.Type, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[t] = f
}

// NewAggregator picks the aggregator for the declared type of the aggregated field.
func NewAggregator(aggType types.Type, spec Spec) (Aggregator, error) {
	factoriesMu.RLock()
	factory, ok := factories[aggType]
	factoriesMu.RUnlock()

	if !ok {
		return nil, dberror.ErrUnsupportedAggregate.Detailf("no aggregator for field type %s", aggType)
	}
	return factory(spec)
}
