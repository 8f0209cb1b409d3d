// Package aggregation implements grouped aggregation: the Aggregate operator
// and the per-type Aggregator engines it dispatches to.
package aggregation

import (
	"github.com/pkg/errors"

	"heapdb/pkg/dberror"
	"heapdb/pkg/iterator"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// AggregateOperator computes one aggregate over its child, optionally grouped
// by a single field.
//
// Open drains the whole child into a fresh Aggregator before the first tuple
// is produced. Rewind drains the child again from the start.
type AggregateOperator struct {
	base       *iterator.BaseIterator
	child      iterator.DbIterator
	spec       Spec
	aggType    types.Type
	tupleDesc  *tuple.TupleDescription
	aggregator Aggregator
	results    iterator.DbIterator
}

// NewAggregateOperator validates the field indexes and picks the aggregator for
// the aggregated field's type. A string field with any operation other than
// COUNT fails with UnsupportedAggregate.
func NewAggregateOperator(child iterator.DbIterator, aField, gField int, op AggregateOp) (*AggregateOperator, error) {
	if child == nil {
		return nil, dberror.ErrInvalidArgument.Detailf("child operator cannot be nil")
	}

	td := child.GetTupleDesc()
	if td == nil {
		return nil, dberror.ErrInvalidArgument.Detailf("child tuple description cannot be nil")
	}

	aType, err := td.TypeAtIndex(aField)
	if err != nil {
		return nil, errors.Wrap(err, "aggregate field")
	}
	aName, _ := td.GetFieldName(aField)

	spec := Spec{GroupField: NoGrouping, AggField: aField, AggName: aName, Op: op}
	if gField != NoGrouping {
		gType, err := td.TypeAtIndex(gField)
		if err != nil {
			return nil, errors.Wrap(err, "group field")
		}
		gName, _ := td.GetFieldName(gField)
		spec.GroupField, spec.GroupType, spec.GroupName = gField, gType, gName
	}

	aggregator, err := NewAggregator(aType, spec)
	if err != nil {
		return nil, err
	}

	agg := &AggregateOperator{
		child:      child,
		spec:       spec,
		aggType:    aType,
		tupleDesc:  aggregator.GetTupleDesc(),
		aggregator: aggregator,
	}
	agg.base = iterator.NewBaseIterator(agg.readNext)
	return agg, nil
}

func (agg *AggregateOperator) GroupField() int { return agg.spec.GroupField }

func (agg *AggregateOperator) GroupFieldName() string { return agg.spec.GroupName }

func (agg *AggregateOperator) AggregateField() int { return agg.spec.AggField }

func (agg *AggregateOperator) AggregateFieldName() string { return agg.spec.AggName }

func (agg *AggregateOperator) AggregateOp() AggregateOp { return agg.spec.Op }

func (agg *AggregateOperator) GetTupleDesc() *tuple.TupleDescription {
	return agg.tupleDesc
}

func (agg *AggregateOperator) Open() error {
	if err := agg.child.Open(); err != nil {
		return errors.Wrap(err, "failed to open child operator")
	}
	if err := agg.aggregate(); err != nil {
		return err
	}
	agg.base.MarkOpened()
	return nil
}

// aggregate drains the child into a fresh aggregator and opens its results.
func (agg *AggregateOperator) aggregate() error {
	if agg.results != nil {
		_ = agg.results.Close()
		agg.results = nil
	}

	aggregator, err := NewAggregator(agg.aggType, agg.spec)
	if err != nil {
		return err
	}
	if err := iterator.ForEach(agg.child, aggregator.MergeInto); err != nil {
		return errors.Wrap(err, "error merging child tuples")
	}

	results := aggregator.Materialize()
	if err := results.Open(); err != nil {
		return errors.Wrap(err, "failed to open aggregate results")
	}
	agg.aggregator = aggregator
	agg.results = results
	return nil
}

func (agg *AggregateOperator) readNext() (*tuple.Tuple, error) {
	if agg.results == nil {
		return nil, nil
	}

	hasNext, err := agg.results.HasNext()
	if err != nil || !hasNext {
		return nil, err
	}
	return agg.results.Next()
}

func (agg *AggregateOperator) Rewind() error {
	if err := agg.base.Rewind(); err != nil {
		return err
	}
	if err := agg.child.Rewind(); err != nil {
		return errors.Wrap(err, "failed to rewind child operator")
	}
	return agg.aggregate()
}

func (agg *AggregateOperator) Close() error {
	if agg.results != nil {
		_ = agg.results.Close()
		agg.results = nil
	}
	if err := agg.child.Close(); err != nil {
		return err
	}
	return agg.base.Close()
}

func (agg *AggregateOperator) HasNext() (bool, error) { return agg.base.HasNext() }

func (agg *AggregateOperator) Next() (*tuple.Tuple, error) { return agg.base.Next() }
