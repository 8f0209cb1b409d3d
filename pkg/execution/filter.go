package execution

import (
	"github.com/pkg/errors"

	"heapdb/pkg/dberror"
	"heapdb/pkg/iterator"
	"heapdb/pkg/tuple"
)

// Filter passes through the child tuples that satisfy a predicate.
// Its schema is the child's.
type Filter struct {
	*iterator.UnaryOperator
	predicate *Predicate
}

func NewFilter(predicate *Predicate, child iterator.DbIterator) (*Filter, error) {
	if predicate == nil {
		return nil, dberror.ErrInvalidArgument.Detailf("predicate cannot be nil")
	}

	f := &Filter{predicate: predicate}
	unary, err := iterator.NewUnaryOperator(child, f.readNext)
	if err != nil {
		return nil, err
	}
	f.UnaryOperator = unary
	return f, nil
}

func (f *Filter) Predicate() *Predicate {
	return f.predicate
}

func (f *Filter) readNext() (*tuple.Tuple, error) {
	for {
		t, err := f.PullChild()
		if err != nil || t == nil {
			return t, err
		}

		passes, err := f.predicate.Filter(t)
		if err != nil {
			return nil, errors.Wrapf(err, "evaluate %s", f.predicate)
		}
		if passes {
			return t, nil
		}
	}
}
