package iterator

import (
	"github.com/pkg/errors"

	"heapdb/pkg/dberror"
	"heapdb/pkg/tuple"
)

// UnaryOperator is the shared core of operators that consume exactly one child,
// such as Filter, Insert and Delete. It owns the child's lifecycle and a
// BaseIterator around the embedding operator's ReadNextFunc, which typically
// calls PullChild until it has something to emit.
//
// The output schema defaults to the child's; operators that reshape tuples
// override GetTupleDesc.
type UnaryOperator struct {
	child DbIterator
	base  *BaseIterator
}

// NewUnaryOperator fails with InvalidArgument when child is nil.
func NewUnaryOperator(child DbIterator, read ReadNextFunc) (*UnaryOperator, error) {
	if child == nil {
		return nil, dberror.ErrInvalidArgument.Detailf("unary operator needs a child")
	}
	return &UnaryOperator{child: child, base: NewBaseIterator(read)}, nil
}

// PullChild returns the child's next tuple, or nil once the child is drained.
func (u *UnaryOperator) PullChild() (*tuple.Tuple, error) {
	more, err := u.child.HasNext()
	if err != nil {
		return nil, errors.Wrap(err, "child HasNext")
	}
	if !more {
		return nil, nil
	}

	t, err := u.child.Next()
	if err != nil {
		return nil, errors.Wrap(err, "child Next")
	}
	return t, nil
}

func (u *UnaryOperator) Open() error {
	if err := u.child.Open(); err != nil {
		return errors.Wrap(err, "open child")
	}
	u.base.MarkOpened()
	return nil
}

// Close closes the child first; the operator stays open if that fails.
func (u *UnaryOperator) Close() error {
	if err := u.child.Close(); err != nil {
		return errors.Wrap(err, "close child")
	}
	return u.base.Close()
}

// Rewind restarts the child and drops this operator's lookahead. State the
// ReadNextFunc keeps of its own must be reset by the embedding operator.
func (u *UnaryOperator) Rewind() error {
	if err := u.child.Rewind(); err != nil {
		return errors.Wrap(err, "rewind child")
	}
	return u.base.Rewind()
}

func (u *UnaryOperator) HasNext() (bool, error) { return u.base.HasNext() }

func (u *UnaryOperator) Next() (*tuple.Tuple, error) { return u.base.Next() }

func (u *UnaryOperator) GetTupleDesc() *tuple.TupleDescription { return u.child.GetTupleDesc() }

// Child exposes the wrapped operator, mainly for plan inspection in tests.
func (u *UnaryOperator) Child() DbIterator { return u.child }
