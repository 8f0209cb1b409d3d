package execution

import (
	"go.uber.org/zap"

	"heapdb/pkg/iterator"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// countDesc is the schema of the single tuple emitted by Insert and Delete.
var countDesc = tuple.MustNewTupleDesc([]types.Type{types.IntType}, []string{"count"})

// mutation drains its child through apply on the first fetch and emits one
// tuple holding the number of tuples apply accepted. A tuple apply rejects is
// logged and skipped; errors reading the child abort the drain.
type mutation struct {
	*iterator.UnaryOperator
	apply   func(*tuple.Tuple) error
	logger  *zap.Logger
	result  *tuple.Tuple
	emitted bool
}

func newMutation(child iterator.DbIterator, logger *zap.Logger, apply func(*tuple.Tuple) error) (*mutation, error) {
	m := &mutation{apply: apply, logger: logger}
	unary, err := iterator.NewUnaryOperator(child, m.readNext)
	if err != nil {
		return nil, err
	}
	m.UnaryOperator = unary
	return m, nil
}

// Open re-arms the operator, so Close followed by Open runs the drain again.
func (m *mutation) Open() error {
	m.result = nil
	m.emitted = false
	return m.UnaryOperator.Open()
}

// Rewind rewinds the child and re-arms the drain, so the next fetch applies the
// child's tuples again and emits a fresh count.
func (m *mutation) Rewind() error {
	if err := m.UnaryOperator.Rewind(); err != nil {
		return err
	}
	m.result = nil
	m.emitted = false
	return nil
}

func (m *mutation) GetTupleDesc() *tuple.TupleDescription {
	return countDesc
}

func (m *mutation) readNext() (*tuple.Tuple, error) {
	if m.emitted {
		return nil, nil
	}

	if m.result == nil {
		count, err := m.drain()
		if err != nil {
			return nil, err
		}
		m.result = tuple.NewTupleWithFields(countDesc, types.NewIntField(count))
	}

	m.emitted = true
	return m.result, nil
}

func (m *mutation) drain() (int32, error) {
	var count, skipped int32
	for {
		t, err := m.PullChild()
		if err != nil {
			return 0, err
		}
		if t == nil {
			break
		}

		if err := m.apply(t); err != nil {
			skipped++
			m.logger.Warn("tuple skipped", zap.Stringer("tuple", t), zap.Error(err))
			continue
		}
		count++
	}

	m.logger.Debug("mutation complete", zap.Int32("affected", count), zap.Int32("skipped", skipped))
	return count, nil
}
