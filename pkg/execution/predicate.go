package execution

import (
	"fmt"

	"heapdb/pkg/dberror"
	"heapdb/pkg/primitives"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// Predicate compares one tuple field against a constant operand.
type Predicate struct {
	fieldIndex int
	op         primitives.Predicate
	operand    types.Field
}

func NewPredicate(fieldIndex int, op primitives.Predicate, operand types.Field) *Predicate {
	return &Predicate{
		fieldIndex: fieldIndex,
		op:         op,
		operand:    operand,
	}
}

func (p *Predicate) FieldIndex() int { return p.fieldIndex }

func (p *Predicate) Op() primitives.Predicate { return p.op }

func (p *Predicate) Operand() types.Field { return p.operand }

// Filter reports whether "t[field] op operand" holds. A missing field never
// matches; comparing fields of different types is an error.
func (p *Predicate) Filter(t *tuple.Tuple) (bool, error) {
	if t == nil {
		return false, dberror.ErrInvalidArgument.Detailf("cannot evaluate predicate on nil tuple")
	}

	field := t.GetField(p.fieldIndex)
	if field == nil {
		return false, nil
	}
	return field.Compare(p.op, p.operand)
}

// String renders the predicate, e.g. "field[2] > 100".
func (p *Predicate) String() string {
	operand := "null"
	if p.operand != nil {
		operand = p.operand.String()
	}
	return fmt.Sprintf("field[%d] %s %s", p.fieldIndex, p.op, operand)
}
