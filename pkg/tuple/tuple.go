package tuple

import (
	"strings"

	"heapdb/pkg/types"
)

// Tuple represents a row of data in the database
type Tuple struct {
	TupleDesc *TupleDescription // Schema of this tuple
	fields    []types.Field     // The actual field values
	RecordID  *RecordID         // Where this tuple is stored (can be nil)
}

// NewTuple creates a new tuple with the given schema. The field array length is
// fixed here and never changes.
func NewTuple(td *TupleDescription) *Tuple {
	return &Tuple{
		TupleDesc: td,
		fields:    make([]types.Field, td.NumFields()),
	}
}

// NewTupleWithFields creates a tuple and assigns fields in order.
func NewTupleWithFields(td *TupleDescription, fields ...types.Field) *Tuple {
	t := NewTuple(td)
	for i, f := range fields {
		t.SetField(i, f)
	}
	return t
}

// SetField assigns the ith field. An out-of-range index is ignored.
func (t *Tuple) SetField(i int, field types.Field) {
	if i < 0 || i >= len(t.fields) {
		return
	}
	t.fields[i] = field
}

// GetField returns the ith field, or nil when the index is out of range or unset.
func (t *Tuple) GetField(i int) types.Field {
	if i < 0 || i >= len(t.fields) {
		return nil
	}
	return t.fields[i]
}

// NumFields returns the length of the field array.
func (t *Tuple) NumFields() int {
	return len(t.fields)
}

// SetTupleDesc rebinds the schema without touching the stored values.
func (t *Tuple) SetTupleDesc(td *TupleDescription) {
	t.TupleDesc = td
}

// String returns the fields separated by tabs, terminated by a newline.
func (t *Tuple) String() string {
	parts := make([]string, 0, len(t.fields))
	for _, field := range t.fields {
		if field != nil {
			parts = append(parts, field.String())
		} else {
			parts = append(parts, "null")
		}
	}
	return strings.Join(parts, "\t") + "\n"
}

// Clone copies the field slice. Field values are shared; they are never mutated in place.
func (t *Tuple) Clone() *Tuple {
	c := &Tuple{
		TupleDesc: t.TupleDesc,
		fields:    make([]types.Field, len(t.fields)),
	}
	copy(c.fields, t.fields)
	return c
}
