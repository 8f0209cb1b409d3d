package types

import (
	"encoding/binary"
	"io"
	"strconv"

	"heapdb/pkg/primitives"
)

// IntField is a 32-bit signed integer field, encoded as 4 big-endian bytes.
type IntField struct {
	Value int32
}

func NewIntField(value int32) *IntField {
	return &IntField{Value: value}
}

func (f *IntField) Serialize(w io.Writer) error {
	_, err := w.Write(f.bytes())
	return err
}

func (f *IntField) Compare(op primitives.Predicate, other Field) (bool, error) {
	o, ok := other.(*IntField)
	if !ok || o == nil {
		return false, typeMismatch(IntType, other)
	}
	return compareOrdered(f.Value, o.Value, op)
}

func (f *IntField) Type() Type {
	return IntType
}

func (f *IntField) String() string {
	return strconv.FormatInt(int64(f.Value), 10)
}

func (f *IntField) Equals(other Field) bool {
	o, ok := other.(*IntField)
	if !ok || o == nil {
		return false
	}
	return f.Value == o.Value
}

func (f *IntField) Hash() primitives.HashCode {
	return fnvHash(f.bytes())
}

func (f *IntField) bytes() []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(f.Value)) // #nosec G115
	return b
}
