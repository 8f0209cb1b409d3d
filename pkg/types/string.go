package types

import (
	"encoding/binary"
	"io"
	"strings"

	"heapdb/pkg/primitives"
)

// StringField is a bounded-width string field.
//
// On disk it is a 4 byte big-endian length followed by StringMaxSize bytes holding
// the string and zero padding. Values longer than StringMaxSize are truncated.
type StringField struct {
	Value string
}

// NewStringField creates a StringField, truncating value to StringMaxSize bytes.
func NewStringField(value string) *StringField {
	if len(value) > StringMaxSize {
		value = value[:StringMaxSize]
	}
	return &StringField{Value: value}
}

// Compare compares lexicographically. LIKE is substring containment.
func (s *StringField) Compare(op primitives.Predicate, other Field) (bool, error) {
	o, ok := other.(*StringField)
	if !ok || o == nil {
		return false, typeMismatch(StringType, other)
	}

	if op == primitives.Like {
		return strings.Contains(s.Value, o.Value), nil
	}
	return compareOrdered(s.Value, o.Value, op)
}

// Serialize writes the length prefix, the bytes and the zero padding.
func (s *StringField) Serialize(w io.Writer) error {
	length := min(len(s.Value), StringMaxSize)

	buf := make([]byte, 4+StringMaxSize)
	binary.BigEndian.PutUint32(buf, uint32(length)) // #nosec G115
	copy(buf[4:], s.Value[:length])

	_, err := w.Write(buf)
	return err
}

func (s *StringField) Type() Type {
	return StringType
}

func (s *StringField) String() string {
	return s.Value
}

func (s *StringField) Equals(other Field) bool {
	o, ok := other.(*StringField)
	if !ok || o == nil {
		return false
	}
	return s.Value == o.Value
}

func (s *StringField) Hash() primitives.HashCode {
	return fnvHash([]byte(s.Value))
}
