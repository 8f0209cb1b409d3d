package types

import (
	"encoding/binary"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"heapdb/pkg/dberror"
)

// ParseField reads one field of the given type from r, consuming exactly
// fieldType.Size() bytes.
func ParseField(r io.Reader, fieldType Type) (Field, error) {
	switch fieldType {
	case IntType:
		return parseIntField(r)

	case StringType:
		return parseStringField(r)

	default:
		return nil, dberror.ErrInvalidArgument.Detailf("unsupported field type: %v", fieldType)
	}
}

func parseIntField(r io.Reader) (*IntField, error) {
	b := make([]byte, 4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, errors.Wrap(err, "failed to read int field")
	}
	return NewIntField(int32(binary.BigEndian.Uint32(b))), nil // #nosec G115
}

func parseStringField(r io.Reader) (*StringField, error) {
	buf := make([]byte, 4+StringMaxSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrap(err, "failed to read string field")
	}

	length := binary.BigEndian.Uint32(buf)
	if length > StringMaxSize {
		return nil, dberror.ErrCorruptFile.Detailf("string length %d exceeds maximum %d", length, StringMaxSize)
	}
	return &StringField{Value: string(buf[4 : 4+length])}, nil
}

// FieldFromConstant builds a field of type t from its textual form.
func FieldFromConstant(t Type, constant string) (Field, error) {
	switch t {
	case IntType:
		v, err := strconv.ParseInt(constant, 10, 32)
		if err != nil {
			return nil, dberror.ErrInvalidArgument.Detailf("%q is not an int: %v", constant, err)
		}
		return NewIntField(int32(v)), nil

	case StringType:
		return NewStringField(constant), nil

	default:
		return nil, dberror.ErrInvalidArgument.Detailf("unsupported field type: %v", t)
	}
}
