package types

import (
	"io"

	"heapdb/pkg/primitives"
)

// Field is a typed value with a deterministic binary encoding.
type Field interface {
	// Serialize writes exactly Type().Size() bytes.
	Serialize(w io.Writer) error

	// Compare evaluates "this op other". Comparing fields of different types fails.
	Compare(op primitives.Predicate, other Field) (bool, error)

	Type() Type

	String() string

	Equals(other Field) bool

	Hash() primitives.HashCode
}
