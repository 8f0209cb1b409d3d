package types

// Type is the declared type of a field. It determines the field's byte width.
type Type int

const (
	IntType Type = iota
	StringType
)

// StringMaxSize is the fixed number of payload bytes reserved for every string field.
const StringMaxSize = 128

// Size returns the number of bytes a field of this type occupies on disk.
// Integers are 4 bytes. Strings are a 4 byte length prefix plus StringMaxSize bytes.
func (t Type) Size() uint32 {
	switch t {
	case IntType:
		return 4
	case StringType:
		return 4 + StringMaxSize
	default:
		return 0
	}
}

// String returns a string representation of the type
func (t Type) String() string {
	switch t {
	case IntType:
		return "INT_TYPE"
	case StringType:
		return "STRING_TYPE"
	default:
		return "UNKNOWN_TYPE"
	}
}
