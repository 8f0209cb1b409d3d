package primitives

// HashCode represents a hash value used for fast comparisons and lookups.
type HashCode uint64

// FileID is the identity of a physical file, derived from hashing its path.
type FileID uint64

// TableID identifies a table. A heap table's id is the FileID of its canonical path.
type TableID uint64

// PageNumber represents a page number within a table file.
type PageNumber uint64

// SlotID represents a slot number within a page.
type SlotID uint16

// ColumnID identifies a column within a tuple.
type ColumnID uint32

// Permissions is the access intent a caller declares when fetching a page.
type Permissions int

const (
	ReadOnly Permissions = iota
	ReadWrite
)

func (p Permissions) String() string {
	switch p {
	case ReadOnly:
		return "READ_ONLY"
	case ReadWrite:
		return "READ_WRITE"
	default:
		return "UNKNOWN"
	}
}
