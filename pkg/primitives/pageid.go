package primitives

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
)

// PageID identifies a page by its owning table and its position in the table file.
// It is a comparable value, so it can be used directly as a map key.
type PageID struct {
	TableID TableID
	PageNo  PageNumber
}

// NewPageID creates a page identifier.
func NewPageID(tableID TableID, pageNo PageNumber) PageID {
	return PageID{TableID: tableID, PageNo: pageNo}
}

// Equals reports whether both the table and page number match.
func (p PageID) Equals(other PageID) bool {
	return p.TableID == other.TableID && p.PageNo == other.PageNo
}

// Serialize returns the page id as 16 big-endian bytes: table id then page number.
func (p PageID) Serialize() []byte {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf[0:8], uint64(p.TableID))
	binary.BigEndian.PutUint64(buf[8:16], uint64(p.PageNo))
	return buf
}

// HashCode returns an FNV-1a hash of the serialized id.
func (p PageID) HashCode() HashCode {
	h := fnv.New64a()
	_, _ = h.Write(p.Serialize())
	return HashCode(h.Sum64())
}

func (p PageID) String() string {
	return fmt.Sprintf("PageID(table=%d, page=%d)", p.TableID, p.PageNo)
}
