package tuple

import (
	"fmt"

	"heapdb/pkg/primitives"
)

// RecordID is the persisted location of a tuple: a page and a slot within it.
type RecordID struct {
	PageID   primitives.PageID
	TupleNum primitives.SlotID
}

// NewRecordID creates a new RecordID
func NewRecordID(pageID primitives.PageID, tupleNum primitives.SlotID) *RecordID {
	return &RecordID{
		PageID:   pageID,
		TupleNum: tupleNum,
	}
}

// Equals reports whether both the page and the slot match.
func (rid *RecordID) Equals(other *RecordID) bool {
	if rid == nil || other == nil {
		return rid == other
	}
	return rid.PageID.Equals(other.PageID) && rid.TupleNum == other.TupleNum
}

func (rid *RecordID) String() string {
	return fmt.Sprintf("RecordID(page=%s, tuple=%d)", rid.PageID.String(), rid.TupleNum)
}
