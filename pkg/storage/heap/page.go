package heap

import (
	"bytes"
	"io"
	"math"
	"sync"

	"github.com/pkg/errors"

	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/dberror"
	"heapdb/pkg/primitives"
	"heapdb/pkg/storage/page"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// HeapPage represents a single page in a heap file and implements the page.Page interface.
//
// Page Layout:
//   - Header: one bit per slot, LSB first within each byte, ceil(numSlots/8) bytes
//   - Slots: numSlots fixed-width tuple slots, each schema.GetSize() bytes
//   - Padding: zero bytes up to the page size
//
// A slot's header bit is set iff the slot holds a tuple. The number of slots is
// floor(pageBits / (tupleBits + 1)), one header bit plus the tuple per slot.
type HeapPage struct {
	pageID    primitives.PageID
	tupleDesc *tuple.TupleDescription
	header    []byte
	tuples    []*tuple.Tuple // indexed by slot number; nil for empty slots
	numSlots  primitives.SlotID
	dirty     bool
	dirtier   *transaction.TransactionID
	oldData   []byte // before image
	mutex     sync.RWMutex
}

// NewEmptyHeapPage creates a page with every slot empty.
func NewEmptyHeapPage(pid primitives.PageID, td *tuple.TupleDescription) (*HeapPage, error) {
	return NewHeapPage(pid, make([]byte, page.Size()), td)
}

// NewHeapPage decodes raw page bytes. The data is also kept as the page's before image.
//
// Parameters:
//   - pid: identity of the page
//   - data: exactly page.Size() bytes
//   - td: schema of the tuples stored on the page
//
// Returns:
//   - *HeapPage: the decoded page
//   - error: if the data has the wrong length or a tuple fails to decode
func NewHeapPage(pid primitives.PageID, data []byte, td *tuple.TupleDescription) (*HeapPage, error) {
	if len(data) != page.Size() {
		return nil, dberror.ErrInvalidArgument.Detailf("invalid page data size: expected %d, got %d", page.Size(), len(data))
	}

	numSlots, err := NumSlotsFor(td)
	if err != nil {
		return nil, err
	}

	hp := &HeapPage{
		pageID:    pid,
		tupleDesc: td,
		numSlots:  numSlots,
		oldData:   make([]byte, len(data)),
	}
	hp.header = make([]byte, headerSize(hp.numSlots))
	hp.tuples = make([]*tuple.Tuple, hp.numSlots)

	if err := hp.decode(data); err != nil {
		return nil, err
	}

	copy(hp.oldData, data)
	return hp, nil
}

// NumSlotsFor returns how many tuples of schema td fit on one page. It fails with
// InvalidArgument when the count does not fit in a SlotID.
func NumSlotsFor(td *tuple.TupleDescription) (primitives.SlotID, error) {
	tupleBits := int(td.GetSize()) * 8
	n := page.Size() * 8 / (tupleBits + 1)
	if n > math.MaxUint16 {
		return 0, dberror.ErrInvalidArgument.Detailf("%d byte pages hold %d tuples of %d bytes, more than %d slots",
			page.Size(), n, td.GetSize(), math.MaxUint16)
	}
	return primitives.SlotID(n), nil // #nosec G115
}

func headerSize(numSlots primitives.SlotID) int {
	return (int(numSlots) + 7) / 8
}

func (hp *HeapPage) decode(data []byte) error {
	reader := bytes.NewReader(data)
	if _, err := io.ReadFull(reader, hp.header); err != nil {
		return errors.Wrap(err, "failed to read page header")
	}

	tupleSize := int64(hp.tupleDesc.GetSize())
	for i := primitives.SlotID(0); i < hp.numSlots; i++ {
		if !hp.isSlotUsed(i) {
			if _, err := reader.Seek(tupleSize, io.SeekCurrent); err != nil {
				return errors.Wrapf(err, "failed to skip empty slot %d", i)
			}
			continue
		}

		t, err := readTuple(reader, hp.tupleDesc)
		if err != nil {
			return errors.Wrapf(err, "failed to read tuple at slot %d", i)
		}
		t.RecordID = tuple.NewRecordID(hp.pageID, i)
		hp.tuples[i] = t
	}
	return nil
}

// readTuple decodes one tuple's fields in schema order.
func readTuple(reader io.Reader, td *tuple.TupleDescription) (*tuple.Tuple, error) {
	t := tuple.NewTuple(td)
	for j, fieldType := range td.Types {
		field, err := types.ParseField(reader, fieldType)
		if err != nil {
			return nil, err
		}
		t.SetField(j, field)
	}
	return t, nil
}

// GetID returns the unique page identifier for this heap page.
func (hp *HeapPage) GetID() primitives.PageID {
	return hp.pageID
}

// GetTupleDesc returns the schema of the tuples on this page.
func (hp *HeapPage) GetTupleDesc() *tuple.TupleDescription {
	return hp.tupleDesc
}

// IsDirty reports whether the page was modified since it was last written.
func (hp *HeapPage) IsDirty() bool {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()
	return hp.dirty
}

// LastDirtier returns the transaction that last marked this page dirty. It is nil
// for clean pages and for pages dirtied without a transaction.
func (hp *HeapPage) LastDirtier() *transaction.TransactionID {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()
	return hp.dirtier
}

// MarkDirty marks this page as dirty or clean. tid may be nil.
func (hp *HeapPage) MarkDirty(dirty bool, tid *transaction.TransactionID) {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()

	hp.dirty = dirty
	if dirty {
		hp.dirtier = tid
	} else {
		hp.dirtier = nil
	}
}

// GetPageData encodes the page: header, then every slot (the tuple or zeros),
// then zero padding up to the page size.
func (hp *HeapPage) GetPageData() []byte {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()
	return hp.encode()
}

func (hp *HeapPage) encode() []byte {
	size := page.Size()
	buf := bytes.NewBuffer(make([]byte, 0, size))
	buf.Write(hp.header)

	tupleSize := int(hp.tupleDesc.GetSize())
	for i := primitives.SlotID(0); i < hp.numSlots; i++ {
		t := hp.tuples[i]
		if !hp.isSlotUsed(i) || t == nil {
			buf.Write(make([]byte, tupleSize))
			continue
		}
		writeTuple(buf, t, hp.tupleDesc)
	}

	buf.Write(make([]byte, size-buf.Len()))
	return buf.Bytes()
}

func writeTuple(buf *bytes.Buffer, t *tuple.Tuple, td *tuple.TupleDescription) {
	for j, fieldType := range td.Types {
		field := t.GetField(j)
		if field == nil {
			buf.Write(make([]byte, fieldType.Size()))
			continue
		}
		// Writes to a bytes.Buffer only fail on out-of-memory panics.
		_ = field.Serialize(buf)
	}
}

// GetBeforeImage returns the page as it was at load time or at the last SetBeforeImage.
func (hp *HeapPage) GetBeforeImage() page.Page {
	hp.mutex.RLock()
	data := hp.oldData
	hp.mutex.RUnlock()

	before, err := NewHeapPage(hp.pageID, data, hp.tupleDesc)
	if err != nil {
		return nil
	}
	return before
}

// SetBeforeImage captures the current contents as the before image.
func (hp *HeapPage) SetBeforeImage() {
	data := hp.GetPageData()

	hp.mutex.Lock()
	hp.oldData = data
	hp.mutex.Unlock()
}

// NumSlots returns the slot capacity of the page.
func (hp *HeapPage) NumSlots() primitives.SlotID {
	return hp.numSlots
}

// GetNumEmptySlots returns the count of unset header bits.
func (hp *HeapPage) GetNumEmptySlots() primitives.SlotID {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()
	return hp.numEmptySlots()
}

func (hp *HeapPage) numEmptySlots() primitives.SlotID {
	var empty primitives.SlotID
	for i := primitives.SlotID(0); i < hp.numSlots; i++ {
		if !hp.isSlotUsed(i) {
			empty++
		}
	}
	return empty
}

// IsSlotUsed reports whether slot i's header bit is set.
func (hp *HeapPage) IsSlotUsed(i primitives.SlotID) bool {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()
	return hp.isSlotUsed(i)
}

func (hp *HeapPage) isSlotUsed(i primitives.SlotID) bool {
	if i >= hp.numSlots {
		return false
	}
	return hp.header[i/8]&(1<<(i%8)) != 0
}

func (hp *HeapPage) setSlot(i primitives.SlotID, used bool) {
	if used {
		hp.header[i/8] |= 1 << (i % 8)
	} else {
		hp.header[i/8] &^= 1 << (i % 8)
	}
}

// InsertTuple stores t in the lowest empty slot and sets t's RecordID.
//
// Errors:
//   - SchemaMismatch when t's schema differs from the page's
//   - PageFull when every slot is in use
func (hp *HeapPage) InsertTuple(t *tuple.Tuple) error {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()

	if !hp.tupleDesc.Equals(t.TupleDesc) {
		return dberror.ErrSchemaMismatch.Detailf("tuple schema %s does not match page schema %s",
			t.TupleDesc, hp.tupleDesc).At("InsertTuple", "HeapPage")
	}

	for i := primitives.SlotID(0); i < hp.numSlots; i++ {
		if hp.isSlotUsed(i) {
			continue
		}
		hp.setSlot(i, true)
		t.RecordID = tuple.NewRecordID(hp.pageID, i)
		hp.tuples[i] = t
		return nil
	}

	return dberror.ErrPageFull.Detailf("%s has no empty slot", hp.pageID).At("InsertTuple", "HeapPage")
}

// DeleteTuple clears the slot named by t's RecordID.
//
// Errors:
//   - WrongPage when t has no RecordID or it refers to another page
//   - SlotEmpty when the slot is already empty
func (hp *HeapPage) DeleteTuple(t *tuple.Tuple) error {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()

	rid := t.RecordID
	if rid == nil || !rid.PageID.Equals(hp.pageID) {
		return dberror.ErrWrongPage.Detailf("tuple is not on %s", hp.pageID).At("DeleteTuple", "HeapPage")
	}

	if !hp.isSlotUsed(rid.TupleNum) {
		return dberror.ErrSlotEmpty.Detailf("slot %d of %s", rid.TupleNum, hp.pageID).At("DeleteTuple", "HeapPage")
	}

	hp.setSlot(rid.TupleNum, false)
	hp.tuples[rid.TupleNum] = nil
	return nil
}

// GetTuples returns the stored tuples in slot order, skipping empty slots.
func (hp *HeapPage) GetTuples() []*tuple.Tuple {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()

	tuples := make([]*tuple.Tuple, 0, hp.numSlots-hp.numEmptySlots())
	for i, t := range hp.tuples {
		if hp.isSlotUsed(primitives.SlotID(i)) && t != nil {
			tuples = append(tuples, t)
		}
	}
	return tuples
}

// GetTupleAt returns the tuple in slot idx, or nil if the slot is empty.
func (hp *HeapPage) GetTupleAt(idx primitives.SlotID) (*tuple.Tuple, error) {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()

	if idx >= hp.numSlots {
		return nil, dberror.ErrNotFound.Detailf("slot index %d out of bounds", idx)
	}
	return hp.tuples[idx], nil
}
