package transaction

import (
	"github.com/google/uuid"
)

// TransactionID is an opaque token identifying the transaction on whose behalf
// a storage call is made. The storage core only threads it through calls and
// tags dirty pages with it; begin, commit, abort and locking live elsewhere.
type TransactionID struct {
	id uuid.UUID
}

// NewTransactionID creates a new unique transaction ID.
func NewTransactionID() *TransactionID {
	return &TransactionID{id: uuid.New()}
}

// ParseTransactionID restores a transaction ID from its string form.
func ParseTransactionID(s string) (*TransactionID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &TransactionID{id: id}, nil
}

// ID returns the underlying UUID.
func (tid *TransactionID) ID() uuid.UUID {
	return tid.id
}

// Equals checks if two transaction IDs are equal.
func (tid *TransactionID) Equals(other *TransactionID) bool {
	if tid == nil || other == nil {
		return tid == other
	}
	return tid.id == other.id
}

func (tid *TransactionID) String() string {
	if tid == nil {
		return "TID-none"
	}
	return "TID-" + tid.id.String()
}
