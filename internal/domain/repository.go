package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when no transaction exists for the given id
var ErrNotFound = errors.New("transaction not found")

// SortOrder controls the direction of a sorted listing
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListQuery narrows a transaction listing. Zero values mean "unconstrained";
// the store applies free-text matching against the description.
type ListQuery struct {
	Query    string
	Type     Type
	Status   Status
	Category Category

	SortKey string // "date" or "amount"; empty keeps insertion order
	Order   SortOrder

	Offset int
	Limit  int // 0 means no limit
}

// Patch describes a partial update to a stored transaction. Nil pointers
// leave the field untouched; the Clear flags remove optional fields, which a
// pointer alone cannot express.
type Patch struct {
	Description *string
	Amount      *decimal.Decimal
	Date        *time.Time
	Category    *Category
	Status      *Status

	ScheduledFor    *time.Time
	ProcessingUntil *time.Time
	PreviousStatus  *Status
	Locked          *bool
	Attachments     *[]Attachment

	ClearScheduledFor    bool
	ClearProcessingUntil bool
	ClearPreviousStatus  bool
}

// TransactionRepository defines the interface for transaction persistence
// operations. The store assigns ids on Create; records are treated as
// immutable snapshots by everything above this interface.
type TransactionRepository interface {
	// List retrieves transactions matching the query
	List(ctx context.Context, q ListQuery) ([]*Transaction, error)

	// GetByID retrieves a transaction by its id
	GetByID(ctx context.Context, id string) (*Transaction, error)

	// Create stores a new transaction and assigns its id
	Create(ctx context.Context, tx *Transaction) error

	// Update applies a partial patch and returns the updated record
	Update(ctx context.Context, id string, patch Patch) (*Transaction, error)

	// Delete permanently removes a transaction from history
	Delete(ctx context.Context, id string) error
}
