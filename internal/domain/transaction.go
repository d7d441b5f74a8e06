package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Type represents the kind of money movement
type Type string

const (
	TypeDeposit  Type = "deposit"
	TypeTransfer Type = "transfer"
	TypePayment  Type = "payment"
	TypeWithdraw Type = "withdraw"
	TypePix      Type = "pix"
)

// PixType qualifies a pix transaction
type PixType string

const (
	PixNormal    PixType = "normal"
	PixScheduled PixType = "scheduled"
)

// Status represents the lifecycle status of a transaction
type Status string

const (
	StatusScheduled  Status = "SCHEDULED"
	StatusProcessing Status = "PROCESSING"
	StatusProcessed  Status = "PROCESSED"
	StatusCancelled  Status = "CANCELLED"
	StatusFailed     Status = "FAILED"

	// StatusCancelledRestored is declared in the schema but never assigned.
	// Restore reverts to PreviousStatus instead; kept for wire compatibility.
	StatusCancelledRestored Status = "CANCELLED_RESTORED"
)

// Category represents the spending category of a transaction
type Category string

const (
	CategoryAlimentacao Category = "ALIMENTACAO"
	CategoryMoradia     Category = "MORADIA"
	CategoryLazer       Category = "LAZER"
	CategoryTransporte  Category = "TRANSPORTE"
	CategoryOutros      Category = "OUTROS"
	CategoryIncome      Category = "INCOME"
)

// MaxAttachments caps the attachment list on a transaction
const MaxAttachments = 1

var (
	ErrUnknownType     = errors.New("unknown transaction type")
	ErrUnknownStatus   = errors.New("unknown transaction status")
	ErrUnknownCategory = errors.New("unknown transaction category")
)

// ParseType parses a transaction type case-insensitively
func ParseType(s string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case TypeDeposit:
		return TypeDeposit, nil
	case TypeTransfer:
		return TypeTransfer, nil
	case TypePayment:
		return TypePayment, nil
	case TypeWithdraw:
		return TypeWithdraw, nil
	case TypePix:
		return TypePix, nil
	}
	return "", ErrUnknownType
}

// ParseStatus parses a status case-insensitively.
// Stored records historically mixed lower and upper case literals, so the
// edges must canonicalize before any comparison happens.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusScheduled:
		return StatusScheduled, nil
	case StatusProcessing:
		return StatusProcessing, nil
	case StatusProcessed:
		return StatusProcessed, nil
	case StatusCancelled:
		return StatusCancelled, nil
	case StatusFailed:
		return StatusFailed, nil
	case StatusCancelledRestored:
		return StatusCancelledRestored, nil
	}
	return "", ErrUnknownStatus
}

// ParseCategory parses a category case-insensitively
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToUpper(strings.TrimSpace(s))) {
	case CategoryAlimentacao:
		return CategoryAlimentacao, nil
	case CategoryMoradia:
		return CategoryMoradia, nil
	case CategoryLazer:
		return CategoryLazer, nil
	case CategoryTransporte:
		return CategoryTransporte, nil
	case CategoryOutros:
		return CategoryOutros, nil
	case CategoryIncome:
		return CategoryIncome, nil
	}
	return "", ErrUnknownCategory
}

// IsOutflow reports whether the type moves money out of the account.
// Sign is never stored on the record; it is derived from the type.
func (t Type) IsOutflow() bool {
	return t == TypeWithdraw || t == TypePayment || t == TypePix
}

// IsIncome reports whether the type brings money into the account
func (t Type) IsIncome() bool {
	return t == TypeDeposit || t == TypeTransfer
}

// Attachment represents a single file attached to a transaction.
// Content carries the inline payload reference; the bytes themselves are
// validated by the form layer, not here.
type Attachment struct {
	ID        string
	Name      string
	MimeType  string
	SizeBytes int64
	Content   string
}

// Transaction represents a transaction entity in the domain layer
type Transaction struct {
	ID          string
	Type        Type
	PixType     PixType // set only when Type is pix
	Description string
	Amount      decimal.Decimal // absolute value, always non-negative
	Date        time.Time
	Category    Category
	Status      Status

	ScheduledFor    *time.Time // present iff pix + scheduled
	ProcessingUntil *time.Time // present only while PROCESSING
	PreviousStatus  Status     // set when cancelled, empty otherwise
	Locked          bool       // true blocks restoration permanently

	Attachments []Attachment
}

// SignedAmount returns the amount with the sign derived from the type
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type.IsOutflow() {
		return t.Amount.Neg()
	}
	return t.Amount
}

// EffectiveDate returns the date used for sorting and grouping: the scheduled
// date while the transaction is still SCHEDULED, otherwise the nominal date.
func (t *Transaction) EffectiveDate() time.Time {
	if t.Status == StatusScheduled && t.ScheduledFor != nil {
		return *t.ScheduledFor
	}
	return t.Date
}

// Clone returns a deep copy of the transaction. Read-time projections must
// never mutate the snapshot they were given.
func (t *Transaction) Clone() *Transaction {
	c := *t
	if t.ScheduledFor != nil {
		d := *t.ScheduledFor
		c.ScheduledFor = &d
	}
	if t.ProcessingUntil != nil {
		d := *t.ProcessingUntil
		c.ProcessingUntil = &d
	}
	if t.Attachments != nil {
		c.Attachments = make([]Attachment, len(t.Attachments))
		copy(c.Attachments, t.Attachments)
	}
	return &c
}

// Validate ensures the transaction adheres to domain rules
// Returns an error if an invariant is violated
func (t *Transaction) Validate() error {
	if _, err := ParseType(string(t.Type)); err != nil {
		return err
	}
	switch t.Status {
	case StatusScheduled, StatusProcessing, StatusProcessed, StatusCancelled, StatusFailed:
	default:
		return ErrUnknownStatus
	}
	if t.Amount.IsNegative() {
		return errors.New("amount must be non-negative")
	}
	if t.Type.IsIncome() && t.Category != CategoryIncome {
		return errors.New("income-bearing transactions must carry the INCOME category")
	}
	if t.Type.IsOutflow() && t.Category == CategoryIncome {
		return errors.New("outflow transactions cannot carry the INCOME category")
	}
	scheduledPix := t.Type == TypePix && t.PixType == PixScheduled
	if scheduledPix && t.ScheduledFor == nil {
		return errors.New("scheduled pix must carry a scheduled date")
	}
	if !scheduledPix && t.ScheduledFor != nil {
		return errors.New("only scheduled pix carries a scheduled date")
	}
	if t.ProcessingUntil != nil && t.Status != StatusProcessing {
		return errors.New("processingUntil is only valid while PROCESSING")
	}
	if t.Locked && t.Status != StatusCancelled {
		return errors.New("locked is only valid on a cancelled transaction")
	}
	if len(t.Attachments) > MaxAttachments {
		return errors.New("at most one attachment is allowed")
	}
	return nil
}
