package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytebank/bytebank-backend/internal/domain"
)

// SettlementWindow is how long a transaction stays in PROCESSING before the
// settlement process is expected to resolve it. Deliberately short so the
// state change is observable within a session.
const SettlementWindow = 2 * time.Minute

// MinDescriptionLen is the shortest accepted description after trimming
const MinDescriptionLen = 3

// Disablement reasons surfaced alongside state errors
const (
	ReasonAlreadySettled = "already settled"
	ReasonInvalidForEdit = "invalid for edit"
)

var (
	ErrNotEditable    = errors.New("transaction is not editable")
	ErrNotCancellable = errors.New("transaction cannot be cancelled")
	ErrNotRestorable  = errors.New("transaction cannot be restored")
	ErrNotRemovable   = errors.New("transaction cannot be removed")
	ErrLocked         = errors.New("restoration is locked")
)

// FieldErrors maps field names to validation messages. It is the non-fatal
// error shape for malformed input: callers render it next to the form fields
// instead of failing the request wholesale.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewTransactionInput carries the submitted form values for a new or edited
// transaction. Amount arrives as raw text because the form accepts both "."
// and "," decimal separators.
type NewTransactionInput struct {
	Type         domain.Type
	PixType      domain.PixType
	Description  string
	Amount       string
	Date         time.Time
	ScheduledFor *time.Time

	// Category is the user's explicit choice; empty means none was made and
	// the classifier suggestion (or OUTROS) applies.
	Category domain.Category

	Attachments []domain.Attachment
}

// ActionState describes which actions the current status permits
type ActionState struct {
	EditAllowed   bool
	CancelAllowed bool
	EditReason    string
	CancelReason  string
}

// ActionStateFor returns the edit/cancel eligibility for a status.
// PROCESSED is terminal for both; CANCELLED and FAILED still allow removal
// from history. Anything unknown is fully disabled.
func ActionStateFor(s domain.Status) ActionState {
	switch s {
	case domain.StatusScheduled, domain.StatusProcessing:
		return ActionState{EditAllowed: true, CancelAllowed: true}
	case domain.StatusProcessed:
		return ActionState{
			EditReason:   ReasonAlreadySettled,
			CancelReason: ReasonAlreadySettled,
		}
	case domain.StatusCancelled, domain.StatusFailed:
		return ActionState{
			CancelAllowed: true,
			EditReason:    ReasonInvalidForEdit,
		}
	default:
		return ActionState{}
	}
}

// Service decides the initial status of new transactions and applies the
// permitted status transitions against the store
type Service struct {
	Repo       domain.TransactionRepository
	Classifier domain.Classifier
}

// NewService creates a new lifecycle Service instance
func NewService(repo domain.TransactionRepository, classifier domain.Classifier) *Service {
	return &Service{Repo: repo, Classifier: classifier}
}

// Finalize validates the input and builds the transaction record, assigning
// its initial status as a pure function of (type, pixType, date, scheduledFor,
// now). It never touches the store.
func (s *Service) Finalize(input NewTransactionInput, now time.Time) (*domain.Transaction, error) {
	fieldErrs := FieldErrors{}

	description := strings.TrimSpace(input.Description)
	if len([]rune(description)) < MinDescriptionLen {
		fieldErrs["description"] = "description must have at least 3 characters"
	}

	amount, err := domain.ParseAmount(input.Amount)
	if err != nil {
		fieldErrs["amount"] = "amount must be a positive value with at most 2 decimal places"
	}

	if _, err := domain.ParseType(string(input.Type)); err != nil {
		fieldErrs["type"] = "unknown transaction type"
	}

	loc := now.Location()
	scheduledPix := input.Type == domain.TypePix && input.PixType == domain.PixScheduled
	if scheduledPix {
		if input.ScheduledFor == nil {
			fieldErrs["scheduledFor"] = "scheduled pix requires a scheduling date"
		} else if domain.BeforeDay(*input.ScheduledFor, now, loc) {
			fieldErrs["scheduledFor"] = "scheduling date cannot be earlier than today"
		}
	}

	category, catErr := s.resolveCategory(input, description)
	if catErr != "" {
		fieldErrs["category"] = catErr
	}

	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	tx := &domain.Transaction{
		Type:        input.Type,
		Description: description,
		Amount:      amount,
		Date:        input.Date,
		Category:    category,
		Attachments: capAttachments(input.Attachments),
	}
	if input.Type == domain.TypePix {
		tx.PixType = input.PixType
	}

	switch {
	case scheduledPix:
		tx.Status = domain.StatusScheduled
		d := *input.ScheduledFor
		tx.ScheduledFor = &d
	case input.Type != domain.TypePix && input.Date.After(now):
		tx.Status = domain.StatusScheduled
	default:
		// pix normal, or a nominal date that is today or past
		tx.Status = domain.StatusProcessing
		until := now.Add(SettlementWindow)
		tx.ProcessingUntil = &until
	}

	return tx, nil
}

// resolveCategory applies the category rules: income-bearing types are always
// INCOME and not overridable; for outflows an explicit user choice wins, and
// only when none was made does the classifier suggestion (or OUTROS) apply.
func (s *Service) resolveCategory(input NewTransactionInput, description string) (domain.Category, string) {
	if input.Type.IsIncome() {
		return domain.CategoryIncome, ""
	}
	if input.Category == domain.CategoryIncome {
		return "", "choose an expense category"
	}
	if input.Category != "" {
		return input.Category, ""
	}
	if s.Classifier != nil {
		if suggested, ok := s.Classifier.Suggest(description); ok {
			return suggested, ""
		}
	}
	return domain.CategoryOutros, ""
}

func capAttachments(in []domain.Attachment) []domain.Attachment {
	if len(in) <= domain.MaxAttachments {
		return in
	}
	return in[:domain.MaxAttachments]
}

// Create finalizes the input and stores the new transaction
func (s *Service) Create(ctx context.Context, input NewTransactionInput, now time.Time) (*domain.Transaction, error) {
	tx, err := s.Finalize(input, now)
	if err != nil {
		return nil, err
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return tx, nil
}

// Update re-finalizes an editable transaction from the submitted form.
// Status and the settlement window are recomputed the same way creation
// computes them.
func (s *Service) Update(ctx context.Context, id string, input NewTransactionInput, now time.Time) (*domain.Transaction, error) {
	current, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if state := ActionStateFor(current.Status); !state.EditAllowed {
		return nil, fmt.Errorf("%w: %s", ErrNotEditable, state.EditReason)
	}

	next, err := s.Finalize(input, now)
	if err != nil {
		return nil, err
	}

	patch := domain.Patch{
		Description:          &next.Description,
		Amount:               &next.Amount,
		Date:                 &next.Date,
		Category:             &next.Category,
		Status:               &next.Status,
		ScheduledFor:         next.ScheduledFor,
		Attachments:          &next.Attachments,
		ClearPreviousStatus:  true,
		ClearProcessingUntil: true,
	}
	if next.ProcessingUntil != nil {
		patch.ProcessingUntil = next.ProcessingUntil
		patch.ClearProcessingUntil = false
	}
	if next.ScheduledFor == nil {
		patch.ClearScheduledFor = true
	}

	updated, err := s.Repo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	return updated, nil
}

// Cancel moves a SCHEDULED or PROCESSING transaction to CANCELLED, remembering
// the previous status so it can be restored. Manual cancellation never locks.
func (s *Service) Cancel(ctx context.Context, id string) (*domain.Transaction, error) {
	current, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if current.Status != domain.StatusScheduled && current.Status != domain.StatusProcessing {
		state := ActionStateFor(current.Status)
		return nil, fmt.Errorf("%w: %s", ErrNotCancellable, state.CancelReason)
	}

	cancelled := domain.StatusCancelled
	previous := current.Status
	updated, err := s.Repo.Update(ctx, id, domain.Patch{
		Status:               &cancelled,
		PreviousStatus:       &previous,
		ClearProcessingUntil: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to cancel transaction: %w", err)
	}
	return updated, nil
}

// Restore reverts a non-locked CANCELLED transaction to its previous status
// and clears the restoration bookkeeping. Going back to PROCESSING re-arms
// the settlement window from now, since cancellation dropped the old hint and
// the sweep ignores records without one.
func (s *Service) Restore(ctx context.Context, id string, now time.Time) (*domain.Transaction, error) {
	current, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if current.Status != domain.StatusCancelled {
		return nil, fmt.Errorf("%w: only cancelled transactions can be restored", ErrNotRestorable)
	}
	if current.Locked {
		return nil, fmt.Errorf("%w: expired schedule cannot be restored", ErrLocked)
	}
	if current.PreviousStatus == "" {
		return nil, fmt.Errorf("%w: previous status is unknown", ErrNotRestorable)
	}

	previous := current.PreviousStatus
	locked := false
	patch := domain.Patch{
		Status:              &previous,
		Locked:              &locked,
		ClearPreviousStatus: true,
	}
	if previous == domain.StatusProcessing {
		until := now.Add(SettlementWindow)
		patch.ProcessingUntil = &until
	}
	updated, err := s.Repo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to restore transaction: %w", err)
	}
	return updated, nil
}

// Remove permanently deletes a transaction from history. Settled transactions
// stay; everything else may be removed per the eligibility table.
func (s *Service) Remove(ctx context.Context, id string) error {
	current, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if state := ActionStateFor(current.Status); !state.CancelAllowed {
		return fmt.Errorf("%w: %s", ErrNotRemovable, state.CancelReason)
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}
