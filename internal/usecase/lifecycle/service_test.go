package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/bytebank/bytebank-backend/internal/domain"
	"github.com/bytebank/bytebank-backend/internal/usecase/classifier"
)

// MockTransactionRepository is a mock implementation of TransactionRepository for testing
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) List(ctx context.Context, q domain.ListQuery) ([]*domain.Transaction, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) Update(ctx context.Context, id string, patch domain.Patch) (*domain.Transaction, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService() *Service {
	return NewService(new(MockTransactionRepository), classifier.NewKeyword())
}

func TestFinalize_DepositTodayIsProcessing(t *testing.T) {
	s := newTestService()

	tx, err := s.Finalize(NewTransactionInput{
		Type:        domain.TypeDeposit,
		Description: "Deposito em conta",
		Amount:      "100",
		Date:        testNow,
	}, testNow)

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, tx.Status)
	assert.Equal(t, domain.CategoryIncome, tx.Category)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(100)))
	if assert.NotNil(t, tx.ProcessingUntil) {
		assert.Equal(t, testNow.Add(SettlementWindow), *tx.ProcessingUntil)
	}
	assert.Nil(t, tx.ScheduledFor)
}

func TestFinalize_FutureDatedTransferIsScheduled(t *testing.T) {
	s := newTestService()

	tx, err := s.Finalize(NewTransactionInput{
		Type:        domain.TypeTransfer,
		Description: "Transferencia futura",
		Amount:      "250,00",
		Date:        testNow.AddDate(0, 0, 5),
	}, testNow)

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, tx.Status)
	assert.Nil(t, tx.ProcessingUntil)
	assert.Equal(t, domain.CategoryIncome, tx.Category)
}

func TestFinalize_PastDatedPaymentIsProcessing(t *testing.T) {
	s := newTestService()

	tx, err := s.Finalize(NewTransactionInput{
		Type:        domain.TypePayment,
		Description: "Conta de luz",
		Amount:      "89,90",
		Date:        testNow.AddDate(0, 0, -3),
	}, testNow)

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, tx.Status)
	assert.NotNil(t, tx.ProcessingUntil)
	// classifier picked up "luz"
	assert.Equal(t, domain.CategoryMoradia, tx.Category)
}

func TestFinalize_ScheduledPix(t *testing.T) {
	s := newTestService()
	scheduledFor := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)

	tx, err := s.Finalize(NewTransactionInput{
		Type:         domain.TypePix,
		PixType:      domain.PixScheduled,
		Description:  "Pix agendado aluguel",
		Amount:       "1200",
		Date:         testNow,
		ScheduledFor: &scheduledFor,
	}, testNow)

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, tx.Status)
	if assert.NotNil(t, tx.ScheduledFor) {
		assert.Equal(t, scheduledFor, *tx.ScheduledFor)
	}
	assert.Nil(t, tx.ProcessingUntil)
	assert.Equal(t, domain.CategoryMoradia, tx.Category)
}

func TestFinalize_NormalPixIsProcessingRegardlessOfDate(t *testing.T) {
	s := newTestService()

	tx, err := s.Finalize(NewTransactionInput{
		Type:        domain.TypePix,
		PixType:     domain.PixNormal,
		Description: "Pix para Maria",
		Amount:      "30",
		Date:        testNow.AddDate(0, 0, 10), // a future date does not schedule a normal pix
	}, testNow)

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, tx.Status)
	if assert.NotNil(t, tx.ProcessingUntil) {
		assert.Equal(t, testNow.Add(SettlementWindow), *tx.ProcessingUntil)
	}
}

func TestFinalize_IsDeterministic(t *testing.T) {
	s := newTestService()
	input := NewTransactionInput{
		Type:        domain.TypeWithdraw,
		Description: "Saque caixa",
		Amount:      "200",
		Date:        testNow,
	}

	a, err := s.Finalize(input, testNow)
	assert.NoError(t, err)
	b, err := s.Finalize(input, testNow)
	assert.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFinalize_ValidationErrors(t *testing.T) {
	s := newTestService()
	yesterday := testNow.AddDate(0, 0, -1)

	tests := []struct {
		name  string
		input NewTransactionInput
		field string
	}{
		{
			name: "short description",
			input: NewTransactionInput{
				Type: domain.TypeDeposit, Description: "ab", Amount: "10", Date: testNow,
			},
			field: "description",
		},
		{
			name: "malformed amount",
			input: NewTransactionInput{
				Type: domain.TypeDeposit, Description: "Deposito", Amount: "10,999", Date: testNow,
			},
			field: "amount",
		},
		{
			name: "zero amount",
			input: NewTransactionInput{
				Type: domain.TypeDeposit, Description: "Deposito", Amount: "0", Date: testNow,
			},
			field: "amount",
		},
		{
			name: "unknown type",
			input: NewTransactionInput{
				Type: "loan", Description: "Emprestimo", Amount: "10", Date: testNow,
			},
			field: "type",
		},
		{
			name: "scheduled pix without date",
			input: NewTransactionInput{
				Type: domain.TypePix, PixType: domain.PixScheduled,
				Description: "Pix agendado", Amount: "10", Date: testNow,
			},
			field: "scheduledFor",
		},
		{
			name: "scheduled pix dated yesterday",
			input: NewTransactionInput{
				Type: domain.TypePix, PixType: domain.PixScheduled,
				Description: "Pix agendado", Amount: "10", Date: testNow,
				ScheduledFor: &yesterday,
			},
			field: "scheduledFor",
		},
		{
			name: "expense with INCOME category",
			input: NewTransactionInput{
				Type: domain.TypeWithdraw, Description: "Saque", Amount: "10",
				Date: testNow, Category: domain.CategoryIncome,
			},
			field: "category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Finalize(tt.input, testNow)
			var fieldErrs FieldErrors
			if assert.ErrorAs(t, err, &fieldErrs) {
				assert.Contains(t, fieldErrs, tt.field)
			}
		})
	}
}

func TestFinalize_ScheduledPixToday(t *testing.T) {
	s := newTestService()
	// same calendar day but earlier instant; day granularity must accept it
	earlierToday := time.Date(2025, 3, 10, 0, 30, 0, 0, time.UTC)

	tx, err := s.Finalize(NewTransactionInput{
		Type:         domain.TypePix,
		PixType:      domain.PixScheduled,
		Description:  "Pix agendado hoje",
		Amount:       "10",
		Date:         testNow,
		ScheduledFor: &earlierToday,
	}, testNow)

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, tx.Status)
}

func TestFinalize_ExplicitCategoryBeatsSuggestion(t *testing.T) {
	s := newTestService()

	tx, err := s.Finalize(NewTransactionInput{
		Type:        domain.TypePayment,
		Description: "Mercado da esquina", // classifier would say ALIMENTACAO
		Amount:      "50",
		Date:        testNow,
		Category:    domain.CategoryLazer,
	}, testNow)

	assert.NoError(t, err)
	assert.Equal(t, domain.CategoryLazer, tx.Category)
}

func TestFinalize_NoSuggestionDefaultsToOutros(t *testing.T) {
	s := newTestService()

	tx, err := s.Finalize(NewTransactionInput{
		Type:        domain.TypeWithdraw,
		Description: "Saque emergencial",
		Amount:      "50",
		Date:        testNow,
	}, testNow)

	assert.NoError(t, err)
	assert.Equal(t, domain.CategoryOutros, tx.Category)
}

func TestFinalize_CapsAttachments(t *testing.T) {
	s := newTestService()

	tx, err := s.Finalize(NewTransactionInput{
		Type:        domain.TypePayment,
		Description: "Pagamento boleto",
		Amount:      "50",
		Date:        testNow,
		Attachments: []domain.Attachment{
			{ID: "a-1", Name: "nota.pdf"},
			{ID: "a-2", Name: "extra.pdf"},
		},
	}, testNow)

	assert.NoError(t, err)
	assert.Len(t, tx.Attachments, 1)
	assert.Equal(t, "a-1", tx.Attachments[0].ID)
}

func TestActionStateFor(t *testing.T) {
	tests := []struct {
		status domain.Status
		want   ActionState
	}{
		{domain.StatusScheduled, ActionState{EditAllowed: true, CancelAllowed: true}},
		{domain.StatusProcessing, ActionState{EditAllowed: true, CancelAllowed: true}},
		{domain.StatusProcessed, ActionState{EditReason: ReasonAlreadySettled, CancelReason: ReasonAlreadySettled}},
		{domain.StatusCancelled, ActionState{CancelAllowed: true, EditReason: ReasonInvalidForEdit}},
		{domain.StatusFailed, ActionState{CancelAllowed: true, EditReason: ReasonInvalidForEdit}},
		{domain.Status("BOGUS"), ActionState{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ActionStateFor(tt.status), string(tt.status))
	}
}

func TestCancel_FromProcessing(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTransactionRepository)
	s := NewService(repo, nil)

	until := testNow.Add(SettlementWindow)
	repo.On("GetByID", ctx, "t-1").Return(&domain.Transaction{
		ID: "t-1", Type: domain.TypePayment, Status: domain.StatusProcessing,
		Category: domain.CategoryOutros, ProcessingUntil: &until,
	}, nil)

	cancelled := domain.StatusCancelled
	previous := domain.StatusProcessing
	wantPatch := domain.Patch{
		Status:               &cancelled,
		PreviousStatus:       &previous,
		ClearProcessingUntil: true,
	}
	repo.On("Update", ctx, "t-1", wantPatch).Return(&domain.Transaction{
		ID: "t-1", Type: domain.TypePayment, Status: domain.StatusCancelled,
		Category: domain.CategoryOutros, PreviousStatus: domain.StatusProcessing,
	}, nil)

	got, err := s.Cancel(ctx, "t-1")
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
	assert.Equal(t, domain.StatusProcessing, got.PreviousStatus)
	assert.False(t, got.Locked)
	repo.AssertExpectations(t)
}

func TestCancel_ProcessedIsRefused(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTransactionRepository)
	s := NewService(repo, nil)

	repo.On("GetByID", ctx, "t-1").Return(&domain.Transaction{
		ID: "t-1", Type: domain.TypeDeposit, Status: domain.StatusProcessed,
		Category: domain.CategoryIncome,
	}, nil)

	_, err := s.Cancel(ctx, "t-1")
	assert.ErrorIs(t, err, ErrNotCancellable)
	assert.Contains(t, err.Error(), ReasonAlreadySettled)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestRestore_RevertsToPreviousStatus(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTransactionRepository)
	s := NewService(repo, nil)

	repo.On("GetByID", ctx, "t-1").Return(&domain.Transaction{
		ID: "t-1", Type: domain.TypeTransfer, Status: domain.StatusCancelled,
		Category: domain.CategoryIncome, PreviousStatus: domain.StatusScheduled,
	}, nil)

	scheduled := domain.StatusScheduled
	locked := false
	wantPatch := domain.Patch{
		Status:              &scheduled,
		Locked:              &locked,
		ClearPreviousStatus: true,
	}
	repo.On("Update", ctx, "t-1", wantPatch).Return(&domain.Transaction{
		ID: "t-1", Type: domain.TypeTransfer, Status: domain.StatusScheduled,
		Category: domain.CategoryIncome,
	}, nil)

	got, err := s.Restore(ctx, "t-1", time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, got.Status)
	assert.Equal(t, domain.Status(""), got.PreviousStatus)
	repo.AssertExpectations(t)
}

func TestRestore_ToProcessingRearmsSettlementWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := new(MockTransactionRepository)
	s := NewService(repo, nil)

	repo.On("GetByID", ctx, "t-1").Return(&domain.Transaction{
		ID: "t-1", Type: domain.TypePix, PixType: domain.PixNormal,
		Status: domain.StatusCancelled, Category: domain.CategoryOutros,
		PreviousStatus: domain.StatusProcessing,
	}, nil)

	processing := domain.StatusProcessing
	locked := false
	until := now.Add(SettlementWindow)
	wantPatch := domain.Patch{
		Status:              &processing,
		Locked:              &locked,
		ProcessingUntil:     &until,
		ClearPreviousStatus: true,
	}
	repo.On("Update", ctx, "t-1", wantPatch).Return(&domain.Transaction{
		ID: "t-1", Type: domain.TypePix, PixType: domain.PixNormal,
		Status: domain.StatusProcessing, Category: domain.CategoryOutros,
		ProcessingUntil: &until,
	}, nil)

	got, err := s.Restore(ctx, "t-1", now)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, got.Status)
	assert.Equal(t, until, *got.ProcessingUntil)
	repo.AssertExpectations(t)
}

func TestRestore_LockedIsRefused(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTransactionRepository)
	s := NewService(repo, nil)

	repo.On("GetByID", ctx, "t-1").Return(&domain.Transaction{
		ID: "t-1", Type: domain.TypePix, Status: domain.StatusCancelled,
		Category: domain.CategoryOutros, PreviousStatus: domain.StatusScheduled,
		Locked: true,
	}, nil)

	_, err := s.Restore(ctx, "t-1", time.Now())
	assert.ErrorIs(t, err, ErrLocked)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestRestore_RequiresCancelledWithHistory(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTransactionRepository)
	s := NewService(repo, nil)

	repo.On("GetByID", ctx, "t-1").Return(&domain.Transaction{
		ID: "t-1", Type: domain.TypeDeposit, Status: domain.StatusProcessed,
		Category: domain.CategoryIncome,
	}, nil).Once()
	_, err := s.Restore(ctx, "t-1", time.Now())
	assert.ErrorIs(t, err, ErrNotRestorable)

	repo.On("GetByID", ctx, "t-1").Return(&domain.Transaction{
		ID: "t-1", Type: domain.TypeDeposit, Status: domain.StatusCancelled,
		Category: domain.CategoryIncome,
	}, nil).Once()
	_, err = s.Restore(ctx, "t-1", time.Now())
	assert.ErrorIs(t, err, ErrNotRestorable)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTransactionRepository)
	s := NewService(repo, nil)

	repo.On("GetByID", ctx, "t-failed").Return(&domain.Transaction{
		ID: "t-failed", Type: domain.TypePix, Status: domain.StatusFailed,
		Category: domain.CategoryOutros,
	}, nil)
	repo.On("Delete", ctx, "t-failed").Return(nil)

	assert.NoError(t, s.Remove(ctx, "t-failed"))

	repo.On("GetByID", ctx, "t-done").Return(&domain.Transaction{
		ID: "t-done", Type: domain.TypeDeposit, Status: domain.StatusProcessed,
		Category: domain.CategoryIncome,
	}, nil)

	err := s.Remove(ctx, "t-done")
	assert.ErrorIs(t, err, ErrNotRemovable)
	repo.AssertNotCalled(t, "Delete", mock.Anything, "t-done")
}

func TestCreate_PersistsFinalizedTransaction(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTransactionRepository)
	s := NewService(repo, classifier.NewKeyword())

	repo.On("Create", ctx, mock.MatchedBy(func(tx *domain.Transaction) bool {
		return tx.Status == domain.StatusProcessing &&
			tx.Category == domain.CategoryIncome &&
			tx.Amount.Equal(decimal.NewFromInt(100))
	})).Return(nil)

	tx, err := s.Create(ctx, NewTransactionInput{
		Type:        domain.TypeDeposit,
		Description: "Deposito em conta",
		Amount:      "100",
		Date:        testNow,
	}, testNow)

	assert.NoError(t, err)
	assert.NoError(t, tx.Validate())
	repo.AssertExpectations(t)
}
