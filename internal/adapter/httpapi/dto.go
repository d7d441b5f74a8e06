package httpapi

import (
	"encoding/json"
	"time"

	"github.com/bytebank/bytebank-backend/internal/domain"
	"github.com/bytebank/bytebank-backend/internal/usecase/lifecycle"
	"github.com/bytebank/bytebank-backend/internal/usecase/metrics"
)

// attachmentDTO mirrors the stored attachment shape on the wire
type attachmentDTO struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Size    int64  `json:"size"`
	DataURL string `json:"dataUrl"`
}

// transactionDTO is the wire representation of a transaction
type transactionDTO struct {
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	PixType         string          `json:"pixType,omitempty"`
	Description     string          `json:"description"`
	Amount          float64         `json:"amount"`
	Date            time.Time       `json:"date"`
	Category        string          `json:"category"`
	Status          string          `json:"status"`
	ScheduledFor    *time.Time      `json:"scheduledFor,omitempty"`
	ProcessingUntil *time.Time      `json:"processingUntil,omitempty"`
	PreviousStatus  string          `json:"previousStatus,omitempty"`
	Locked          bool            `json:"locked,omitempty"`
	Attachments     []attachmentDTO `json:"attachments,omitempty"`
}

func toTransactionDTO(tx *domain.Transaction) transactionDTO {
	dto := transactionDTO{
		ID:              tx.ID,
		Type:            string(tx.Type),
		PixType:         string(tx.PixType),
		Description:     tx.Description,
		Amount:          tx.Amount.InexactFloat64(),
		Date:            tx.Date,
		Category:        string(tx.Category),
		Status:          string(tx.Status),
		ScheduledFor:    tx.ScheduledFor,
		ProcessingUntil: tx.ProcessingUntil,
		PreviousStatus:  string(tx.PreviousStatus),
		Locked:          tx.Locked,
	}
	for _, att := range tx.Attachments {
		dto.Attachments = append(dto.Attachments, attachmentDTO{
			ID:      att.ID,
			Name:    att.Name,
			Type:    att.MimeType,
			Size:    att.SizeBytes,
			DataURL: att.Content,
		})
	}
	return dto
}

func toTransactionDTOs(txs []*domain.Transaction) []transactionDTO {
	dtos := make([]transactionDTO, 0, len(txs))
	for _, tx := range txs {
		dtos = append(dtos, toTransactionDTO(tx))
	}
	return dtos
}

// transactionRequest carries a submitted transaction form. Amount arrives as
// a JSON number but is handed downstream as raw text, which also accepts the
// comma decimal separator when clients send it as a string.
type transactionRequest struct {
	Type         string          `json:"type"`
	PixType      string          `json:"pixType"`
	Description  string          `json:"description"`
	Amount       json.Number     `json:"amount"`
	Date         time.Time       `json:"date"`
	ScheduledFor *time.Time      `json:"scheduledFor"`
	Category     string          `json:"category"`
	Attachments  []attachmentDTO `json:"attachments"`
}

func (r transactionRequest) toInput() lifecycle.NewTransactionInput {
	input := lifecycle.NewTransactionInput{
		Type:         domain.Type(r.Type),
		PixType:      domain.PixType(r.PixType),
		Description:  r.Description,
		Amount:       r.Amount.String(),
		Date:         r.Date,
		ScheduledFor: r.ScheduledFor,
	}
	if r.Category != "" {
		if cat, err := domain.ParseCategory(r.Category); err == nil {
			input.Category = cat
		} else {
			input.Category = domain.Category(r.Category)
		}
	}
	for _, att := range r.Attachments {
		input.Attachments = append(input.Attachments, domain.Attachment{
			ID:        att.ID,
			Name:      att.Name,
			MimeType:  att.Type,
			SizeBytes: att.Size,
			Content:   att.DataURL,
		})
	}
	return input
}

// summaryDTO bundles the headline figures
type summaryDTO struct {
	Balance float64            `json:"balance"`
	Income  float64            `json:"income"`
	Expense float64            `json:"expense"`
	Highest *highestExpenseDTO `json:"highestExpense,omitempty"`
}

type highestExpenseDTO struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

func toSummaryDTO(o *metrics.Overview) summaryDTO {
	dto := summaryDTO{
		Balance: o.Balance.InexactFloat64(),
		Income:  o.Income.InexactFloat64(),
		Expense: o.Expense.InexactFloat64(),
	}
	if o.Highest != nil {
		dto.Highest = &highestExpenseDTO{
			Amount:      o.Highest.Amount.InexactFloat64(),
			Description: o.Highest.Description,
		}
	}
	return dto
}

type categoryShareDTO struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

type monthlyNetDTO struct {
	Month string  `json:"month"`
	Net   float64 `json:"net"`
}

// errorResponse is the body for fatal request errors
type errorResponse struct {
	Error string `json:"error"`
}

// validationResponse is the body for field-scoped validation failures
type validationResponse struct {
	Errors lifecycle.FieldErrors `json:"errors"`
}
