package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/bytebank/bytebank-backend/internal/domain"
)

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, type, pix_type, description, amount, date, category, status,
	scheduled_for, processing_until, previous_status, locked`

// List retrieves transactions matching the query. Results keep insertion
// order unless a sort key is given; paging is applied after sorting.
func (r *TransactionRepository) List(ctx context.Context, q domain.ListQuery) ([]*domain.Transaction, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Query != "" {
		conds = append(conds, "description ILIKE "+arg("%"+q.Query+"%"))
	}
	if q.Type != "" {
		conds = append(conds, "type = "+arg(string(q.Type)))
	}
	if q.Status != "" {
		conds = append(conds, "UPPER(status) = "+arg(string(q.Status)))
	}
	if q.Category != "" {
		conds = append(conds, "UPPER(category) = "+arg(string(q.Category)))
	}

	query := "SELECT " + transactionColumns + " FROM transactions"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	switch q.SortKey {
	case "date":
		query += " ORDER BY date " + sortDirection(q.Order) + ", created_at ASC"
	case "amount":
		query += " ORDER BY amount " + sortDirection(q.Order) + ", created_at ASC"
	default:
		query += " ORDER BY created_at ASC, id ASC"
	}

	if q.Limit > 0 {
		query += " LIMIT " + arg(q.Limit)
	}
	if q.Offset > 0 {
		query += " OFFSET " + arg(q.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	if err := r.loadAttachments(ctx, txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// GetByID retrieves a transaction by its id
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = $1", id)

	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if err := r.loadAttachments(ctx, []*domain.Transaction{tx}); err != nil {
		return nil, err
	}
	return tx, nil
}

// Create stores a new transaction and assigns its id
func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO transactions (id, type, pix_type, description, amount, date, category, status,
			scheduled_for, processing_until, previous_status, locked)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		tx.ID, string(tx.Type), string(tx.PixType), tx.Description, tx.Amount.String(),
		tx.Date, string(tx.Category), string(tx.Status),
		tx.ScheduledFor, tx.ProcessingUntil, nullStatus(tx.PreviousStatus), tx.Locked,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	if err := insertAttachments(ctx, dbTx, tx.ID, tx.Attachments); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Update applies a partial patch and returns the updated record
func (r *TransactionRepository) Update(ctx context.Context, id string, patch domain.Patch) (*domain.Transaction, error) {
	var (
		sets []string
		args []interface{}
	)
	set := func(column string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Amount != nil {
		set("amount", patch.Amount.String())
	}
	if patch.Date != nil {
		set("date", *patch.Date)
	}
	if patch.Category != nil {
		set("category", string(*patch.Category))
	}
	if patch.Status != nil {
		set("status", string(*patch.Status))
	}
	if patch.ScheduledFor != nil {
		set("scheduled_for", *patch.ScheduledFor)
	} else if patch.ClearScheduledFor {
		sets = append(sets, "scheduled_for = NULL")
	}
	if patch.ProcessingUntil != nil {
		set("processing_until", *patch.ProcessingUntil)
	} else if patch.ClearProcessingUntil {
		sets = append(sets, "processing_until = NULL")
	}
	if patch.PreviousStatus != nil {
		set("previous_status", string(*patch.PreviousStatus))
	} else if patch.ClearPreviousStatus {
		sets = append(sets, "previous_status = NULL")
	}
	if patch.Locked != nil {
		set("locked", *patch.Locked)
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	if len(sets) > 0 {
		args = append(args, id)
		query := fmt.Sprintf("UPDATE transactions SET %s WHERE id = $%d",
			strings.Join(sets, ", "), len(args))

		res, err := dbTx.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to update transaction: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to check update result: %w", err)
		}
		if affected == 0 {
			return nil, domain.ErrNotFound
		}
	}

	if patch.Attachments != nil {
		if _, err := dbTx.ExecContext(ctx,
			"DELETE FROM attachments WHERE transaction_id = $1", id); err != nil {
			return nil, fmt.Errorf("failed to replace attachments: %w", err)
		}
		if err := insertAttachments(ctx, dbTx, id, *patch.Attachments); err != nil {
			return nil, err
		}
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return r.GetByID(ctx, id)
}

// Delete permanently removes a transaction. Attachments go with it via the
// foreign key cascade.
func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TransactionRepository) loadAttachments(ctx context.Context, txs []*domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	ids := make([]string, len(txs))
	byID := make(map[string]*domain.Transaction, len(txs))
	for i, tx := range txs {
		ids[i] = tx.ID
		byID[tx.ID] = tx
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, transaction_id, name, mime_type, size_bytes, content
		FROM attachments WHERE transaction_id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load attachments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			att  domain.Attachment
			txID string
		)
		if err := rows.Scan(&att.ID, &txID, &att.Name, &att.MimeType, &att.SizeBytes, &att.Content); err != nil {
			return fmt.Errorf("failed to scan attachment: %w", err)
		}
		if tx, ok := byID[txID]; ok {
			tx.Attachments = append(tx.Attachments, att)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate attachments: %w", err)
	}
	return nil
}

func insertAttachments(ctx context.Context, dbTx *sql.Tx, txID string, atts []domain.Attachment) error {
	for i := range atts {
		if atts[i].ID == "" {
			atts[i].ID = uuid.New().String()
		}
		_, err := dbTx.ExecContext(ctx, `
			INSERT INTO attachments (id, transaction_id, name, mime_type, size_bytes, content)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			atts[i].ID, txID, atts[i].Name, atts[i].MimeType, atts[i].SizeBytes, atts[i].Content,
		)
		if err != nil {
			return fmt.Errorf("failed to insert attachment: %w", err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var (
		tx             domain.Transaction
		amount         string
		scheduledFor   sql.NullTime
		processing     sql.NullTime
		previousStatus sql.NullString
	)
	err := row.Scan(&tx.ID, (*string)(&tx.Type), (*string)(&tx.PixType), &tx.Description,
		&amount, &tx.Date, (*string)(&tx.Category), (*string)(&tx.Status),
		&scheduledFor, &processing, &previousStatus, &tx.Locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	tx.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored amount %q: %w", amount, err)
	}
	if scheduledFor.Valid {
		t := scheduledFor.Time
		tx.ScheduledFor = &t
	}
	if processing.Valid {
		t := processing.Time
		tx.ProcessingUntil = &t
	}
	if previousStatus.Valid {
		tx.PreviousStatus = domain.Status(previousStatus.String)
	}
	return &tx, nil
}

func nullStatus(s domain.Status) sql.NullString {
	return sql.NullString{String: string(s), Valid: s != ""}
}

func sortDirection(o domain.SortOrder) string {
	if o == domain.SortDesc {
		return "DESC"
	}
	return "ASC"
}
