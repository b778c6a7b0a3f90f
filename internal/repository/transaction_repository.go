package repository

import (
	"context"
	"time"

	"pocket-ledger/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var transactionColumns = []string{
	"id", "user_id", "amount", "type", "category", "payment_method", "description", "date", "recurring_id", "created_at",
}

type TransactionFilter struct {
	From     *time.Time
	To       *time.Time
	Type     models.TransactionType
	Category string
	Limit    uint64
	Offset   uint64
}

// Totals is the income and expense sum of a set of transactions.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

type TransactionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTransactionRepository(db *pgxpool.Pool, logger *zap.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *TransactionRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error) {
	return getTransaction(ctx, r.db, userID, id, false)
}

func (r *TransactionRepository) List(ctx context.Context, userID uuid.UUID, filter TransactionFilter) ([]models.Transaction, error) {
	q := psql.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("date DESC", "created_at DESC")

	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.To})
	}
	if filter.Type != "" {
		q = q.Where(squirrel.Eq{"type": filter.Type})
	}
	if filter.Category != "" {
		q = q.Where(squirrel.Eq{"category": filter.Category})
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	return listTransactions(ctx, r.db, q)
}

// Totals sums income and expense over the transactions dated in [from, to].
// A nil bound leaves that side open.
func (r *TransactionRepository) Totals(ctx context.Context, userID uuid.UUID, from, to *time.Time) (Totals, error) {
	q := psql.Select(
		"COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0)",
		"COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0)",
	).
		From("transactions").
		Where(squirrel.Eq{"user_id": userID})
	if from != nil {
		q = q.Where(squirrel.GtOrEq{"date": *from})
	}
	if to != nil {
		q = q.Where(squirrel.LtOrEq{"date": *to})
	}

	row, err := queryRow(ctx, r.db, q)
	if err != nil {
		return Totals{}, err
	}
	var t Totals
	if err := row.Scan(&t.Income, &t.Expense); err != nil {
		return Totals{}, err
	}
	return t, nil
}

func getTransaction(ctx context.Context, q DBTX, userID, id uuid.UUID, forUpdate bool) (*models.Transaction, error) {
	b := psql.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"id": id, "user_id": userID})
	if forUpdate {
		b = b.Suffix("FOR UPDATE")
	}

	row, err := queryRow(ctx, q, b)
	if err != nil {
		return nil, err
	}
	var t models.Transaction
	if err := scanTransaction(row, &t); err != nil {
		return nil, mapError(err)
	}
	return &t, nil
}

func listTransactions(ctx context.Context, q DBTX, b squirrel.SelectBuilder) ([]models.Transaction, error) {
	rows, err := query(ctx, q, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		if err := scanTransaction(rows, &t); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// insertBatchSize keeps a multi-row insert well below the 65535 bind
// parameter limit of the PostgreSQL wire protocol.
const insertBatchSize = 1000

// insertTransactionsIfAbsent inserts every transaction whose id is not yet
// stored and returns the ones that were actually written.
func insertTransactionsIfAbsent(ctx context.Context, q DBTX, txs []models.Transaction) ([]models.Transaction, error) {
	written := make(map[uuid.UUID]bool, len(txs))
	for start := 0; start < len(txs); start += insertBatchSize {
		end := min(start+insertBatchSize, len(txs))
		if err := insertTransactionBatch(ctx, q, txs[start:end], written); err != nil {
			return nil, err
		}
	}

	inserted := make([]models.Transaction, 0, len(written))
	for _, t := range txs {
		if written[t.ID] {
			inserted = append(inserted, t)
			delete(written, t.ID)
		}
	}
	return inserted, nil
}

func insertTransactionBatch(ctx context.Context, q DBTX, batch []models.Transaction, written map[uuid.UUID]bool) error {
	b := psql.Insert("transactions").
		Columns(transactionColumns...).
		Suffix("ON CONFLICT (id) DO NOTHING RETURNING id")
	for _, t := range batch {
		b = b.Values(t.ID, t.UserID, t.Amount, t.Type, t.Category, t.PaymentMethod, t.Description, t.Date, t.RecurringID, t.CreatedAt)
	}

	rows, err := query(ctx, q, b)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return err
		}
		written[id] = true
	}
	return rows.Err()
}

func updateTransaction(ctx context.Context, q DBTX, t *models.Transaction) error {
	tag, err := exec(ctx, q, psql.Update("transactions").
		Set("amount", t.Amount).
		Set("type", t.Type).
		Set("category", t.Category).
		Set("payment_method", t.PaymentMethod).
		Set("description", t.Description).
		Set("date", t.Date).
		Where(squirrel.Eq{"id": t.ID, "user_id": t.UserID}))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteTransaction(ctx context.Context, q DBTX, userID, id uuid.UUID) (*models.Transaction, error) {
	row, err := queryRow(ctx, q, psql.Delete("transactions").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		Suffix("RETURNING "+joinColumns(transactionColumns)))
	if err != nil {
		return nil, err
	}
	var t models.Transaction
	if err := scanTransaction(row, &t); err != nil {
		return nil, mapError(err)
	}
	return &t, nil
}

func scanTransaction(row rowScanner, t *models.Transaction) error {
	return row.Scan(
		&t.ID, &t.UserID, &t.Amount, &t.Type, &t.Category, &t.PaymentMethod, &t.Description, &t.Date, &t.RecurringID, &t.CreatedAt,
	)
}
