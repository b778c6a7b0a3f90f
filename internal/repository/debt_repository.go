package repository

import (
	"context"

	"pocket-ledger/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var debtColumns = []string{
	"id", "user_id", "person", "amount", "type", "status", "description",
	"due_date", "linked_transaction_id", "created_at", "updated_at",
}

type DebtFilter struct {
	Type   models.DebtType
	Status models.DebtStatus
}

type DebtRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewDebtRepository(db *pgxpool.Pool, logger *zap.Logger) *DebtRepository {
	return &DebtRepository{
		db:     db,
		logger: logger,
	}
}

func (r *DebtRepository) Create(ctx context.Context, d *models.Debt) error {
	_, err := exec(ctx, r.db, psql.Insert("debts").
		Columns(debtColumns...).
		Values(d.ID, d.UserID, d.Person, d.Amount, d.Type, d.Status, d.Description,
			d.DueDate, d.LinkedTransactionID, d.CreatedAt, d.UpdatedAt))
	return mapError(err)
}

func (r *DebtRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Debt, error) {
	return getDebt(ctx, r.db, userID, id, false)
}

func (r *DebtRepository) List(ctx context.Context, userID uuid.UUID, filter DebtFilter) ([]models.Debt, error) {
	q := psql.Select(debtColumns...).
		From("debts").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC")
	if filter.Type != "" {
		q = q.Where(squirrel.Eq{"type": filter.Type})
	}
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}

	rows, err := query(ctx, r.db, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	debts := []models.Debt{}
	for rows.Next() {
		var d models.Debt
		if err := scanDebt(rows, &d); err != nil {
			return nil, err
		}
		debts = append(debts, d)
	}
	return debts, rows.Err()
}

// Update stores a user edit of a pending debt. Status and the linked
// transaction move only through settling and reopening; a paid debt yields
// ErrConflict.
func (r *DebtRepository) Update(ctx context.Context, d *models.Debt) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		current, err := getDebt(ctx, tx, d.UserID, d.ID, true)
		if err != nil {
			return err
		}
		if current.Status != models.DebtStatusPending {
			return ErrConflict
		}
		_, err = exec(ctx, tx, psql.Update("debts").
			Set("person", d.Person).
			Set("amount", d.Amount).
			Set("type", d.Type).
			Set("description", d.Description).
			Set("due_date", d.DueDate).
			Set("updated_at", d.UpdatedAt).
			Where(squirrel.Eq{"id": d.ID, "user_id": d.UserID}))
		return err
	})
}

// Delete removes a debt. A transaction booked when it was settled stays in
// the ledger.
func (r *DebtRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := exec(ctx, r.db, psql.Delete("debts").Where(squirrel.Eq{"id": id, "user_id": userID}))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func getDebt(ctx context.Context, q DBTX, userID, id uuid.UUID, forUpdate bool) (*models.Debt, error) {
	b := psql.Select(debtColumns...).
		From("debts").
		Where(squirrel.Eq{"id": id, "user_id": userID})
	if forUpdate {
		b = b.Suffix("FOR UPDATE")
	}
	row, err := queryRow(ctx, q, b)
	if err != nil {
		return nil, err
	}
	var d models.Debt
	if err := scanDebt(row, &d); err != nil {
		return nil, mapError(err)
	}
	return &d, nil
}

func setDebtStatus(ctx context.Context, q DBTX, d *models.Debt) error {
	_, err := exec(ctx, q, psql.Update("debts").
		Set("status", d.Status).
		Set("linked_transaction_id", d.LinkedTransactionID).
		Set("updated_at", d.UpdatedAt).
		Where(squirrel.Eq{"id": d.ID, "user_id": d.UserID}))
	return err
}

func scanDebt(row rowScanner, d *models.Debt) error {
	return row.Scan(
		&d.ID, &d.UserID, &d.Person, &d.Amount, &d.Type, &d.Status, &d.Description,
		&d.DueDate, &d.LinkedTransactionID, &d.CreatedAt, &d.UpdatedAt,
	)
}
