package repository

import (
	"context"

	"pocket-ledger/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var budgetColumns = []string{"id", "user_id", "category", "amount", "period", "spent", "created_at"}

type BudgetRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewBudgetRepository(db *pgxpool.Pool, logger *zap.Logger) *BudgetRepository {
	return &BudgetRepository{
		db:     db,
		logger: logger,
	}
}

func (r *BudgetRepository) Create(ctx context.Context, b *models.Budget) error {
	return insertBudget(ctx, r.db, b, false)
}

func (r *BudgetRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Budget, error) {
	row, err := queryRow(ctx, r.db, psql.Select(budgetColumns...).
		From("budgets").
		Where(squirrel.Eq{"id": id, "user_id": userID}))
	if err != nil {
		return nil, err
	}
	var b models.Budget
	if err := scanBudget(row, &b); err != nil {
		return nil, mapError(err)
	}
	return &b, nil
}

func (r *BudgetRepository) List(ctx context.Context, userID uuid.UUID) ([]models.Budget, error) {
	return listBudgets(ctx, r.db, userID)
}

// Update changes the limit, period or category of a budget. Spent is owned by
// the ledger and is left untouched.
func (r *BudgetRepository) Update(ctx context.Context, b *models.Budget) error {
	tag, err := exec(ctx, r.db, psql.Update("budgets").
		Set("category", b.Category).
		Set("amount", b.Amount).
		Set("period", b.Period).
		Where(squirrel.Eq{"id": b.ID, "user_id": b.UserID}))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BudgetRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := exec(ctx, r.db, psql.Delete("budgets").Where(squirrel.Eq{"id": id, "user_id": userID}))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func listBudgets(ctx context.Context, q DBTX, userID uuid.UUID) ([]models.Budget, error) {
	rows, err := query(ctx, q, psql.Select(budgetColumns...).
		From("budgets").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := []models.Budget{}
	for rows.Next() {
		var b models.Budget
		if err := scanBudget(rows, &b); err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func insertBudget(ctx context.Context, q DBTX, b *models.Budget, ifAbsent bool) error {
	ins := psql.Insert("budgets").
		Columns(budgetColumns...).
		Values(b.ID, b.UserID, b.Category, b.Amount, b.Period, b.Spent, b.CreatedAt)
	if ifAbsent {
		ins = ins.Suffix("ON CONFLICT (id) DO NOTHING")
	}
	_, err := exec(ctx, q, ins)
	return mapError(err)
}

// adjustSpent moves the spent figure of every budget of a category by delta,
// never below zero.
func adjustSpent(ctx context.Context, q DBTX, userID uuid.UUID, category string, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	_, err := exec(ctx, q, psql.Update("budgets").
		Set("spent", squirrel.Expr("GREATEST(0, spent + ?)", delta)).
		Where(squirrel.Eq{"user_id": userID, "category": category}))
	return err
}

// applyBudgetLinkage books a transaction against its category's budgets.
// sign is +1 when the transaction enters the ledger and -1 when it leaves.
func applyBudgetLinkage(ctx context.Context, q DBTX, t models.Transaction, sign int64) error {
	if !t.IsExpense() {
		return nil
	}
	return adjustSpent(ctx, q, t.UserID, t.Category, t.Amount.Mul(decimal.NewFromInt(sign)))
}

func scanBudget(row rowScanner, b *models.Budget) error {
	return row.Scan(&b.ID, &b.UserID, &b.Category, &b.Amount, &b.Period, &b.Spent, &b.CreatedAt)
}
