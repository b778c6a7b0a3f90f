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

var savingsGoalColumns = []string{
	"id", "user_id", "name", "icon", "target_amount", "saved_amount", "target_date", "created_at",
}

type SavingsGoalRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewSavingsGoalRepository(db *pgxpool.Pool, logger *zap.Logger) *SavingsGoalRepository {
	return &SavingsGoalRepository{
		db:     db,
		logger: logger,
	}
}

func (r *SavingsGoalRepository) Create(ctx context.Context, g *models.SavingsGoal) error {
	_, err := exec(ctx, r.db, psql.Insert("savings_goals").
		Columns(savingsGoalColumns...).
		Values(g.ID, g.UserID, g.Name, g.Icon, g.TargetAmount, g.SavedAmount, g.TargetDate, g.CreatedAt))
	return mapError(err)
}

func (r *SavingsGoalRepository) List(ctx context.Context, userID uuid.UUID) ([]models.SavingsGoal, error) {
	rows, err := query(ctx, r.db, psql.Select(savingsGoalColumns...).
		From("savings_goals").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := []models.SavingsGoal{}
	for rows.Next() {
		var g models.SavingsGoal
		if err := scanSavingsGoal(rows, &g); err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// Contribute adds amount to the saved figure in a single statement, so
// concurrent contributions all count.
func (r *SavingsGoalRepository) Contribute(ctx context.Context, userID, id uuid.UUID, amount decimal.Decimal) (*models.SavingsGoal, error) {
	row, err := queryRow(ctx, r.db, psql.Update("savings_goals").
		Set("saved_amount", squirrel.Expr("saved_amount + ?", amount)).
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		Suffix("RETURNING "+joinColumns(savingsGoalColumns)))
	if err != nil {
		return nil, err
	}
	var g models.SavingsGoal
	if err := scanSavingsGoal(row, &g); err != nil {
		return nil, mapError(err)
	}
	return &g, nil
}

func (r *SavingsGoalRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := exec(ctx, r.db, psql.Delete("savings_goals").Where(squirrel.Eq{"id": id, "user_id": userID}))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSavingsGoal(row rowScanner, g *models.SavingsGoal) error {
	return row.Scan(&g.ID, &g.UserID, &g.Name, &g.Icon, &g.TargetAmount, &g.SavedAmount, &g.TargetDate, &g.CreatedAt)
}
