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

var userColumns = []string{"id", "username", "email", "password_hash", "currency", "created_at", "updated_at"}

type UserRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewUserRepository(db *pgxpool.Pool, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new user together with the default catalog.
// A duplicate email yields ErrConflict.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := exec(ctx, tx, psql.Insert("users").
			Columns(userColumns...).
			Values(user.ID, user.Username, user.Email, user.PasswordHash, user.Currency, user.CreatedAt, user.UpdatedAt)); err != nil {
			return mapError(err)
		}
		return seedDefaults(ctx, tx, user.ID)
	})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.get(ctx, squirrel.Eq{"email": email})
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.get(ctx, squirrel.Eq{"id": id})
}

func (r *UserRepository) get(ctx context.Context, where squirrel.Eq) (*models.User, error) {
	row, err := queryRow(ctx, r.db, psql.Select(userColumns...).From("users").Where(where))
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Currency, &user.CreatedAt, &user.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

func (r *UserRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := query(ctx, r.db, psql.Select("id").From("users").OrderBy("created_at"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
