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

// CatalogRepository stores the per-user categories and payment methods.
type CatalogRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewCatalogRepository(db *pgxpool.Pool, logger *zap.Logger) *CatalogRepository {
	return &CatalogRepository{
		db:     db,
		logger: logger,
	}
}

// SeedDefaults inserts the default catalog for a user, keeping existing rows.
func (r *CatalogRepository) SeedDefaults(ctx context.Context, userID uuid.UUID) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		return seedDefaults(ctx, tx, userID)
	})
}

func (r *CatalogRepository) ListCategories(ctx context.Context, userID uuid.UUID) ([]models.Category, error) {
	return listCategories(ctx, r.db, userID)
}

func (r *CatalogRepository) GetCategory(ctx context.Context, userID uuid.UUID, id string) (*models.Category, error) {
	row, err := queryRow(ctx, r.db, psql.Select("id", "user_id", "name", "type", "icon", "is_default").
		From("categories").
		Where(squirrel.Eq{"user_id": userID, "id": id}))
	if err != nil {
		return nil, err
	}
	var c models.Category
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Icon, &c.IsDefault); err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

func (r *CatalogRepository) CreateCategory(ctx context.Context, c *models.Category) error {
	return insertCategory(ctx, r.db, c, false)
}

// DeleteCategory removes a category and moves everything filed under it to
// the uncategorized bucket.
func (r *CatalogRepository) DeleteCategory(ctx context.Context, userID uuid.UUID, id string) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := exec(ctx, tx, psql.Delete("categories").Where(squirrel.Eq{"user_id": userID, "id": id}))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}

		for _, table := range []string{"transactions", "recurring_transactions", "budgets"} {
			if _, err := exec(ctx, tx, psql.Update(table).
				Set("category", models.CategoryUncategorized).
				Where(squirrel.Eq{"user_id": userID, "category": id})); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *CatalogRepository) ListPaymentMethods(ctx context.Context, userID uuid.UUID) ([]models.PaymentMethod, error) {
	return listPaymentMethods(ctx, r.db, userID)
}

func (r *CatalogRepository) GetPaymentMethod(ctx context.Context, userID uuid.UUID, id string) (*models.PaymentMethod, error) {
	row, err := queryRow(ctx, r.db, psql.Select("id", "user_id", "name", "icon", "is_default").
		From("payment_methods").
		Where(squirrel.Eq{"user_id": userID, "id": id}))
	if err != nil {
		return nil, err
	}
	var pm models.PaymentMethod
	if err := row.Scan(&pm.ID, &pm.UserID, &pm.Name, &pm.Icon, &pm.IsDefault); err != nil {
		return nil, mapError(err)
	}
	return &pm, nil
}

func (r *CatalogRepository) CreatePaymentMethod(ctx context.Context, pm *models.PaymentMethod) error {
	return insertPaymentMethod(ctx, r.db, pm, false)
}

// DeletePaymentMethod removes a payment method and moves its transactions and
// rules to "other".
func (r *CatalogRepository) DeletePaymentMethod(ctx context.Context, userID uuid.UUID, id string) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := exec(ctx, tx, psql.Delete("payment_methods").Where(squirrel.Eq{"user_id": userID, "id": id}))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}

		for _, table := range []string{"transactions", "recurring_transactions"} {
			if _, err := exec(ctx, tx, psql.Update(table).
				Set("payment_method", models.PaymentMethodOther).
				Where(squirrel.Eq{"user_id": userID, "payment_method": id})); err != nil {
				return err
			}
		}
		return nil
	})
}

func seedDefaults(ctx context.Context, q DBTX, userID uuid.UUID) error {
	for _, c := range models.DefaultCategories {
		c.UserID = userID
		if err := insertCategory(ctx, q, &c, true); err != nil {
			return err
		}
	}
	for _, pm := range models.DefaultPaymentMethods {
		pm.UserID = userID
		if err := insertPaymentMethod(ctx, q, &pm, true); err != nil {
			return err
		}
	}
	return nil
}

func listCategories(ctx context.Context, q DBTX, userID uuid.UUID) ([]models.Category, error) {
	rows, err := query(ctx, q, psql.Select("id", "user_id", "name", "type", "icon", "is_default").
		From("categories").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("is_default DESC", "name"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Icon, &c.IsDefault); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func listPaymentMethods(ctx context.Context, q DBTX, userID uuid.UUID) ([]models.PaymentMethod, error) {
	rows, err := query(ctx, q, psql.Select("id", "user_id", "name", "icon", "is_default").
		From("payment_methods").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("is_default DESC", "name"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	methods := []models.PaymentMethod{}
	for rows.Next() {
		var pm models.PaymentMethod
		if err := rows.Scan(&pm.ID, &pm.UserID, &pm.Name, &pm.Icon, &pm.IsDefault); err != nil {
			return nil, err
		}
		methods = append(methods, pm)
	}
	return methods, rows.Err()
}

func insertCategory(ctx context.Context, q DBTX, c *models.Category, ifAbsent bool) error {
	ins := psql.Insert("categories").
		Columns("id", "user_id", "name", "type", "icon", "is_default").
		Values(c.ID, c.UserID, c.Name, c.Type, c.Icon, c.IsDefault)
	if ifAbsent {
		ins = ins.Suffix("ON CONFLICT (user_id, id) DO NOTHING")
	}
	_, err := exec(ctx, q, ins)
	return mapError(err)
}

func insertPaymentMethod(ctx context.Context, q DBTX, pm *models.PaymentMethod, ifAbsent bool) error {
	ins := psql.Insert("payment_methods").
		Columns("id", "user_id", "name", "icon", "is_default").
		Values(pm.ID, pm.UserID, pm.Name, pm.Icon, pm.IsDefault)
	if ifAbsent {
		ins = ins.Suffix("ON CONFLICT (user_id, id) DO NOTHING")
	}
	_, err := exec(ctx, q, ins)
	return mapError(err)
}
