package service

import (
	"context"

	"pocket-ledger/internal/dto"
	"pocket-ledger/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CatalogStore interface {
	SeedDefaults(ctx context.Context, userID uuid.UUID) error
	ListCategories(ctx context.Context, userID uuid.UUID) ([]models.Category, error)
	GetCategory(ctx context.Context, userID uuid.UUID, id string) (*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, userID uuid.UUID, id string) error
	ListPaymentMethods(ctx context.Context, userID uuid.UUID) ([]models.PaymentMethod, error)
	GetPaymentMethod(ctx context.Context, userID uuid.UUID, id string) (*models.PaymentMethod, error)
	CreatePaymentMethod(ctx context.Context, pm *models.PaymentMethod) error
	DeletePaymentMethod(ctx context.Context, userID uuid.UUID, id string) error
}

// CatalogService manages per-user categories and payment methods. Default
// entries are the fallback targets of deletions and cannot be removed.
type CatalogService struct {
	catalogRepo CatalogStore
	logger      *zap.Logger
}

func NewCatalogService(catalogRepo CatalogStore, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		catalogRepo: catalogRepo,
		logger:      logger,
	}
}

func (s *CatalogService) SeedDefaults(ctx context.Context, userID uuid.UUID) error {
	return s.catalogRepo.SeedDefaults(ctx, userID)
}

func (s *CatalogService) ListCategories(ctx context.Context, userID uuid.UUID) ([]dto.CategoryResponse, error) {
	categories, err := s.catalogRepo.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewCategoryResponses(categories), nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, userID uuid.UUID, req *dto.CategoryRequest) (*dto.CategoryResponse, error) {
	id := req.ID
	if id == "" {
		id = slugify(req.Name)
	}
	if len(id) < 2 {
		return nil, invalid("category id must have at least 2 characters")
	}
	txType := models.TransactionType(req.Type)
	if !txType.Valid() {
		return nil, invalid("type must be income or expense")
	}

	c := &models.Category{
		ID:     id,
		UserID: userID,
		Name:   req.Name,
		Type:   txType,
		Icon:   req.Icon,
	}
	if err := s.catalogRepo.CreateCategory(ctx, c); err != nil {
		return nil, translate(err)
	}

	return &dto.NewCategoryResponses([]models.Category{*c})[0], nil
}

// DeleteCategory removes a custom category; whatever was filed under it moves
// to "uncategorized".
func (s *CatalogService) DeleteCategory(ctx context.Context, userID uuid.UUID, id string) error {
	c, err := s.catalogRepo.GetCategory(ctx, userID, id)
	if err != nil {
		return translate(err)
	}
	if c.IsDefault {
		return ErrDefaultCategory
	}

	if err := s.catalogRepo.DeleteCategory(ctx, userID, id); err != nil {
		return translate(err)
	}
	s.logger.Info("Category deleted", zap.String("user_id", userID.String()), zap.String("category", id))
	return nil
}

func (s *CatalogService) ListPaymentMethods(ctx context.Context, userID uuid.UUID) ([]dto.PaymentMethodResponse, error) {
	methods, err := s.catalogRepo.ListPaymentMethods(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewPaymentMethodResponses(methods), nil
}

func (s *CatalogService) CreatePaymentMethod(ctx context.Context, userID uuid.UUID, req *dto.PaymentMethodRequest) (*dto.PaymentMethodResponse, error) {
	id := req.ID
	if id == "" {
		id = slugify(req.Name)
	}
	if len(id) < 2 {
		return nil, invalid("payment method id must have at least 2 characters")
	}

	pm := &models.PaymentMethod{
		ID:     id,
		UserID: userID,
		Name:   req.Name,
		Icon:   req.Icon,
	}
	if err := s.catalogRepo.CreatePaymentMethod(ctx, pm); err != nil {
		return nil, translate(err)
	}

	return &dto.NewPaymentMethodResponses([]models.PaymentMethod{*pm})[0], nil
}

// DeletePaymentMethod removes a custom payment method; its transactions move
// to "other".
func (s *CatalogService) DeletePaymentMethod(ctx context.Context, userID uuid.UUID, id string) error {
	pm, err := s.catalogRepo.GetPaymentMethod(ctx, userID, id)
	if err != nil {
		return translate(err)
	}
	if pm.IsDefault {
		return ErrDefaultCategory
	}

	if err := s.catalogRepo.DeletePaymentMethod(ctx, userID, id); err != nil {
		return translate(err)
	}
	s.logger.Info("Payment method deleted", zap.String("user_id", userID.String()), zap.String("payment_method", id))
	return nil
}
