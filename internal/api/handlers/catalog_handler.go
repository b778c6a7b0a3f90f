package handlers

import (
	"context"

	"pocket-ledger/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CatalogService interface {
	ListCategories(ctx context.Context, userID uuid.UUID) ([]dto.CategoryResponse, error)
	CreateCategory(ctx context.Context, userID uuid.UUID, req *dto.CategoryRequest) (*dto.CategoryResponse, error)
	DeleteCategory(ctx context.Context, userID uuid.UUID, id string) error
	ListPaymentMethods(ctx context.Context, userID uuid.UUID) ([]dto.PaymentMethodResponse, error)
	CreatePaymentMethod(ctx context.Context, userID uuid.UUID, req *dto.PaymentMethodRequest) (*dto.PaymentMethodResponse, error)
	DeletePaymentMethod(ctx context.Context, userID uuid.UUID, id string) error
}

type CatalogHandler struct {
	catalogService CatalogService
	logger         *zap.Logger
}

func NewCatalogHandler(catalogService CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// ListCategories godoc
// @Summary List categories
// @Tags catalog
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.CategoryResponse
// @Router /api/v1/categories [get]
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	categories, err := h.catalogService.ListCategories(c.Context(), userID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list categories")
	}
	return c.JSON(categories)
}

// CreateCategory godoc
// @Summary Create a category
// @Description The id is derived from the name when omitted
// @Tags catalog
// @Accept json
// @Produce json
// @Param request body dto.CategoryRequest true "Category"
// @Security Bearer
// @Success 201 {object} dto.CategoryResponse
// @Failure 409 {object} map[string]string
// @Router /api/v1/categories [post]
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CategoryRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.catalogService.CreateCategory(c.Context(), userID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create category")
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// DeleteCategory godoc
// @Summary Delete a category
// @Description Transactions, rules and budgets of the category move to uncategorized
// @Tags catalog
// @Param id path string true "Category ID"
// @Security Bearer
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/categories/{id} [delete]
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	if err := h.catalogService.DeleteCategory(c.Context(), userID, c.Params("id")); err != nil {
		return respondError(c, h.logger, err, "Failed to delete category")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListPaymentMethods godoc
// @Summary List payment methods
// @Tags catalog
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.PaymentMethodResponse
// @Router /api/v1/payment-methods [get]
func (h *CatalogHandler) ListPaymentMethods(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	methods, err := h.catalogService.ListPaymentMethods(c.Context(), userID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list payment methods")
	}
	return c.JSON(methods)
}

// CreatePaymentMethod godoc
// @Summary Create a payment method
// @Tags catalog
// @Accept json
// @Produce json
// @Param request body dto.PaymentMethodRequest true "Payment method"
// @Security Bearer
// @Success 201 {object} dto.PaymentMethodResponse
// @Failure 409 {object} map[string]string
// @Router /api/v1/payment-methods [post]
func (h *CatalogHandler) CreatePaymentMethod(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.PaymentMethodRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.catalogService.CreatePaymentMethod(c.Context(), userID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create payment method")
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// DeletePaymentMethod godoc
// @Summary Delete a payment method
// @Tags catalog
// @Param id path string true "Payment method ID"
// @Security Bearer
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/v1/payment-methods/{id} [delete]
func (h *CatalogHandler) DeletePaymentMethod(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	if err := h.catalogService.DeletePaymentMethod(c.Context(), userID, c.Params("id")); err != nil {
		return respondError(c, h.logger, err, "Failed to delete payment method")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
