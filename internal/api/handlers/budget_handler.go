package handlers

import (
	"context"

	"pocket-ledger/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BudgetService interface {
	CreateBudget(ctx context.Context, userID uuid.UUID, req *dto.BudgetRequest) (*dto.BudgetResponse, error)
	ListBudgets(ctx context.Context, userID uuid.UUID) ([]dto.BudgetResponse, error)
	UpdateBudget(ctx context.Context, userID, id uuid.UUID, req *dto.BudgetRequest) (*dto.BudgetResponse, error)
	DeleteBudget(ctx context.Context, userID, id uuid.UUID) error
}

type BudgetHandler struct {
	budgetService BudgetService
	logger        *zap.Logger
}

func NewBudgetHandler(budgetService BudgetService, logger *zap.Logger) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
		logger:        logger,
	}
}

// CreateBudget godoc
// @Summary Create a budget
// @Tags budgets
// @Accept json
// @Produce json
// @Param request body dto.BudgetRequest true "Budget"
// @Security Bearer
// @Success 201 {object} dto.BudgetResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/budgets [post]
func (h *BudgetHandler) CreateBudget(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.BudgetRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.budgetService.CreateBudget(c.Context(), userID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create budget")
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListBudgets godoc
// @Summary List budgets
// @Description List budgets with their spent and remaining amounts
// @Tags budgets
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.BudgetResponse
// @Router /api/v1/budgets [get]
func (h *BudgetHandler) ListBudgets(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	budgets, err := h.budgetService.ListBudgets(c.Context(), userID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list budgets")
	}
	return c.JSON(budgets)
}

// UpdateBudget godoc
// @Summary Update a budget
// @Tags budgets
// @Accept json
// @Produce json
// @Param id path string true "Budget ID"
// @Param request body dto.BudgetRequest true "Budget"
// @Security Bearer
// @Success 200 {object} dto.BudgetResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid budget ID")
	}

	var req dto.BudgetRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.budgetService.UpdateBudget(c.Context(), userID, id, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update budget")
	}
	return c.JSON(resp)
}

// DeleteBudget godoc
// @Summary Delete a budget
// @Tags budgets
// @Param id path string true "Budget ID"
// @Security Bearer
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/v1/budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid budget ID")
	}

	if err := h.budgetService.DeleteBudget(c.Context(), userID, id); err != nil {
		return respondError(c, h.logger, err, "Failed to delete budget")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
