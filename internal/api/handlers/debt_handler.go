package handlers

import (
	"context"

	"pocket-ledger/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DebtService interface {
	CreateDebt(ctx context.Context, userID uuid.UUID, req *dto.DebtRequest) (*dto.DebtResponse, error)
	ListDebts(ctx context.Context, userID uuid.UUID, q *dto.DebtQuery) ([]dto.DebtResponse, error)
	UpdateDebt(ctx context.Context, userID, id uuid.UUID, req *dto.DebtRequest) (*dto.DebtResponse, error)
	DeleteDebt(ctx context.Context, userID, id uuid.UUID) error
	SettleDebt(ctx context.Context, userID, id uuid.UUID, req *dto.SettleDebtRequest) (*dto.SettleDebtResponse, error)
	ReopenDebt(ctx context.Context, userID, id uuid.UUID) (*dto.DebtResponse, error)
}

type DebtHandler struct {
	debtService DebtService
	logger      *zap.Logger
}

func NewDebtHandler(debtService DebtService, logger *zap.Logger) *DebtHandler {
	return &DebtHandler{
		debtService: debtService,
		logger:      logger,
	}
}

// CreateDebt godoc
// @Summary Track a debt
// @Tags debts
// @Accept json
// @Produce json
// @Param request body dto.DebtRequest true "Debt"
// @Security Bearer
// @Success 201 {object} dto.DebtResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/debts [post]
func (h *DebtHandler) CreateDebt(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.DebtRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.debtService.CreateDebt(c.Context(), userID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create debt")
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListDebts godoc
// @Summary List debts
// @Tags debts
// @Produce json
// @Param type query string false "owed-to-me or i-owe"
// @Param status query string false "pending or paid"
// @Security Bearer
// @Success 200 {array} dto.DebtResponse
// @Router /api/v1/debts [get]
func (h *DebtHandler) ListDebts(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var q dto.DebtQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "Invalid query parameters")
	}
	if err := validate.Struct(&q); err != nil {
		return badRequest(c, validationMessage(err))
	}

	debts, err := h.debtService.ListDebts(c.Context(), userID, &q)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list debts")
	}
	return c.JSON(debts)
}

// UpdateDebt godoc
// @Summary Update a pending debt
// @Tags debts
// @Accept json
// @Produce json
// @Param id path string true "Debt ID"
// @Param request body dto.DebtRequest true "Debt"
// @Security Bearer
// @Success 200 {object} dto.DebtResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/debts/{id} [put]
func (h *DebtHandler) UpdateDebt(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid debt ID")
	}

	var req dto.DebtRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.debtService.UpdateDebt(c.Context(), userID, id, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update debt")
	}
	return c.JSON(resp)
}

// DeleteDebt godoc
// @Summary Delete a debt
// @Tags debts
// @Param id path string true "Debt ID"
// @Security Bearer
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/v1/debts/{id} [delete]
func (h *DebtHandler) DeleteDebt(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid debt ID")
	}

	if err := h.debtService.DeleteDebt(c.Context(), userID, id); err != nil {
		return respondError(c, h.logger, err, "Failed to delete debt")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SettleDebt godoc
// @Summary Settle a debt
// @Description Mark a debt paid and book the payment as income or expense
// @Tags debts
// @Accept json
// @Produce json
// @Param id path string true "Debt ID"
// @Param request body dto.SettleDebtRequest false "Booking overrides"
// @Security Bearer
// @Success 200 {object} dto.SettleDebtResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/debts/{id}/settle [post]
func (h *DebtHandler) SettleDebt(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid debt ID")
	}

	var req dto.SettleDebtRequest
	if len(c.Body()) > 0 {
		if ok, err := parseBody(c, &req); !ok {
			return err
		}
	}

	resp, err := h.debtService.SettleDebt(c.Context(), userID, id, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to settle debt")
	}
	return c.JSON(resp)
}

// ReopenDebt godoc
// @Summary Reopen a settled debt
// @Description Move a paid debt back to pending and delete its settling transaction
// @Tags debts
// @Produce json
// @Param id path string true "Debt ID"
// @Security Bearer
// @Success 200 {object} dto.DebtResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/debts/{id}/reopen [post]
func (h *DebtHandler) ReopenDebt(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid debt ID")
	}

	resp, err := h.debtService.ReopenDebt(c.Context(), userID, id)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to reopen debt")
	}
	return c.JSON(resp)
}
