package handlers

import (
	"context"

	"pocket-ledger/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RecurringService interface {
	CreateRule(ctx context.Context, userID uuid.UUID, req *dto.RecurringRequest) (*dto.CreateRecurringResponse, error)
	ListRules(ctx context.Context, userID uuid.UUID) ([]dto.RecurringResponse, error)
	UpdateRule(ctx context.Context, userID, id uuid.UUID, req *dto.RecurringRequest) (*dto.RecurringResponse, error)
	DeleteRule(ctx context.Context, userID, id uuid.UUID) error
	Run(ctx context.Context, userID uuid.UUID) (*dto.RunRecurringResponse, error)
}

type RecurringHandler struct {
	recurringService RecurringService
	logger           *zap.Logger
}

func NewRecurringHandler(recurringService RecurringService, logger *zap.Logger) *RecurringHandler {
	return &RecurringHandler{
		recurringService: recurringService,
		logger:           logger,
	}
}

// CreateRule godoc
// @Summary Create a recurring transaction
// @Description Save a rule and book every occurrence from its start date up to today
// @Tags recurring
// @Accept json
// @Produce json
// @Param request body dto.RecurringRequest true "Recurring rule"
// @Security Bearer
// @Success 201 {object} dto.CreateRecurringResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/recurring [post]
func (h *RecurringHandler) CreateRule(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.RecurringRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.recurringService.CreateRule(c.Context(), userID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create recurring transaction")
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListRules godoc
// @Summary List recurring transactions
// @Tags recurring
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.RecurringResponse
// @Router /api/v1/recurring [get]
func (h *RecurringHandler) ListRules(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	rules, err := h.recurringService.ListRules(c.Context(), userID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list recurring transactions")
	}
	return c.JSON(rules)
}

// UpdateRule godoc
// @Summary Update a recurring transaction
// @Description Edit amount, category, frequency, end date or active flag. The start date is fixed.
// @Tags recurring
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param request body dto.RecurringRequest true "Recurring rule"
// @Security Bearer
// @Success 200 {object} dto.RecurringResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/recurring/{id} [put]
func (h *RecurringHandler) UpdateRule(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid rule ID")
	}

	var req dto.RecurringRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.recurringService.UpdateRule(c.Context(), userID, id, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update recurring transaction")
	}
	return c.JSON(resp)
}

// DeleteRule godoc
// @Summary Delete a recurring transaction
// @Description Generated transactions stay in the ledger
// @Tags recurring
// @Param id path string true "Rule ID"
// @Security Bearer
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/v1/recurring/{id} [delete]
func (h *RecurringHandler) DeleteRule(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid rule ID")
	}

	if err := h.recurringService.DeleteRule(c.Context(), userID, id); err != nil {
		return respondError(c, h.logger, err, "Failed to delete recurring transaction")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Run godoc
// @Summary Generate due recurring transactions
// @Description Book every occurrence due up to today and retire expired rules
// @Tags recurring
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.RunRecurringResponse
// @Router /api/v1/recurring/run [post]
func (h *RecurringHandler) Run(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.recurringService.Run(c.Context(), userID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to generate recurring transactions")
	}
	return c.JSON(resp)
}
