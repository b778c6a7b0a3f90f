package handlers

import (
	"context"

	"pocket-ledger/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SavingsService interface {
	CreateGoal(ctx context.Context, userID uuid.UUID, req *dto.SavingsGoalRequest) (*dto.SavingsGoalResponse, error)
	ListGoals(ctx context.Context, userID uuid.UUID) ([]dto.SavingsGoalResponse, error)
	Contribute(ctx context.Context, userID, id uuid.UUID, req *dto.ContributionRequest) (*dto.SavingsGoalResponse, error)
	DeleteGoal(ctx context.Context, userID, id uuid.UUID) error
}

type SavingsHandler struct {
	savingsService SavingsService
	logger         *zap.Logger
}

func NewSavingsHandler(savingsService SavingsService, logger *zap.Logger) *SavingsHandler {
	return &SavingsHandler{
		savingsService: savingsService,
		logger:         logger,
	}
}

// CreateGoal godoc
// @Summary Create a savings goal
// @Tags savings
// @Accept json
// @Produce json
// @Param request body dto.SavingsGoalRequest true "Savings goal"
// @Security Bearer
// @Success 201 {object} dto.SavingsGoalResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/savings-goals [post]
func (h *SavingsHandler) CreateGoal(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.SavingsGoalRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.savingsService.CreateGoal(c.Context(), userID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create savings goal")
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListGoals godoc
// @Summary List savings goals
// @Description List savings goals with their progress
// @Tags savings
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.SavingsGoalResponse
// @Router /api/v1/savings-goals [get]
func (h *SavingsHandler) ListGoals(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	goals, err := h.savingsService.ListGoals(c.Context(), userID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list savings goals")
	}
	return c.JSON(goals)
}

// Contribute godoc
// @Summary Contribute to a savings goal
// @Tags savings
// @Accept json
// @Produce json
// @Param id path string true "Savings goal ID"
// @Param request body dto.ContributionRequest true "Contribution"
// @Security Bearer
// @Success 200 {object} dto.SavingsGoalResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/savings-goals/{id}/contribute [post]
func (h *SavingsHandler) Contribute(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid savings goal ID")
	}

	var req dto.ContributionRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.savingsService.Contribute(c.Context(), userID, id, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to record contribution")
	}
	return c.JSON(resp)
}

// DeleteGoal godoc
// @Summary Delete a savings goal
// @Tags savings
// @Param id path string true "Savings goal ID"
// @Security Bearer
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/v1/savings-goals/{id} [delete]
func (h *SavingsHandler) DeleteGoal(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid savings goal ID")
	}

	if err := h.savingsService.DeleteGoal(c.Context(), userID, id); err != nil {
		return respondError(c, h.logger, err, "Failed to delete savings goal")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
