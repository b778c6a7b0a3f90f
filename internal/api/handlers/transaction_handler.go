package handlers

import (
	"context"

	"pocket-ledger/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type LedgerService interface {
	CreateTransaction(ctx context.Context, userID uuid.UUID, req *dto.TransactionRequest) (*dto.TransactionResponse, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, q *dto.TransactionQuery) ([]dto.TransactionResponse, error)
	GetTransaction(ctx context.Context, userID, id uuid.UUID) (*dto.TransactionResponse, error)
	UpdateTransaction(ctx context.Context, userID, id uuid.UUID, req *dto.TransactionRequest) (*dto.TransactionResponse, error)
	DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error
	Export(ctx context.Context, userID uuid.UUID) (*dto.LedgerExport, error)
	Import(ctx context.Context, userID uuid.UUID, req *dto.ImportLedgerRequest) (*dto.ImportLedgerResponse, error)
	Balance(ctx context.Context, userID uuid.UUID, q *dto.BalanceQuery) (*dto.BalanceResponse, error)
}

type TransactionHandler struct {
	ledgerService LedgerService
	logger        *zap.Logger
}

func NewTransactionHandler(ledgerService LedgerService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// CreateTransaction godoc
// @Summary Add a transaction
// @Description Add an income or expense. Expenses count against every budget of their category.
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body dto.TransactionRequest true "Transaction"
// @Security Bearer
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/transactions [post]
func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.TransactionRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.ledgerService.CreateTransaction(c.Context(), userID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create transaction")
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListTransactions godoc
// @Summary List transactions
// @Description List the user's transactions, newest first
// @Tags transactions
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD), inclusive"
// @Param type query string false "income or expense"
// @Param category query string false "Category id"
// @Param limit query int false "Limit" default(100)
// @Param offset query int false "Offset" default(0)
// @Security Bearer
// @Success 200 {array} dto.TransactionResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) ListTransactions(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var q dto.TransactionQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "Invalid query parameters")
	}
	if err := validate.Struct(&q); err != nil {
		return badRequest(c, validationMessage(err))
	}

	txs, err := h.ledgerService.ListTransactions(c.Context(), userID, &q)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list transactions")
	}
	return c.JSON(txs)
}

// GetTransaction godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Security Bearer
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid transaction ID")
	}

	resp, err := h.ledgerService.GetTransaction(c.Context(), userID, id)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to get transaction")
	}
	return c.JSON(resp)
}

// UpdateTransaction godoc
// @Summary Update a transaction
// @Description Replace a transaction. Budgets release the old amount and book the new one.
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param request body dto.TransactionRequest true "Transaction"
// @Security Bearer
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid transaction ID")
	}

	var req dto.TransactionRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.ledgerService.UpdateTransaction(c.Context(), userID, id, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update transaction")
	}
	return c.JSON(resp)
}

// DeleteTransaction godoc
// @Summary Delete a transaction
// @Tags transactions
// @Param id path string true "Transaction ID"
// @Security Bearer
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/v1/transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid transaction ID")
	}

	if err := h.ledgerService.DeleteTransaction(c.Context(), userID, id); err != nil {
		return respondError(c, h.logger, err, "Failed to delete transaction")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ExportLedger godoc
// @Summary Export the ledger
// @Description Export transactions, recurring rules, budgets, categories and payment methods
// @Tags ledger
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.LedgerExport
// @Router /api/v1/ledger/export [get]
func (h *TransactionHandler) ExportLedger(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	export, err := h.ledgerService.Export(c.Context(), userID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to export ledger")
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="pocket-ledger-export.json"`)
	return c.JSON(export)
}

// ImportLedger godoc
// @Summary Import a ledger export
// @Description Merge keeps existing records and adds unknown ids; replace wipes the ledger first
// @Tags ledger
// @Accept json
// @Produce json
// @Param request body dto.ImportLedgerRequest true "Import request"
// @Security Bearer
// @Success 200 {object} dto.ImportLedgerResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/ledger/import [post]
func (h *TransactionHandler) ImportLedger(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.ImportLedgerRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.ledgerService.Import(c.Context(), userID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to import ledger")
	}
	return c.JSON(resp)
}

// GetBalance godoc
// @Summary Ledger balance
// @Description Total income, total expense and their difference
// @Tags ledger
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD), inclusive"
// @Security Bearer
// @Success 200 {object} dto.BalanceResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/ledger/balance [get]
func (h *TransactionHandler) GetBalance(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var q dto.BalanceQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "Invalid query parameters")
	}
	if err := validate.Struct(&q); err != nil {
		return badRequest(c, validationMessage(err))
	}

	resp, err := h.ledgerService.Balance(c.Context(), userID, &q)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to compute balance")
	}
	return c.JSON(resp)
}
