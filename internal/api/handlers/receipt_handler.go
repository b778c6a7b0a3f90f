package handlers

import (
	"context"
	"io"

	"pocket-ledger/internal/dto"
	"pocket-ledger/internal/receipt"
	"pocket-ledger/internal/splitbill"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ScanService interface {
	Scan(ctx context.Context, userID uuid.UUID, file io.Reader, fileName string) (*dto.ScanResponse, error)
	ParseText(ctx context.Context, text string) (*receipt.ParsedReceipt, error)
	ListScans(ctx context.Context, userID uuid.UUID, limit, offset int) ([]dto.ScanResponse, error)
	Book(ctx context.Context, userID, scanID uuid.UUID, req *dto.BookReceiptRequest) (*dto.BookReceiptResponse, error)
	Split(ctx context.Context, req *dto.SplitBillRequest) (*splitbill.Breakdown, error)
}

type ReceiptHandler struct {
	scanService   ScanService
	maxUploadSize int64
	logger        *zap.Logger
}

func NewReceiptHandler(scanService ScanService, maxUploadSize int64, logger *zap.Logger) *ReceiptHandler {
	return &ReceiptHandler{
		scanService:   scanService,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// ScanReceipt godoc
// @Summary Scan a receipt
// @Description Upload a receipt photo or PDF, run OCR and parse it into items, tax, tip and total
// @Tags receipts
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Receipt image (jpg, png, webp) or PDF"
// @Security Bearer
// @Success 201 {object} dto.ScanResponse
// @Failure 400 {object} map[string]string
// @Failure 413 {object} map[string]string
// @Failure 415 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Router /api/v1/receipts/scan [post]
func (h *ReceiptHandler) ScanReceipt(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "File is required")
	}
	if file.Size > h.maxUploadSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": "File too large",
		})
	}

	src, err := file.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded file", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read file",
		})
	}
	defer src.Close()

	resp, err := h.scanService.Scan(c.Context(), userID, src, file.Filename)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to scan receipt")
	}

	status := fiber.StatusCreated
	if resp.Cached {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(resp)
}

// ListScans godoc
// @Summary List receipt scans
// @Tags receipts
// @Produce json
// @Param limit query int false "Limit" default(20)
// @Param offset query int false "Offset" default(0)
// @Security Bearer
// @Success 200 {array} dto.ScanResponse
// @Router /api/v1/receipts [get]
func (h *ReceiptHandler) ListScans(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	scans, err := h.scanService.ListScans(c.Context(), userID, limit, offset)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list scans")
	}
	return c.JSON(scans)
}

// ParseReceipt godoc
// @Summary Parse receipt text
// @Description Parse already extracted receipt text without storing anything
// @Tags receipts
// @Accept json
// @Produce json
// @Param request body dto.ParseReceiptRequest true "Receipt text"
// @Security Bearer
// @Success 200 {object} receipt.ParsedReceipt
// @Failure 400 {object} map[string]string
// @Router /api/v1/receipts/parse [post]
func (h *ReceiptHandler) ParseReceipt(c *fiber.Ctx) error {
	var req dto.ParseReceiptRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	parsed, err := h.scanService.ParseText(c.Context(), req.Text)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to parse receipt")
	}
	return c.JSON(parsed)
}

// BookReceipt godoc
// @Summary Book a scanned receipt
// @Description Write the receipt into the ledger as one expense or one expense per item
// @Tags receipts
// @Accept json
// @Produce json
// @Param id path string true "Scan ID"
// @Param request body dto.BookReceiptRequest true "Booking options"
// @Security Bearer
// @Success 201 {object} dto.BookReceiptResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/receipts/{id}/book [post]
func (h *ReceiptHandler) BookReceipt(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid scan ID")
	}

	var req dto.BookReceiptRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.scanService.Book(c.Context(), userID, id, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to book receipt")
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// SplitBill godoc
// @Summary Split a bill
// @Description Divide items among people and spread tax and tip proportionally
// @Tags receipts
// @Accept json
// @Produce json
// @Param request body dto.SplitBillRequest true "Bill"
// @Security Bearer
// @Success 200 {object} splitbill.Breakdown
// @Failure 400 {object} map[string]string
// @Router /api/v1/receipts/split [post]
func (h *ReceiptHandler) SplitBill(c *fiber.Ctx) error {
	var req dto.SplitBillRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	breakdown, err := h.scanService.Split(c.Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to split bill")
	}
	return c.JSON(breakdown)
}
