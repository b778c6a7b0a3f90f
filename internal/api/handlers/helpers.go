package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"pocket-ledger/internal/service"
	"pocket-ledger/pkg/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json/query names instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// parseBody decodes and validates a JSON body. On failure the 400 response
// has already been written and the returned error is the one to hand back
// to fiber.
func parseBody(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validationMessage(err),
		})
	}
	return true, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed on %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed on %s", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

func getUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return userID, nil
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized",
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

func parseID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

// respondError maps service errors onto HTTP statuses. Anything unexpected
// is logged and answered with a generic message.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error, fallback string) error {
	status := fiber.StatusInternalServerError
	msg := fallback

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status, msg = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrNotFound):
		status, msg = fiber.StatusNotFound, "Not found"
	case errors.Is(err, service.ErrConflict):
		status, msg = fiber.StatusConflict, "Already exists"
	case errors.Is(err, service.ErrDefaultCategory):
		status, msg = fiber.StatusConflict, err.Error()
	case errors.Is(err, service.ErrAlreadyBooked),
		errors.Is(err, service.ErrDebtSettled),
		errors.Is(err, service.ErrDebtNotSettled):
		status, msg = fiber.StatusConflict, err.Error()
	case errors.Is(err, service.ErrScanFailed):
		status, msg = fiber.StatusUnprocessableEntity, "Could not read any text from the receipt"
	case errors.Is(err, service.ErrUnsupportedFormat):
		status, msg = fiber.StatusUnsupportedMediaType, err.Error()
	case errors.Is(err, service.ErrFileTooLarge):
		status, msg = fiber.StatusRequestEntityTooLarge, "File too large"
	default:
		logger.Error(fallback, zap.Error(err))
	}

	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}
