package service

import (
	"errors"
	"fmt"
	"time"

	"pocket-ledger/internal/dto"
	"pocket-ledger/internal/repository"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrInvalidInput    = errors.New("invalid input")
	ErrDefaultCategory = errors.New("default catalog entries cannot be deleted")
)

// translate maps storage sentinels onto the service ones handlers know about.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrConflict):
		return ErrConflict
	default:
		return err
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(dto.DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, invalid("%s must be YYYY-MM-DD", field)
	}
	return t, nil
}

func parseOptionalDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func requirePositive(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return invalid("%s must be greater than 0", field)
	}
	return nil
}
