package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ramp_capacity/internal/models"
)

// wrapErr tags a driver error with the matching models sentinel
func wrapErr(op string, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, models.ErrDataUnavailable, err)
	}
}
