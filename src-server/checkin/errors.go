package checkin

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrIntegrity        = errors.New("integrity violation")

	ErrCodeNotFound       = fmt.Errorf("code %w", ErrNotFound)
	ErrAttendeeNotFound   = fmt.Errorf("attendee %w", ErrNotFound)
	ErrStatusNotFound     = fmt.Errorf("status %w", ErrNotFound)
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// storeError tags a failure coming from the relational store so callers can
// tell it apart from domain outcomes.
func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
