package logic

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a tier, category, snapshot or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUserNotFound indicates the user is not a key of the results table.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)

	// ErrNoData indicates the user has no qualifying results.
	ErrNoData = errors.New("no data")

	// ErrInvalidSchedule is returned when the category registry or tier
	// schedule fails validation.
	ErrInvalidSchedule = errors.New("invalid schedule")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSchedule, fmt.Sprintf(format, args...))
}
