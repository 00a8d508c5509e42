package domain

import "errors"

// Error kinds shared by every operation. Services wrap them with context
// (fmt.Errorf("menu item %d: %w", id, ErrNotFound)); handlers classify with
// errors.Is to pick the HTTP status. Anything not matching a kind is treated
// as an infrastructure failure.
var (
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidReference = errors.New("invalid reference")
)
