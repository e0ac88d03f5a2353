package order

import (
	"errors"
	"fmt"

	"github.com/georgemunganga/eshop-backend/internal/platform/store"
)

var (
	// ErrValidation marks a request the client must fix; handlers answer 400.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidID is a malformed identifier. It is a kind of ErrValidation.
	ErrInvalidID = fmt.Errorf("%w: invalid id", ErrValidation)
	// ErrNotFound is returned when the order does not exist.
	ErrNotFound = store.ErrNotFound
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
