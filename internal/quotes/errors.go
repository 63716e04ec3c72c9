package quotes

import (
	"errors"
	"fmt"

	"github.com/sternbridge/bullion-quotes/internal/validation"
)

var (
	// ErrNotFound is returned by mutations aimed at a missing quote.
	// Read paths report a miss as (nil, nil) instead.
	ErrNotFound = errors.New("quote not found")

	// ErrConflict signals a unique-constraint collision on insert. The id
	// generation strategy makes this effectively unreachable; callers may
	// retry the create once.
	ErrConflict = errors.New("identifier conflict")

	// ErrUnauthorized covers credential mismatches. Deliberately generic so
	// responses never reveal whether the quote exists.
	ErrUnauthorized = errors.New("invalid credentials")
)

// ValidationError rejects malformed input before any write, carrying the
// specific constraints violated.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", map[string]string(e.Violations))
}
