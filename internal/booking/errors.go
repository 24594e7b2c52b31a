package booking

import (
	"errors"
	"fmt"
)

// Error taxonomy for the booking engine. Handlers map these to HTTP status
// codes; everything else is a 500. "Closed" or "no slots" is never an error:
// searches return empty results instead.
var (
	// ErrInvalidArgument covers malformed input: empty service lists,
	// unknown service ids, inverted date ranges, ineligible staff on create.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound covers missing referenced entities (staff, appointment).
	ErrNotFound = errors.New("not found")

	// ErrConflict means the requested interval is no longer bookable:
	// raced away by a concurrent booking, or the staff member's availability
	// changed since the search. Callers may retry with a fresh search.
	ErrConflict = errors.New("conflict")
)

func invalidArgumentf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidArgument}, args...)...)
}

func conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrConflict}, args...)...)
}
