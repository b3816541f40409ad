// internals/pkg/errors/errors.go
package pkgerrors

import (
	"errors"
	"fmt"
)

// Cross-layer sentinels. Repositories translate storage-level constraint
// violations into these; services and controllers match with errors.Is.
var (
	// ErrCapacityExceeded: the (shift, date) pair already carries
	// required_staff assignments. Expected under concurrent use.
	ErrCapacityExceeded = errors.New("shift capacity exceeded")

	// ErrDuplicateAssignment: same staff already on that shift/date
	// (unique index on shift_id, staff_id, assignment_date).
	ErrDuplicateAssignment = errors.New("staff already assigned to this shift date")

	// ErrDuplicateName: schedule name collision within the
	// department/facility scope (partial unique index on lower(name)).
	ErrDuplicateName = errors.New("schedule name already in use within this scope")

	// ErrUpstreamUnavailable: roster or vacation-oracle read failed.
	// The engine fails closed rather than assigning without conflict data.
	ErrUpstreamUnavailable = errors.New("roster or leave source unavailable")
)

// ValidationError: malformed input, always recoverable by the caller
// correcting the request. Matched with errors.As.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
