package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidStatus indicates an operation not allowed in the current status.
	ErrInvalidStatus = errors.New("invalid status transition")
	// ErrValidation indicates a request that failed input validation.
	ErrValidation = errors.New("validation failed")
)

// UserSafeMessage extracts a message fit for end users. Known business errors keep
// their text; anything else is masked to avoid leaking internals.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "The requested record was not found"
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrValidation):
		return err.Error()
	default:
		return "Something went wrong, please try again"
	}
}
