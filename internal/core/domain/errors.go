package domain

import "errors"

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrForbidden           = errors.New("you can only access your own applications")

	ErrInvalidCredentials = errors.New("no active account found with the given credentials")
	ErrInactiveUser       = errors.New("user is inactive")
	ErrInvalidToken       = errors.New("token is invalid or expired")
	ErrTokenBlacklisted   = errors.New("token is blacklisted")
)

// ValidationError is a client mistake in the request payload. Fields, when
// present, maps a field name to what is wrong with it.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError without field details.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

var (
	ErrMissingCredentials = NewValidationError("Username and password are required")
	ErrPasswordTooShort   = NewValidationError("Password must be at least 8 characters long")
	ErrUserExists         = NewValidationError("Username already exists")
	ErrInvalidEmail       = NewValidationError("Enter a valid email address")
	ErrOwnershipMismatch  = NewValidationError("You can only update your own applications.")
	ErrInvalidStatus      = NewValidationError("Select a valid status choice")
)

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
