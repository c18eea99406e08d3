package codes

import (
	"errors"
	"fmt"
)

// ErrNotFound revoke/get terhadap id yang tidak ada
var ErrNotFound = errors.New("access code not found")

// ValidationError marks bad caller input (missing subject, duration
// out of range). Handlers map it to a client error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
