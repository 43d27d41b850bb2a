package service

import (
	"errors"
	"fmt"
)

// ErrValidation is the base of every request-validation failure. Concrete
// failures wrap it with a field message so handlers can match the category
// with errors.Is and still surface the detail.
var ErrValidation = errors.New("validation_failed")

// validationf builds a field-level validation error wrapping ErrValidation.
func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}
