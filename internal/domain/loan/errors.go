package loan

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("access denied")

	ErrLoanNotFound      = fmt.Errorf("loan %w", ErrNotFound)
	ErrRepaymentNotFound = fmt.Errorf("repayment %w", ErrNotFound)
)

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
