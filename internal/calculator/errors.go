package calculator

import (
	"errors"
	"fmt"
)

// Input field names reported by InvalidInputError.
const (
	FieldClient        = "cliente"
	FieldMonthlyIncome = "ingresoMensual"
)

// ErrInvalidInput matches every *InvalidInputError through errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError reports a calculation request that violates its
// preconditions. No Result is produced alongside it.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrInvalidInput.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}
