package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// CustomValidator satisfies echo.Validator so request DTOs are checked
// against their `validate` struct tags on Bind.
type CustomValidator struct {
	v *validator.Validate
}

// New builds the validator used by the HTTP layer.
func New() *CustomValidator {
	return &CustomValidator{v: validator.New()}
}

// Validate runs struct-tag validation on a bound request.
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.v.Struct(i); err != nil {
		return fmt.Errorf("request validation failed: %w", err)
	}
	return nil
}
