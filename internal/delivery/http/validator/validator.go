// Package validator adapts go-playground/validator to echo's Validator interface.
package validator

import (
	domainerrors "bazaar/internal/domain/errors"

	playground "github.com/go-playground/validator/v10"
)

// RequestValidator validates bound request structs via struct tags.
type RequestValidator struct {
	validate *playground.Validate
}

// New creates a RequestValidator.
func New() *RequestValidator {
	return &RequestValidator{validate: playground.New()}
}

// Validate implements echo.Validator. Tag violations surface as the
// validation error of the application taxonomy so the error handler maps
// them to a 400 without special-casing.
func (v *RequestValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}
