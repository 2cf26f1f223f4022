// Package validator converts ozzo-validation failures into LayeredError
package validator

import (
	"github.com/KOMKZ/go-yogan-event/errcode"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrValidationFailed common validation failure; field errors go in Data()["fields"]
var ErrValidationFailed = errcode.Register(errcode.New(
	10, 1010, // module 10 (common), business 1010 (validation)
	"common",
	"error.common.validation_failed",
	"validation failed",
))

// Validatable anything that can validate itself
type Validatable interface {
	Validate() error
}

// ValidateRequest runs v.Validate and converts ozzo errors to LayeredError.
// Other errors are returned unchanged.
func ValidateRequest(v Validatable) error {
	err := v.Validate()
	if err == nil {
		return nil
	}

	if validationErrs, ok := err.(validation.Errors); ok {
		return ConvertValidationError(validationErrs)
	}
	return err
}

// ConvertValidationError flattens field errors into a LayeredError
func ConvertValidationError(validationErrs validation.Errors) error {
	fields := make(map[string]string)
	for field, fieldErr := range validationErrs {
		if fieldErr != nil {
			fields[field] = fieldErr.Error()
		}
	}

	return ErrValidationFailed.WithData("fields", fields)
}
