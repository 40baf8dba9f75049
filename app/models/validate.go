package models

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// Validate runs struct tag validation on a request DTO and wraps failures
// into the billing error taxonomy.
func Validate(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return NewValidationError("%s", err.Error())
	}
	return nil
}
