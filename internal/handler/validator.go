package handler

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sumire/issuetracker/internal/domain"
)

// AppValidator wraps go-playground/validator. Field names in errors are the
// json names clients send.
type AppValidator struct {
	validator *validator.Validate
}

// NewAppValidator creates a new AppValidator.
func NewAppValidator() *AppValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &AppValidator{validator: v}
}

// Validate validates a struct using go-playground/validator tags.
func (v *AppValidator) Validate(i any) error {
	if err := v.validator.Struct(i); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if ok && len(validationErrors) > 0 {
			fe := validationErrors[0]
			return &domain.ValidationError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("failed on '%s' validation", fe.Tag()),
			}
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}
