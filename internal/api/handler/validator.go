package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gigboard/marketplace-api/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Field names in messages are the JSON names the client sent.
func NewValidator() *echoValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Money fields must fit the stored NUMERIC(12,2) columns.
	_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		return domain.AmountFits(fl.Field().Float())
	})
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fieldError(fe))
			}
			return fmt.Errorf("%s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "money":
		return field + " must have at most two decimals and not exceed 9999999999.99"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
