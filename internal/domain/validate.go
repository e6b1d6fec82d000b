package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Layouts for the date and time strings carried on tasks.
const (
	DateLayout     = "2006-01-02"
	ClockLayout    = "15:04"
	ReminderLayout = "2006-01-02 15:04"
)

// validate is shared by every entity; validator.Validate caches struct metadata and is
// safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so messages match what callers send.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// validateStruct runs the struct tags of s and converts the first failure into a
// ValidationError carrying the matching domain sentinel.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return NewValidationError("entity", "failed validation", err)
	}

	fe := fieldErrs[0]
	return NewValidationError(fe.Field(), describeFieldError(fe), sentinelFor(fe))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "datetime":
		return fmt.Sprintf("must match layout %q", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("failed on the %q rule", fe.Tag())
	}
}

func sentinelFor(fe validator.FieldError) error {
	switch fe.Field() {
	case "category":
		return ErrInvalidCategory
	case "recurrence_type", "recurrence_interval":
		return ErrInvalidRecurrence
	}

	switch fe.Tag() {
	case "required":
		return ErrEmptyContent
	case "max":
		return ErrTooLong
	case "datetime":
		return ErrInvalidFormat
	default:
		return nil
	}
}
