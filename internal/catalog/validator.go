package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks a BookInput against its struct tags and reports every
// violation at once (collect-all). The same policy applies to every field.
type Validator struct {
	v *validator.Validate
}

// NewValidator creates a validator that names fields by their JSON tag.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Validate returns nil or a *ValidationError.
func (v *Validator) Validate(in BookInput) error {
	err := v.v.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = friendlyMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func friendlyMessage(fe validator.FieldError) string {
	isList := fe.Kind() == reflect.Slice
	switch fe.Tag() {
	case "required":
		if isList {
			return "must contain at least one entry"
		}
		return "is required"
	case "min":
		if isList {
			return fmt.Sprintf("must contain at least %s entry", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	default:
		return "is invalid"
	}
}
