package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Deepesh2575/Online-Banking-System/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// Amounts are validated through their decimal string form.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	if err := v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseAmount(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(fmt.Sprintf("register money validation: %v", err))
	}

	// Opening deposits may be zero.
	if err := v.RegisterValidation("opening_deposit", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && domain.ValidateInitialDeposit(d) == nil
	}); err != nil {
		panic(fmt.Sprintf("register opening_deposit validation: %v", err))
	}

	return v
}

// validateStruct returns one FieldError per failed field, or nil.
func validateStruct(s any) []FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "", Message: err.Error()}}
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "money":
		return "must be a positive amount with at most 2 decimal places"
	case "opening_deposit":
		return "must be zero or a positive amount with at most 2 decimal places"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "invalid"
	}
}
