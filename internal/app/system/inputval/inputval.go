// Package inputval validates handler input structs with struct tags and
// returns human-readable messages suitable for API error responses.
//
// Fields carry a `validate` tag with the rules and a `label` tag with
// the name to use in messages:
//
//	type createInput struct {
//	    Name  string `validate:"required,max=100" label:"Name"`
//	    Email string `validate:"required,email" label:"Email address"`
//	}
package inputval

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string
	Message string
}

// Result collects the failures from one Validate call.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// First returns the first error message, or "" when validation passed.
// Handlers usually return only the first failure to the client.
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every error message with "; ".
func (r *Result) All() string {
	if len(r.Errors) == 0 {
		return ""
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their label tag so messages read naturally.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		return fld.Name
	})

	// Custom rules shared across the app.
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return IsValidRole(fl.Field().String())
	})
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return IsValidObjectID(fl.Field().String())
	})

	return v
}

// Validate runs the struct-tag rules on input and returns the result.
// An input type with no validate tags always passes.
func Validate(input any) *Result {
	result := &Result{}

	err := validate.Struct(input)
	if err == nil {
		return result
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		result.Errors = append(result.Errors, FieldError{
			Field:   "",
			Message: "Input could not be validated.",
		})
		return result
	}

	for _, fe := range verrs {
		result.Errors = append(result.Errors, FieldError{
			Field:   fe.Field(),
			Message: messageFor(fe),
		})
	}
	return result
}

// messageFor translates one validator failure into a client-facing
// sentence.
func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", fe.Field())
	case "email":
		return "A valid email address is required."
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters.", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", fe.Field(), fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters.", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s.", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s.", fe.Field(), fe.Param())
	case "role":
		return fmt.Sprintf("%s must be admin, tutor, or student.", fe.Field())
	case "objectid":
		return fmt.Sprintf("%s must be a valid ID.", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid.", fe.Field())
	}
}
