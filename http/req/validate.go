package req

import (
	"errors"
	"net/url"
	"reflect"
	"strings"

	v10 "github.com/go-playground/validator/v10"
)

type validator struct {
	valid *v10.Validate
}

// newValidator constructs a validator naming fields by their json, then schema, tag.
// newValidator panics if the "location" rule cannot be registered.
func newValidator() validator {
	v := v10.New()
	if err := v.RegisterValidation("location", validateLocation); err != nil {
		panic(err)
	}

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "schema"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}

		return ""
	})

	return validator{v}
}

// validate checks the fields on structPtr match the rules set by "validate" struct tags,
// translating each issue to a ValidationError.
func (v validator) validate(structPtr any) error {
	err := v.valid.Struct(structPtr)
	if err == nil {
		return nil
	}

	var errs v10.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	var validateErrs ValidationErrors
	for _, ve := range errs {
		field := ve.Namespace()
		if ns := strings.SplitN(field, ".", 2); len(ns) == 2 {
			field = ns[1]
		}

		rule := ve.Tag()
		if ve.Param() != "" {
			rule += "=" + ve.Param()
		}
		rule += "; " + ve.Type().String()

		validateErrs = append(validateErrs, ValidationError{
			Field: field,
			Got:   ve.Value(),
			Rule:  rule,
		})
	}

	return validateErrs
}

func validateLocation(fl v10.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}

	return ValidLocation(fl.Field().String())
}

// ValidLocation asserts whether loc is a path within the app,
// optionally followed by a query and fragment.
//
// e.g., "/search?q=x" is, but "search", "//evil.example" and "https://evil.example/" are not.
func ValidLocation(loc string) bool {
	if !strings.HasPrefix(loc, "/") || strings.HasPrefix(loc, "//") {
		return false
	}

	u, err := url.Parse(loc)
	return err == nil && u.Scheme == "" && u.Host == ""
}
