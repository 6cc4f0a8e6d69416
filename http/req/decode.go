package req

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gorilla/schema"
	"github.com/xy-planning-network/trailhead"
)

func newQueryParamDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)

	return dec
}

// translateDecoderError converts an error returned by *schema.Decoder into trailhead's errors.
// Mismatches between the query params and the struct become ValidationErrors;
// mistakes in the struct itself wrap trailhead.ErrBadConfig.
func translateDecoderError(err error) error {
	var pkgErrs schema.MultiError
	if !errors.As(err, &pkgErrs) {
		// NOTE(dlk): calling a non-pointer a bad config is a guess at the caller's intent
		if strings.Contains(err.Error(), "schema: interface must be a pointer to struct") {
			return fmt.Errorf("%w: %s", trailhead.ErrBadConfig, err)
		}

		return fmt.Errorf("%w: %s", trailhead.ErrBadFormat, err)
	}

	var validErrs ValidationErrors
	for _, pkgErr := range pkgErrs {
		switch err := pkgErr.(type) {
		case schema.ConversionError:
			idx := err.Index
			if idx < 0 {
				idx = 0
			}

			validErrs = append(validErrs, ValidationError{
				Field: err.Key,
				Got:   fmt.Sprintf("bad value at index %d", idx),
				Rule:  "must be " + err.Type.String(),
			})

		case schema.EmptyFieldError:
			return fmt.Errorf(`%w: use the "required" validate rule, not schema's`, trailhead.ErrBadConfig)

		case schema.UnknownKeyError:
			validErrs = append(validErrs, ValidationError{
				Field: err.Key,
				Got:   "value is set",
				Rule:  "unexpected key should not be set",
			})

		default:
			if strings.Contains(err.Error(), "schema: converter not found for") {
				return fmt.Errorf("%w: cannot convert values into unsupported type", trailhead.ErrBadConfig)
			}

			return fmt.Errorf("%w: %s", trailhead.ErrUnexpected, err)
		}
	}

	return validErrs
}
