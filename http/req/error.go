package req

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xy-planning-network/trailhead"
)

// A ValidationError is an issue with a concrete value not matching the rule set on its field.
type ValidationError struct {
	Field string `json:"field"`
	Got   any    `json:"got"`
	Rule  string `json:"rule,omitempty"`
}

// ValidationErrors is a set of ValidationError.
// It unwraps to trailhead.ErrNotValid.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}

	msgs := make([]string, 0, len(v))
	for _, err := range v {
		msgs = append(msgs, fmt.Sprintf("field=%q rule=%q got=%q", err.Field, err.Rule, fmt.Sprint(err.Got)))
	}

	return trailhead.ErrNotValid.Error() + ": " + strings.Join(msgs, "; ")
}

func (v ValidationErrors) MarshalJSON() ([]byte, error) {
	var errs struct {
		E []ValidationError `json:"validationErrors,omitempty"`
	}
	errs.E = append(errs.E, v...)

	return json.Marshal(errs)
}

func (ValidationErrors) Unwrap() error { return trailhead.ErrNotValid }
