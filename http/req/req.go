package req

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/gorilla/schema"
	"github.com/xy-planning-network/trailhead"
)

// A Parser decodes request payloads into structs and validates them.
type Parser struct {
	queryParamDecoder *schema.Decoder
	validator
}

// NewParser constructs a *Parser.
//
// Besides the rules of [github.com/go-playground/validator/v10],
// fields can be tagged with `validate:"location"`;
// cf. ValidLocation.
func NewParser() *Parser {
	return &Parser{
		queryParamDecoder: newQueryParamDecoder(),
		validator:         newValidator(),
	}
}

// ParseBody decodes into a pointer to a struct the JSON data in body.
// If successful, ParseBody runs validation against the contents,
// returning ValidationErrors if the data fails validation rules.
//
// ParseBody reads the entire body and it can't be read from again.
func (p *Parser) ParseBody(body io.Reader, structPtr any) error {
	var ourFault *json.InvalidUnmarshalError
	err := json.NewDecoder(body).Decode(structPtr)
	if errors.As(err, &ourFault) {
		return fmt.Errorf("%w: ParseBody called with non-pointer: %s", trailhead.ErrBadConfig, err)
	}

	if err != nil {
		return fmt.Errorf("%w: failed decoding request body: %s", trailhead.ErrBadFormat, err)
	}

	if err := p.validate(structPtr); err != nil {
		return fmt.Errorf("%T failed validation: %w", structPtr, err)
	}

	return nil
}

// ParseQueryParams decodes into a pointer to a struct the query params.
// If successful, ParseQueryParams runs validation against the contents,
// returning ValidationErrors if the data fails validation rules.
func (p *Parser) ParseQueryParams(params url.Values, structPtr any) error {
	if err := p.queryParamDecoder.Decode(structPtr, params); err != nil {
		return fmt.Errorf("failed decoding request query params: %w", translateDecoderError(err))
	}

	if err := p.validate(structPtr); err != nil {
		return fmt.Errorf("%T failed validation: %w", structPtr, err)
	}

	return nil
}
