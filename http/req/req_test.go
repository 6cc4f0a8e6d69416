package req_test

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/http/req"
)

func TestNewParserLocationRule(t *testing.T) {
	// Arrange
	var parser *req.Parser
	require.NotPanics(t, func() { parser = req.NewParser() })

	type nonString struct {
		Path int `json:"path" validate:"location"`
	}

	// Act
	err := parser.ParseBody(strings.NewReader(`{"path":1}`), &nonString{})

	// Assert
	var verrs req.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Equal(t, req.ValidationErrors{{Field: "path", Got: 1, Rule: "location; int"}}, verrs)
}

func TestParserParseBody(t *testing.T) {
	// Arrange
	parser := req.NewParser()

	type test struct {
		Path  string `json:"path" validate:"required,location"`
		Count int64  `json:"count" validate:"gt=10,required"`
		Meta  struct {
			Replace bool `json:"replace" validate:"eq=true"`
		} `json:"meta"`
		Skip string `json:"-"`
	}
	var input, output test

	b := new(bytes.Buffer)
	require.NoError(t, json.NewEncoder(b).Encode(input))

	// Act
	err := parser.ParseBody(b, struct{}{})

	// Assert
	require.ErrorIs(t, err, trailhead.ErrBadConfig)

	// Arrange
	b.Reset()
	b.WriteByte('\x00')

	// Act
	err = parser.ParseBody(b, &output)

	// Assert
	require.ErrorIs(t, err, trailhead.ErrBadFormat)

	// Arrange
	input.Path = "login"
	expected := req.ValidationErrors{
		{Field: "path", Got: "login", Rule: "location; string"},
		{Field: "count", Got: int64(0), Rule: "gt=10; int64"},
		{Field: "meta.replace", Got: false, Rule: "eq=true; bool"},
	}
	require.NoError(t, json.NewEncoder(b).Encode(input))

	// Act
	var actual req.ValidationErrors
	err = parser.ParseBody(b, &output)

	// Assert
	require.ErrorIs(t, err, trailhead.ErrNotValid)
	require.Equal(t, input, output)
	require.ErrorAs(t, err, &actual)
	require.Equal(t, expected, actual)

	// Arrange
	input.Path = "/search?q=x"
	input.Count = 20
	input.Meta.Replace = true
	input.Skip = "ignore"

	b = new(bytes.Buffer)
	require.NoError(t, json.NewEncoder(b).Encode(input))

	// Act
	err = parser.ParseBody(b, &output)

	// Assert
	require.NoError(t, err)
	require.Equal(t, input.Path, output.Path)
	require.Equal(t, input.Count, output.Count)
	require.Equal(t, input.Meta, output.Meta)
	require.Equal(t, "", output.Skip)
}

func TestParserParseQueryParams(t *testing.T) {
	// Arrange
	parser := req.NewParser()
	u := make(url.Values)

	// Act
	err := parser.ParseQueryParams(u, struct{}{})

	// Assert
	require.ErrorIs(t, err, trailhead.ErrBadConfig)

	// Act
	err = parser.ParseQueryParams(u, new(struct {
		A string `schema:"a,required"`
	}))

	// Assert
	require.ErrorIs(t, err, trailhead.ErrBadConfig)

	// Arrange
	type test struct {
		Path  string   `schema:"path" validate:"required,location"`
		Limit int64    `schema:"limit" validate:"gt=10,required"`
		Views []string `schema:"view" validate:"len=2,required"`
		Skip  string   `schema:"-"`
	}

	u.Set("path", "/login")
	u.Set("limit", "test")

	var actual req.ValidationErrors
	expected := req.ValidationErrors{{
		Field: "limit",
		Got:   "bad value at index 0",
		Rule:  "must be int64",
	}}

	// Act
	err = parser.ParseQueryParams(u, new(test))

	// Assert
	require.ErrorIs(t, err, trailhead.ErrNotValid)
	require.ErrorAs(t, err, &actual)
	require.Equal(t, expected, actual)

	// Arrange
	u.Set("path", "//evil.example")
	u.Set("limit", "1")
	u.Add("view", "home")

	expected = req.ValidationErrors{
		{Field: "path", Got: "//evil.example", Rule: "location; string"},
		{Field: "limit", Got: int64(1), Rule: "gt=10; int64"},
		{Field: "view", Got: []string{"home"}, Rule: "len=2; []string"},
	}

	// Act
	err = parser.ParseQueryParams(u, new(test))

	// Assert
	require.ErrorIs(t, err, trailhead.ErrNotValid)
	require.ErrorAs(t, err, &actual)
	require.Equal(t, expected, actual)

	// Arrange
	u.Set("path", "/search")
	u.Set("limit", "20")
	u.Add("view", "search")
	u.Set("skip", "ignore")
	actualVal := new(test)

	// Act
	err = parser.ParseQueryParams(u, actualVal)

	// Assert
	require.NoError(t, err)
	require.Equal(t, "/search", actualVal.Path)
	require.Equal(t, int64(20), actualVal.Limit)
	require.Equal(t, []string{"home", "search"}, actualVal.Views)
	require.Equal(t, "", actualVal.Skip)
}

func TestValidLocation(t *testing.T) {
	tcs := []struct {
		loc    string
		expect bool
	}{
		{"/", true},
		{"/search?q=x#top", true},
		{"/app/login/", true},
		{"", false},
		{"login", false},
		{"//evil.example", false},
		{"https://evil.example/", false},
		{"/%zz", false},
	}

	for _, tc := range tcs {
		t.Run(strings.ReplaceAll(tc.loc, "/", "_"), func(t *testing.T) {
			require.Equal(t, tc.expect, req.ValidLocation(tc.loc))
		})
	}
}
