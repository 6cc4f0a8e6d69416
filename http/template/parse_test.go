package template_test

import (
	"bytes"
	html "html/template"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailhead/http/template"
	tt "github.com/xy-planning-network/trailhead/http/template/templatetest"
)

type testFn func(*testing.T, *html.Template, error)

func TestParse(t *testing.T) {
	stub := []byte("<!DOCTYPE html>\n<html></html>")
	tcs := []struct {
		name   string
		parser *template.Parse
		fns    map[string]any
		fps    []string
		assert testFn
	}{
		{
			name:   "Nil",
			parser: template.NewParser(),
			fps:    []string{},
			assert: func(t *testing.T, tmpl *html.Template, err error) {
				require.ErrorIs(t, err, template.ErrNoFiles)
				require.Nil(t, tmpl)
			},
		},
		{
			name:   "Empty-String",
			parser: tt.NewParser(tt.NewMockFile("", nil)),
			fps:    []string{"", ""},
			assert: func(t *testing.T, tmpl *html.Template, err error) {
				require.ErrorIs(t, err, template.ErrNoFiles)
				require.Nil(t, tmpl)
			},
		},
		{
			name:   "No-File",
			parser: tt.NewParser(tt.NewMockFile("", nil)),
			fps:    []string{"example.tmpl"},
			assert: func(t *testing.T, tmpl *html.Template, err error) {
				require.NotNil(t, err)
				require.Nil(t, tmpl)
			},
		},
		{
			name:   "Empty-File",
			parser: tt.NewParser(tt.NewMockFile("example.tmpl", nil)),
			fps:    []string{"example.tmpl"},
			assert: func(t *testing.T, tmpl *html.Template, err error) {
				require.Nil(t, err)
				require.Equal(t, "example.tmpl", tmpl.Name())

				b := new(bytes.Buffer)
				require.Nil(t, tmpl.Execute(b, nil))
				require.Zero(t, b.Len())
			},
		},
		{
			name:   "Not-Empty-File",
			parser: tt.NewParser(tt.NewMockFile("example.tmpl", stub)),
			fps:    []string{"", "example.tmpl"},
			assert: func(t *testing.T, tmpl *html.Template, err error) {
				require.Nil(t, err)
				require.Equal(t, "example.tmpl", tmpl.Name())

				b := new(bytes.Buffer)
				require.Nil(t, tmpl.Execute(b, nil))
				require.Equal(t, stub, b.Bytes())
			},
		},
		{
			name: "Many-Files",
			parser: tt.NewParser(
				tt.NewMockFile(
					"example.tmpl",
					[]byte(`<!DOCTYPE html><html>{{ template "test" }}</html>`),
				),
				tt.NewMockFile(
					"test.tmpl",
					[]byte(`{{ define "test" }}<p>sup</p>{{ end }}`),
				),
			),
			fps: []string{"example.tmpl", "test.tmpl"},
			assert: func(t *testing.T, tmpl *html.Template, err error) {
				require.Nil(t, err)
				require.Equal(t, "example.tmpl", tmpl.Name())

				b := new(bytes.Buffer)
				require.Nil(t, tmpl.ExecuteTemplate(b, "example.tmpl", nil))
				require.Equal(t, "<!DOCTYPE html><html><p>sup</p></html>", b.String())
			},
		},
		{
			name: "Add-Fns",
			parser: tt.NewParser(
				tt.NewMockFile(
					"example.tmpl",
					[]byte(`<!DOCTYPE html><html>{{ test }} {{ second "cool" }}</html>`),
				),
			),
			fns: map[string]any{
				"test":   func() string { return "test" },
				"second": func(s string) string { return s },
			},
			fps: []string{"example.tmpl"},
			assert: func(t *testing.T, tmpl *html.Template, err error) {
				require.Nil(t, err)

				b := new(bytes.Buffer)
				require.Nil(t, tmpl.Execute(b, nil))
				require.Equal(t, "<!DOCTYPE html><html>test cool</html>", b.String())
			},
		},
		{
			name: "With-Fn",
			parser: template.NewParser(
				template.WithFS(tt.NewMockFS(tt.NewMockFile("example.tmpl", []byte(`{{ greet "jane" }}`)))),
				template.WithFn("greet", func(s string) string { return "hi " + s }),
			),
			fps: []string{"example.tmpl"},
			assert: func(t *testing.T, tmpl *html.Template, err error) {
				require.Nil(t, err)

				b := new(bytes.Buffer)
				require.Nil(t, tmpl.Execute(b, nil))
				require.Equal(t, "hi jane", b.String())
			},
		},
		{
			name:   "Embedded-Fallback",
			parser: tt.NewParser(),
			fps:    []string{"tmpl/error.tmpl"},
			assert: func(t *testing.T, tmpl *html.Template, err error) {
				require.Nil(t, err)
				require.Equal(t, "error.tmpl", tmpl.Name())

				b := new(bytes.Buffer)
				require.Nil(t, tmpl.Execute(b, map[string]any{"Contact": "email us"}))
				require.Contains(t, b.String(), "<p>email us</p>")
			},
		},
		{
			name:   "User-Overrides-Embedded",
			parser: tt.NewParser(tt.NewMockFile("tmpl/error.tmpl", []byte("custom"))),
			fps:    []string{"tmpl/error.tmpl"},
			assert: func(t *testing.T, tmpl *html.Template, err error) {
				require.Nil(t, err)

				b := new(bytes.Buffer)
				require.Nil(t, tmpl.Execute(b, nil))
				require.Equal(t, "custom", b.String())
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.fns {
				tc.parser.AddFn(k, v)
			}

			tmpl, err := tc.parser.Parse(tc.fps...)
			tc.assert(t, tmpl, err)
		})
	}
}
