package template

import (
	html "html/template"
	"net/url"

	"github.com/google/uuid"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/route"
)

// AddFn includes the named function in the Parse function map.
func (p *Parse) AddFn(name string, fn any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fns == nil {
		p.fns = make(html.FuncMap)
	}
	p.fns[name] = fn
}

// BasePath encloses the *route.Table the app serves.
// It returns "basePath" as the name of the function for convenient passing to a template.FuncMap
// and returns a function returning the base path the app is served from.
func BasePath(t *route.Table) (string, func() string) {
	base := t.Base()
	return "basePath", func() string { return base }
}

// Env encloses some string representing an environment.
// It returns "env" as the name of the function for convenient passing to a template.FuncMap
// and returns a function returning the enclosed value when called.
func Env(e trailhead.Environment) (string, func() string) {
	return "env", func() string { return e.String() }
}

// Nonce returns "nonce" as the name of the function for convenient passing to a template.FuncMap
// and returns a function generating a uuid.
func Nonce() (string, func() string) {
	return "nonce", func() string { return uuid.NewString() }
}

// PathFor encloses the *route.Table the app serves.
// It returns "pathFor" as the name of the function for convenient passing to a template.FuncMap
// and returns a function returning the base-prefixed path of the route mounting the named view.
// Views no route mounts link to the app root.
func PathFor(t *route.Table) (string, func(string) string) {
	return "pathFor", func(v string) string {
		p, err := t.URL(route.View(v))
		if err != nil {
			return t.Join("/")
		}

		return p
	}
}

// RootURL encloses the *url.URL representing the base URL of the web app.
// It returns "rootURL" as the name of the function for convenient passing to a template.FuncMap
// and returns a function returning its *url.URL.String().
// If u is nil, that function will always return an empty string.
func RootURL(u *url.URL) (string, func() string) {
	if u == nil {
		return "rootURL", func() string { return "" }
	}

	s := u.String()
	return "rootURL", func() string { return s }
}
