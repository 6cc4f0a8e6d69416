// Package view pairs each route.View with the title and template that render its shell.
package view

import (
	"fmt"

	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/route"
)

const (
	tmplDir = "tmpl/views/"

	// LayoutTemplate wraps every Page's template.
	LayoutTemplate = "tmpl/layout/base.tmpl"

	// ErrorTemplate renders when no Page can.
	ErrorTemplate = "tmpl/error.tmpl"
)

// A Page is what a route.View renders as.
type Page struct {
	View     route.View
	Title    string
	Template string
}

// Templates returns the templates to parse for rendering p, layout first.
func (p Page) Templates() []string { return []string{LayoutTemplate, p.Template} }

// A Registry maps each route.View to its Page.
type Registry map[route.View]Page

// Default returns the Registry of the face-search app's views.
func Default() Registry {
	return Registry{
		route.ViewHome:     {View: route.ViewHome, Title: "Home", Template: tmplDir + "home.tmpl"},
		route.ViewLogin:    {View: route.ViewLogin, Title: "Log In", Template: tmplDir + "login.tmpl"},
		route.ViewRegister: {View: route.ViewRegister, Title: "Register a Missing Person", Template: tmplDir + "register.tmpl"},
		route.ViewSearch:   {View: route.ViewSearch, Title: "Search", Template: tmplDir + "search.tmpl"},
		route.ViewNotFound: {View: route.ViewNotFound, Title: "Page Not Found", Template: tmplDir + "not_found.tmpl"},
	}
}

// Lookup retrieves the Page for v.
// If there is none, an error wrapping trailhead.ErrNotExist returns.
func (reg Registry) Lookup(v route.View) (Page, error) {
	p, ok := reg[v]
	if !ok {
		return Page{}, fmt.Errorf("%w: no page for view %q", trailhead.ErrNotExist, v)
	}

	return p, nil
}

// Covers checks every Route of t, and the not-found Route, has a Page.
func (reg Registry) Covers(t *route.Table) error {
	for _, r := range append(t.Routes(), t.NotFound()) {
		if _, err := reg.Lookup(r.View); err != nil {
			return fmt.Errorf("%w: %s", trailhead.ErrBadConfig, err)
		}
	}

	return nil
}
