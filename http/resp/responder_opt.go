package resp

import (
	"net/url"

	"github.com/xy-planning-network/trailhead/http/template"
	"github.com/xy-planning-network/trailhead/logger"
)

// A ResponderOptFn mutates the provided *Responder in some way.
// A ResponderOptFn is used when constructing a new Responder.
type ResponderOptFn func(*Responder)

// WithContactErrMsg sets the message the error template shows clients.
func WithContactErrMsg(msg string) ResponderOptFn {
	return func(d *Responder) {
		d.contactErrMsg = msg
	}
}

// WithErrTemplate sets the template identified by the filepath to use for rendering
// when an unexpected, unhandled error occurs while rendering HTML.
func WithErrTemplate(fp string) ResponderOptFn {
	return func(d *Responder) {
		d.templates.err = fp
	}
}

// WithLogger sets the provided implementation of Logger in order to log all statements through it.
//
// If no Logger is provided through this option, a *logger.TrailheadLogger will be configured.
func WithLogger(log logger.Logger) ResponderOptFn {
	return func(d *Responder) {
		d.logger = log
	}
}

// WithParser sets the provided implementation of template.Parser to use for parsing HTML templates.
func WithParser(p template.Parser) ResponderOptFn {
	return func(d *Responder) {
		d.parser = p
	}
}

// WithRootURL sets the URL used for rendering and redirecting.
//
// NOTE: If u is nil, the root URL is left as "/".
func WithRootURL(u *url.URL) ResponderOptFn {
	return func(d *Responder) {
		if u == nil {
			return
		}

		cp := *u
		d.rootURL = &cp
	}
}
