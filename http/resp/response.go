package resp

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/xy-planning-network/trailhead"
)

// A Fn is a functional option that mutates the state of the Response.
type Fn func(Responder, *Response) error

// A Response is the internal object a Responder response method builds while applying all
// functional options.
type Response struct {
	w     http.ResponseWriter
	r     *http.Request
	code  int
	data  any
	tmpls []string
	url   *url.URL
}

// Code sets the response status code.
func Code(c int) Fn {
	return func(_ Responder, r *Response) error {
		r.code = c
		return nil
	}
}

// Data stores the provided value for writing to the client.
func Data(d any) Fn {
	return func(_ Responder, r *Response) error {
		r.data = d
		return nil
	}
}

// Err sets the status code http.StatusInternalServerError and logs the error.
func Err(e error) Fn {
	return func(d Responder, r *Response) error {
		if e == nil {
			e = fmt.Errorf("%w: no error provided", trailhead.ErrMissingData)
		}

		d.logger.Error(e.Error(), newLogContext(r.r, e, r.data))
		r.code = http.StatusInternalServerError
		return nil
	}
}

// Param adds the query parameter key with val to the redirect URL.
//
// Param requires URL or ToRoot to have set the URL first.
func Param(key, val string) Fn {
	return func(_ Responder, r *Response) error {
		if r.url == nil {
			return fmt.Errorf("%w: no url to add query param to", trailhead.ErrMissingData)
		}

		q := r.url.Query()
		q.Add(key, val)
		r.url.RawQuery = q.Encode()
		return nil
	}
}

// Tmpls appends the provided templates to those already set.
// The first template is the one executed; the rest are made available to it.
func Tmpls(fps ...string) Fn {
	return func(_ Responder, r *Response) error {
		r.tmpls = append(r.tmpls, fps...)
		return nil
	}
}

// ToRoot sets the URL to the root URL of the Responder.
func ToRoot() Fn {
	return func(d Responder, r *Response) error {
		cp := *d.rootURL
		r.url = &cp
		return nil
	}
}

// URL parses the provided string into a *url.URL to use for redirecting.
//
// If the string is not parseable, ErrInvalid returns.
func URL(u string) Fn {
	return func(_ Responder, r *Response) error {
		good, err := url.Parse(u)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalid, err)
		}

		r.url = good
		return nil
	}
}
