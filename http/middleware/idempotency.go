package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"io"
	"net/http"
	"time"

	"github.com/xy-planning-network/trailhead"
)

const (
	IdempotencyHeader = "Idempotency-Key"

	// DefaultIdempotentMaxBytes caps the request body Idempotent buffers
	// when no positive limit is passed in.
	DefaultIdempotentMaxBytes int64 = 1 << 20

	idemPublishTimeout = 5 * time.Second
)

var _ http.ResponseWriter = (*idemReqWriter)(nil)

// Idempotent returns a middleware.Adapter that enables features
// of idempotency on a POST endpoint.
// Navigating twice with the same key pushes a single history entry.
//
// Idempotent pulls a key from the request headers
// to base the uniqueness of a POST request around.
// Requests without a key pass through untouched.
// When the request carries a visitor ID under trailhead.VisitorIDKey,
// the key is scoped to that visitor.
//
// Idempotent buffers at most maxBytes of the request body;
// larger bodies are answered with 413.
// A maxBytes of zero or less uses DefaultIdempotentMaxBytes.
//
// If a previous request has not used that key,
// Idempotent claims the key and, once the handler returns,
// pairs all of the following values to it:
// - the hash of the body of the request
// - the body of the resulting response
// - the status code of the resulting response
//
// If that key has been used before (and has not expired),
// Idempotent falls into one of these scenarios:
//
//   - if a status code has not been set for that key,
//     Idempotent responds with 409 since the idempotent request is still processing
//
//   - if the newly requested resource (the URI) does not match the original,
//     Idempotent responds with 422
//
//   - if the new request's body does not match the body of the original request's,
//     Idempotent responds with 422
//
//   - otherwise, Idempotent writes the status code and body set for the key
//
// cache can be nil, in which case an IdemResMap is used.
//
// Idempotent implements the draft Idempotent HTTP Header Field specification:
// https://tools.ietf.org/id/draft-idempotency-header-01.html
func Idempotent(cache IdempotencyCacher, maxBytes int64) Adapter {
	if cache == nil {
		cache = NewIdemResMap()
	}

	if maxBytes <= 0 {
		maxBytes = DefaultIdempotentMaxBytes
	}

	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if r.Method != http.MethodPost || key == "" {
				handler.ServeHTTP(w, r)
				return
			}

			if id, ok := r.Context().Value(trailhead.VisitorIDKey).(string); ok && id != "" {
				key = id + ":" + key
			}

			body := new(bytes.Buffer)
			if r.Body != nil {
				if _, err := io.Copy(body, io.LimitReader(r.Body, maxBytes+1)); err != nil {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
			}

			if int64(body.Len()) > maxBytes {
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body.Bytes()))
			sum := sha256.Sum256(body.Bytes())

			ir, claimed := cache.Claim(r.Context(), key, NewIdemRes(r.URL.RequestURI(), sum[:]))
			if !claimed {
				replay(w, r, ir, sum[:])
				return
			}

			irw := &idemReqWriter{ctx: r.Context(), i: &ir, w: w}

			// NOTE(dlk): a panicking handler or a client that left before anything was written
			// must not pin the key as in-flight for the whole TTL.
			var published bool
			defer func() {
				if !published {
					ctx, cancel := context.WithTimeout(context.Background(), idemPublishTimeout)
					defer cancel()
					cache.Delete(ctx, key)
				}
			}()

			handler.ServeHTTP(irw, r)

			if ir.Status == 0 {
				if r.Context().Err() != nil {
					return
				}
				ir.Status = http.StatusOK
			}

			ctx, cancel := context.WithTimeout(context.Background(), idemPublishTimeout)
			defer cancel()
			cache.Set(ctx, key, ir)
			published = true
		})
	}
}

// replay answers a request whose key was already claimed.
func replay(w http.ResponseWriter, r *http.Request, ir IdemRes, sum []byte) {
	if ir.Status == 0 {
		w.WriteHeader(http.StatusConflict)
		return
	}

	if ir.URI != r.URL.RequestURI() || !bytes.Equal(ir.Req, sum) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}

	if ir.ContentType != "" {
		w.Header().Set("Content-Type", ir.ContentType)
	}

	w.WriteHeader(ir.Status)
	if ir.Body != nil {
		w.Write(ir.Body.Bytes())
	}
}

// An IdemRes is data from an HTTP response
// that can be reused when another request
// matches the same idempotency key.
type IdemRes struct {
	Body        *bytes.Buffer
	ContentType string
	Req         []byte
	Status      int
	URI         string
}

// An idemResGob is an intermediate representation of
// an IdemRes for the purposes of gob encoding/decoding.
type idemResGob struct {
	B  []byte
	CT string
	R  []byte
	S  int
	U  string
}

// NewIdemRes constructs a new IdemRes.
func NewIdemRes(uri string, hashedBody []byte) IdemRes {
	return IdemRes{Body: bytes.NewBuffer(nil), URI: uri, Req: hashedBody}
}

// GobDecode unmarshals the gob-encoded []byte into fields of the *IdemRes.
//
// GobDecode implements gob.GobDecoder.
func (i *IdemRes) GobDecode(b []byte) error {
	g := new(idemResGob)
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(g); err != nil {
		return err
	}

	i.Body = bytes.NewBuffer(g.B)
	i.ContentType, i.Req, i.Status, i.URI = g.CT, g.R, g.S, g.U
	return nil
}

// GobEncode marshals the fields of the IdemRes into a gob-encoded []byte.
//
// GobEncode implements gob.GobEncoder.
func (i IdemRes) GobEncode() ([]byte, error) {
	var body []byte
	if i.Body != nil {
		body = i.Body.Bytes()
	}

	buf := bytes.NewBuffer(nil)
	g := idemResGob{body, i.ContentType, i.Req, i.Status, i.URI}
	if err := gob.NewEncoder(buf).Encode(g); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// An idemReqWriter pairs an IdemRes with an http.ResponseWriter
// so both can be written to by an HTTP handler.
// The IdemRes is private to one request until Idempotent publishes it.
type idemReqWriter struct {
	ctx context.Context
	i   *IdemRes
	w   http.ResponseWriter
}

// Header returns the http.Header of the underlying http.ResponseWriter.
func (irw *idemReqWriter) Header() http.Header { return irw.w.Header() }

// Write writes the bytes to all consumers the idemReqWriter is concerned with.
func (irw *idemReqWriter) Write(b []byte) (int, error) {
	select {
	case <-irw.ctx.Done():
		return 0, irw.ctx.Err()
	default:
		if irw.i.Status == 0 {
			irw.WriteHeader(http.StatusOK)
		}

		n, err := irw.w.Write(b)
		if err != nil {
			return n, err
		}

		if _, err = irw.i.Body.Write(b); err != nil {
			return n, err
		}

		return n, nil
	}
}

// WriteHeader copies the status code about to be written to the IdemRes for later reuse
// before actually writing the status code.
func (irw *idemReqWriter) WriteHeader(s int) {
	select {
	case <-irw.ctx.Done():
		return
	default:
		irw.w.WriteHeader(s)
		irw.i.Status = s
		irw.i.ContentType = irw.w.Header().Get("Content-Type")
	}
}
