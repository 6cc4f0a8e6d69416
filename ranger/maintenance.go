package ranger

import (
	"net/http"

	"github.com/xy-planning-network/trailhead/http/resp"
)

const (
	maintenanceTmpl = "tmpl/maintenance.tmpl"
	retryAfter      = "600"
)

// MaintModeHandler responds to every request with 503 and the maintenance page.
//
// If the page cannot render, the 503 goes out with no body.
func MaintModeHandler(rp *resp.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", retryAfter)

		sw := &statusOnce{ResponseWriter: w}
		if err := rp.Html(sw, r, resp.Code(http.StatusServiceUnavailable), resp.Tmpls(maintenanceTmpl)); err != nil && !sw.wrote {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}
}

// statusOnce tracks whether a status has been written,
// forcing every status to 503.
type statusOnce struct {
	http.ResponseWriter
	wrote bool
}

func (sw *statusOnce) WriteHeader(int) {
	if sw.wrote {
		return
	}

	sw.wrote = true
	sw.ResponseWriter.WriteHeader(http.StatusServiceUnavailable)
}

func (sw *statusOnce) Write(b []byte) (int, error) {
	if !sw.wrote {
		sw.WriteHeader(http.StatusServiceUnavailable)
	}

	return sw.ResponseWriter.Write(b)
}
