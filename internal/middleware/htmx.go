package middleware

import (
	"net/http"
)

// HTMXRequest holds the htmx request headers relevant to rendering.
type HTMXRequest struct {
	Request        bool
	Boosted        bool
	HistoryRestore bool
	Target         string
	CurrentURL     string
}

// Fragment reports whether the client expects the mount fragment rather
// than the full document. History restores need the whole page.
func (h HTMXRequest) Fragment() bool {
	return h.Request && !h.HistoryRestore
}

// HTMX marks requests coming from htmx so handlers/middlewares can adapt responses
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := HTMXRequest{
			Request:        r.Header.Get("HX-Request") == "true",
			Boosted:        r.Header.Get("HX-Boosted") == "true",
			HistoryRestore: r.Header.Get("HX-History-Restore-Request") == "true",
			Target:         r.Header.Get("HX-Target"),
			CurrentURL:     r.Header.Get("HX-Current-URL"),
		}
		// Fragment and full-page responses share URLs.
		w.Header().Add("Vary", "HX-Request")
		w.Header().Add("Vary", "HX-History-Restore-Request")
		next.ServeHTTP(w, r.WithContext(WithHTMX(r.Context(), h)))
	})
}
