package httpx

import "net/http"

// NoHistory marks the request as an XHR and keeps the response out of the
// browser history and caches, so pages behind a session are not shown again
// with the back button after logout.
func NoHistory() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Header.Set("X-Requested-With", "XMLHttpRequest")
			w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")
			next.ServeHTTP(w, r)
		})
	}
}
