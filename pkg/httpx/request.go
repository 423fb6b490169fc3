package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/caronte/pkg/credstore"
)

// IsAPI reports whether r comes from a machine caller rather than a
// browser. Such callers get JSON errors instead of redirects and receive
// exchanged tokens in the new_token header.
func IsAPI(r *http.Request) bool {
	if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return credstore.BearerToken(r) != ""
}
