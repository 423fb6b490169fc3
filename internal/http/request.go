package http

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/aussiebroadwan/caronte/pkg/authsdk"
	"github.com/aussiebroadwan/caronte/pkg/httpx"
	"github.com/aussiebroadwan/caronte/pkg/slogx"
)

const maxBodyBytes = 1 << 20

// readFields returns the named fields from a JSON object body or from form
// values. Missing fields are empty.
func readFields(r *http.Request, names ...string) (map[string]string, error) {
	out := make(map[string]string, len(names))

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/json" {
		var body map[string]any
		if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes)).Decode(&body); err != nil {
			return nil, err
		}
		for _, n := range names {
			if v, ok := body[n].(string); ok {
				out[n] = v
			}
		}
		// Query parameters such as callback_url still apply.
		for _, n := range names {
			if out[n] == "" {
				out[n] = r.URL.Query().Get(n)
			}
		}
		return out, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	for _, n := range names {
		out[n] = r.FormValue(n)
	}
	return out, nil
}

// badRequest answers a failed identity server call. The server's message is
// passed through when it sent one.
func badRequest(w http.ResponseWriter, r *http.Request, err error) {
	msg := "Identity server request failed"
	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		msg = apiErr.Message
	}
	slogx.FromContext(r.Context()).Warn("identity server call failed", "err", err)
	reply(w, r, http.StatusBadRequest, msg)
}

// reply writes msg as a JSON error for machine callers and as text for
// browsers.
func reply(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if status >= http.StatusBadRequest && httpx.IsAPI(r) {
		httpx.WriteError(w, status, msg)
		return
	}
	httpx.WriteText(w, status, msg)
}
