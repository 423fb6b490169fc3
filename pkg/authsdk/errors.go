package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// maxMessageLen caps how much of a plain-text error body ends up in an
// APIError.
const maxMessageLen = 512

// ============================================================================
// APIError - identity server error responses
// ============================================================================

// APIError is a non-2xx answer from the identity server.
type APIError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int `json:"-"`

	// Code is the machine readable error, when the server sent one
	Code string `json:"error,omitempty"`

	// Message is a human-readable description of the error
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("caronte: HTTP %d: %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("caronte: HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns a response into a typed error.
// It understands {"error","message"} and {"error","error_description"}
// bodies, falls back to a plain-text body and finally to the status text.
// Returns nil if the response indicates success (2xx status code).
func parseErrorResponse(resp *http.Response, body []byte) error {
	// Success responses
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		apiErr.Code = errResp.Error
		switch {
		case errResp.Message != "":
			apiErr.Message = errResp.Message
		case errResp.ErrorDescription != "":
			apiErr.Message = errResp.ErrorDescription
		}
		if apiErr.Code != "" || apiErr.Message != "" {
			if apiErr.Message == "" {
				apiErr.Message = http.StatusText(resp.StatusCode)
			}
			return apiErr
		}
	}

	// Plain-text body
	if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "<") {
		apiErr.Message = truncateMessage(text)
		return apiErr
	}

	// Fallback: create generic error from status code
	apiErr.Message = http.StatusText(resp.StatusCode)
	return apiErr
}

// truncateMessage cuts text to at most maxMessageLen bytes on a rune
// boundary.
func truncateMessage(text string) string {
	if len(text) <= maxMessageLen {
		return text
	}
	cut := maxMessageLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
