package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// url builds a complete URL by appending the path to the base URL.
func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

// apiPath prefixes path with the versioned API root.
func (c *SDKClient) apiPath(path string) string {
	return "/api/" + c.Version + path
}

// doRequest performs an HTTP request with the SDKClient's HTTP client.
func (c *SDKClient) doRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set custom headers
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}

// doJSON sends payload as a JSON body.
func (c *SDKClient) doJSON(
	ctx context.Context,
	method, path string,
	payload any,
	headers map[string]string,
) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	h := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	for k, v := range headers {
		h[k] = v
	}

	return c.doRequest(ctx, method, path, bytes.NewReader(body), h)
}

// bearer returns the Authorization header for a raw token.
func bearer(raw string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + raw}
}

// readText returns the trimmed body of a 2xx response, or a typed error.
func readText(resp *http.Response) (string, error) {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if err := parseErrorResponse(resp, bodyBytes); err != nil {
		return "", err
	}

	return strings.TrimSpace(string(bodyBytes)), nil
}

// readToken is readText for endpoints answering with a raw token. Some
// server versions quote it as a JSON string.
func readToken(resp *http.Response) (string, error) {
	text, err := readText(resp)
	if err != nil {
		return "", err
	}

	if strings.HasPrefix(text, `"`) {
		var unquoted string
		if err := json.Unmarshal([]byte(text), &unquoted); err == nil {
			text = strings.TrimSpace(unquoted)
		}
	}

	if text == "" {
		return "", fmt.Errorf("empty token in response")
	}
	return text, nil
}

// pathEscape escapes a single path segment.
func pathEscape(s string) string {
	return url.PathEscape(s)
}
