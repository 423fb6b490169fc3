package authsdk

import (
	"context"
	"net/http"
)

// ExchangeToken trades a stale token for a fresh one. The stale token is the
// bearer credential of the call. The call is not retried.
func (c *SDKClient) ExchangeToken(ctx context.Context, raw string) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, c.apiPath("/tokens/exchange"), nil, bearer(raw))
	if err != nil {
		return "", err
	}

	return readToken(resp)
}

// Logout ends the session of raw at the identity server. With all set every
// session of the user is ended.
func (c *SDKClient) Logout(ctx context.Context, raw string, all bool) error {
	path := "/logout"
	if all {
		path = "/logoutAll"
	}

	resp, err := c.doRequest(ctx, http.MethodGet, c.apiPath(path), nil, bearer(raw))
	if err != nil {
		return err
	}

	_, err = readText(resp)
	return err
}
