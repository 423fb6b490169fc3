package authsdk

import (
	"context"
	"net/http"
)

// Login authenticates a user with email and password and returns the raw
// token issued for this application.
func (c *SDKClient) Login(ctx context.Context, email, password string) (string, error) {
	req := LoginRequest{
		Email:    email,
		Password: password,
		AppID:    c.AppID,
	}

	resp, err := c.doJSON(ctx, http.MethodPost, c.apiPath("/login"), req, nil)
	if err != nil {
		return "", err
	}

	return readToken(resp)
}

// RequestTwoFactor asks the identity server to e-mail a login link and
// returns the server's message.
func (c *SDKClient) RequestTwoFactor(ctx context.Context, req TwoFactorRequest) (string, error) {
	if req.AppID == "" {
		req.AppID = c.AppID
	}

	resp, err := c.doJSON(ctx, http.MethodPost, c.apiPath("/2fa"), req, nil)
	if err != nil {
		return "", err
	}

	return readText(resp)
}

// TwoFactorLogin redeems the token from a two-factor login link.
func (c *SDKClient) TwoFactorLogin(ctx context.Context, token string) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, c.apiPath("/2fa/"+pathEscape(token)), nil, nil)
	if err != nil {
		return "", err
	}

	return readToken(resp)
}
