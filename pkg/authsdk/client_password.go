package authsdk

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
)

// RequestPasswordRecovery asks the identity server to e-mail a recovery link.
func (c *SDKClient) RequestPasswordRecovery(ctx context.Context, req PasswordRecoveryRequest) (string, error) {
	if req.AppID == "" {
		req.AppID = c.AppID
	}

	resp, err := c.doJSON(ctx, http.MethodPost, c.apiPath("/password/recover"), req, nil)
	if err != nil {
		return "", err
	}

	return readText(resp)
}

// ValidateRecoveryToken checks that a recovery token is still usable.
func (c *SDKClient) ValidateRecoveryToken(ctx context.Context, token string) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, c.apiPath("/password/recover/"+pathEscape(token)), nil, nil)
	if err != nil {
		return "", err
	}

	return readText(resp)
}

// RecoverPassword sets a new password using a recovery token.
func (c *SDKClient) RecoverPassword(ctx context.Context, token string, req RecoverPasswordRequest) (string, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, c.apiPath("/password/recover/"+pathEscape(token)), req, nil)
	if err != nil {
		return "", err
	}

	return readText(resp)
}

// PasswordRecoverURL returns the link to the identity server's hosted
// recovery page. Both parameters are base64 encoded in the query.
func (c *SDKClient) PasswordRecoverURL(callbackURL, appName string) string {
	q := url.Values{
		"callback_url": {base64.StdEncoding.EncodeToString([]byte(callbackURL))},
		"application":  {base64.StdEncoding.EncodeToString([]byte(appName))},
	}
	return c.url("/password/recover?" + q.Encode())
}
