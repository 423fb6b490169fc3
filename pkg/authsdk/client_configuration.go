package authsdk

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/http"
)

// ErrMissingCredentials is returned by calls that need AppID and AppSecret
// when either is empty.
var ErrMissingCredentials = errors.New("authsdk: application id and secret are required")

// NotifyClientConfiguration declares this application's URL and roles to
// the identity server and returns the server's answer.
func (c *SDKClient) NotifyClientConfiguration(ctx context.Context, cfg ClientConfiguration) (string, error) {
	if c.AppID == "" || c.AppSecret == "" {
		return "", ErrMissingCredentials
	}
	if cfg.Roles == nil {
		cfg.Roles = []RoleDefinition{}
	}

	headers := map[string]string{
		"Authorization": "Basic " + c.serviceCredential(),
	}

	path := "/api/A3/" + c.Version + "/client-configuration"
	resp, err := c.doJSON(ctx, http.MethodPost, path, cfg, headers)
	if err != nil {
		return "", err
	}

	return readText(resp)
}

// serviceCredential is base64(sha1hex(app_id) + ":" + app_secret).
func (c *SDKClient) serviceCredential() string {
	sum := sha1.Sum([]byte(c.AppID))
	return base64.StdEncoding.EncodeToString([]byte(hex.EncodeToString(sum[:]) + ":" + c.AppSecret))
}
