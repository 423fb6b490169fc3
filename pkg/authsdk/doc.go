/*
Package authsdk provides a client SDK for the Caronte identity server.

# Overview

SDKClient wraps the HTTP API an application uses to sign users in, refresh
their tokens and declare itself to the identity server. Every endpoint
lives under {BaseURL}/api/{Version}:

	client := authsdk.NewSDKClient("https://caronte.example.com",
		authsdk.WithVersion("v2"),
		authsdk.WithApplication(appID, appSecret),
	)

	raw, err := client.Login(ctx, email, password)

# Tokens

Login and TwoFactorLogin return the raw token issued by the server. The
client does not verify it; hand it to a caronte.Validator. ExchangeToken
trades a stale token for a fresh one and is what the validator calls when
a trusted token has expired:

	fresh, err := client.ExchangeToken(ctx, stale)

Logout ends one session, or all of them:

	err := client.Logout(ctx, raw, true)

# Client Configuration

NotifyClientConfiguration declares the roles the application understands.
It authenticates with the application credentials instead of a user token:

	_, err := client.NotifyClientConfiguration(ctx, authsdk.ClientConfiguration{
		ApplicationURL: "https://app.example.com",
		Roles: []authsdk.RoleDefinition{
			{Name: "editor", Description: "Can edit documents"},
		},
	})

# Error Handling

Every non-2xx answer is returned as *APIError carrying the status code and
the server's message. Transport errors and timeouts are returned wrapped.
The client applies DefaultTimeout to every call and never retries.

	if authsdk.IsStatus(err, http.StatusUnauthorized) {
		// credentials rejected
	}
*/
package authsdk
