/*
Package caronte validates Caronte tokens on the client side and answers
authorization questions about the users they carry.

A Validator runs every raw token through the same pipeline:

 1. jwtx.Decode checks the structure (three segments, a "user" claim).
 2. The configured jwtx.Verifier checks the HS256 signature and, when
    enforced, the issuer.
 3. jwtx.IsFresh checks the [nbf, exp] window.
 4. A stale but trusted token is exchanged once through the Exchanger and
    the replacement goes through steps 1 to 3 again.

	validator := caronte.NewValidator(caronte.ValidatorConfig{
		Verifier:  jwtx.NewVerifierHS256(secret, jwtx.VerifyOptions{}),
		Exchanger: authsdk.NewSDKClient(baseURL),
	})

	res, err := validator.Validate(ctx, raw)
	if err != nil {
		// errors.Is(err, caronte.ErrExchangeFailed) means the stored
		// credential is dead and should be cleared.
		return err
	}
	if res.Exchanged {
		// persist res.Raw
	}

A PermissionEvaluator then decides whether the user may use the
application and whether they hold a role:

	perms := caronte.NewPermissionEvaluator(appID)
	ok, err := perms.HasRoles(res.User, []string{"editor,admin"}, "")

Exchanges of the same token are coalesced inside one process. Two processes
holding the same stale token may both exchange it; the identity server
accepts that.
*/
package caronte
