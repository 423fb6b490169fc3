package http

import (
	"net/http"

	"github.com/aussiebroadwan/caronte/pkg/authsdk"
	"github.com/aussiebroadwan/caronte/pkg/credstore"
	"github.com/aussiebroadwan/caronte/pkg/httpx"
	"github.com/aussiebroadwan/caronte/pkg/slogx"
)

// SessionHandler serves login, two-factor login and logout.
type SessionHandler struct {
	Client    IdentityClient
	Validator httpx.TokenValidator
	Store     *credstore.CredentialStore
	Settings  Settings
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	With two-factor login enabled a login link is e-mailed instead.
//	@Description	Machine callers receive the token as the body; browsers get a session cookie and are redirected to the decoded callback_url or the success URL.
//	@Tags			Session
//	@Accept			application/x-www-form-urlencoded,json
//	@Produce		plain
//	@Param			email			formData	string	true	"E-mail address"
//	@Param			password		formData	string	false	"Password"
//	@Param			callback_url	formData	string	false	"Base64 encoded return URL"
//	@Success		200				{string}	string	"Raw token"
//	@Success		302				"Redirect to the callback URL"
//	@Failure		400				{object}	httpx.ErrorBody
//	@Failure		429				{object}	httpx.ErrorBody
//	@Router			/api/login [post].
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if h.Settings.TwoFactor {
		h.HandleTwoFactorRequest(w, r)
		return
	}

	f, err := readFields(r, "email", "password", "callback_url")
	if err != nil {
		reply(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if f["email"] == "" || f["password"] == "" {
		reply(w, r, http.StatusBadRequest, "Email and password are required")
		return
	}

	raw, err := h.Client.Login(r.Context(), f["email"], f["password"])
	if err != nil {
		badRequest(w, r, err)
		return
	}

	h.completeLogin(w, r, raw, f["callback_url"])
}

// HandleTwoFactorRequest godoc
//
//	@Summary		Request a login link
//	@Tags			Session
//	@Accept			application/x-www-form-urlencoded,json
//	@Produce		plain
//	@Param			email			formData	string	true	"E-mail address"
//	@Param			callback_url	formData	string	false	"Base64 encoded return URL"
//	@Success		200				{string}	string	"Confirmation message"
//	@Failure		400				{object}	httpx.ErrorBody
//	@Router			/api/2fa [post].
func (h *SessionHandler) HandleTwoFactorRequest(w http.ResponseWriter, r *http.Request) {
	f, err := readFields(r, "email", "callback_url")
	if err != nil {
		reply(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if f["email"] == "" {
		reply(w, r, http.StatusBadRequest, "Email is required")
		return
	}

	msg, err := h.Client.RequestTwoFactor(r.Context(), authsdk.TwoFactorRequest{
		ApplicationURL: h.Settings.AppURL,
		CallbackURL:    f["callback_url"],
		Email:          f["email"],
	})
	if err != nil {
		badRequest(w, r, err)
		return
	}

	if httpx.IsAPI(r) {
		httpx.WriteText(w, http.StatusOK, "Authentication email sent to "+f["email"])
		return
	}
	httpx.WriteText(w, http.StatusOK, msg)
}

// HandleTwoFactorLogin godoc
//
//	@Summary		Complete a login link
//	@Tags			Session
//	@Produce		plain
//	@Param			token			path		string	true	"Login link token"
//	@Param			callback_url	query		string	false	"Base64 encoded return URL"
//	@Success		200				{string}	string	"Raw token"
//	@Success		302				"Redirect to the callback URL"
//	@Failure		400				{object}	httpx.ErrorBody
//	@Router			/api/2fa/{token} [get].
func (h *SessionHandler) HandleTwoFactorLogin(w http.ResponseWriter, r *http.Request) {
	raw, err := h.Client.TwoFactorLogin(r.Context(), r.PathValue("token"))
	if err != nil {
		badRequest(w, r, err)
		return
	}

	h.completeLogin(w, r, raw, r.URL.Query().Get("callback_url"))
}

// completeLogin validates a freshly issued token before handing it out.
func (h *SessionHandler) completeLogin(w http.ResponseWriter, r *http.Request, raw, callback string) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	res, err := h.Validator.Validate(ctx, raw)
	if err != nil {
		log.Warn("identity server issued an unusable token", "err", err)
		reply(w, r, http.StatusBadRequest, "Invalid token received")
		return
	}

	if httpx.IsAPI(r) {
		httpx.WriteText(w, http.StatusOK, res.Raw)
		return
	}

	if _, err := h.Store.Save(w, r, res.Raw); err != nil {
		log.Error("failed to save session", "err", err)
		reply(w, r, http.StatusInternalServerError, "Could not start session")
		return
	}

	log.Info("user logged in", "uri_user", res.User.URIUser)
	http.Redirect(w, r, httpx.CallbackURL(callback, h.Settings.SuccessURL, h.Settings.AppURL), http.StatusFound)
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Ends the session at the identity server (every session with ?all) and always clears the local one.
//	@Tags			Session
//	@Produce		plain
//	@Param			all	query		string	false	"End every session of the user"
//	@Success		200	{string}	string	"Logout complete"
//	@Success		302	"Redirect to the login page"
//	@Security		BearerAuth
//	@Router			/api/logout [get].
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	raw, err := h.Store.Load(r)
	if err != nil {
		log.Error("failed to load session", "err", err)
	}

	if raw != "" {
		all := r.URL.Query().Has("all")
		if err := h.Client.Logout(ctx, raw, all); err != nil {
			log.Warn("remote logout failed", "err", err)
		}
	}

	if err := h.Store.Clear(w, r); err != nil {
		log.Error("failed to clear session", "err", err)
	}

	if httpx.IsAPI(r) {
		httpx.WriteText(w, http.StatusOK, "Logout complete")
		return
	}
	http.Redirect(w, r, h.Settings.LoginURL, http.StatusFound)
}
