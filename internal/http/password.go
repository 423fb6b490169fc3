package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/caronte/pkg/authsdk"
	"github.com/aussiebroadwan/caronte/pkg/httpx"
)

// PasswordHandler relays password recovery to the identity server.
type PasswordHandler struct {
	Client   IdentityClient
	Settings Settings
}

// HandleHosted godoc
//
//	@Summary		Hosted password recovery page
//	@Description	Redirects to the identity server's recovery page, which sends the user back to callback_url when done.
//	@Tags			Password
//	@Param			callback_url	query	string	false	"Base64 encoded return URL"
//	@Success		302
//	@Router			/password/recover [get].
func (h *PasswordHandler) HandleHosted(w http.ResponseWriter, r *http.Request) {
	callback := httpx.CallbackURL(r.URL.Query().Get("callback_url"), h.Settings.LoginURL, h.Settings.AppURL)
	if strings.HasPrefix(callback, "/") {
		callback = strings.TrimSuffix(h.Settings.AppURL, "/") + callback
	}
	http.Redirect(w, r, h.Client.PasswordRecoverURL(callback, h.Settings.AppName), http.StatusFound)
}

// HandleRequest godoc
//
//	@Summary		Request a password recovery e-mail
//	@Tags			Password
//	@Accept			application/x-www-form-urlencoded,json
//	@Produce		plain
//	@Param			email	formData	string	true	"E-mail address"
//	@Success		200		{string}	string	"Server message"
//	@Failure		400		{object}	httpx.ErrorBody
//	@Router			/password/recover [post].
func (h *PasswordHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	f, err := readFields(r, "email")
	if err != nil || f["email"] == "" {
		reply(w, r, http.StatusBadRequest, "Email is required")
		return
	}

	msg, err := h.Client.RequestPasswordRecovery(r.Context(), authsdk.PasswordRecoveryRequest{
		Email:          f["email"],
		ApplicationURL: h.Settings.AppURL,
	})
	if err != nil {
		badRequest(w, r, err)
		return
	}
	httpx.WriteText(w, http.StatusOK, msg)
}

// HandleValidate godoc
//
//	@Summary		Check a password recovery token
//	@Tags			Password
//	@Produce		plain
//	@Param			token	path		string	true	"Recovery token"
//	@Success		200		{string}	string	"Server message"
//	@Failure		400		{object}	httpx.ErrorBody
//	@Router			/password/recover/{token} [get].
func (h *PasswordHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	msg, err := h.Client.ValidateRecoveryToken(r.Context(), r.PathValue("token"))
	if err != nil {
		badRequest(w, r, err)
		return
	}
	httpx.WriteText(w, http.StatusOK, msg)
}

// HandleRecover godoc
//
//	@Summary		Set a new password
//	@Tags			Password
//	@Accept			application/x-www-form-urlencoded,json
//	@Produce		plain
//	@Param			token					path		string	true	"Recovery token"
//	@Param			password				formData	string	true	"New password"
//	@Param			password_confirmation	formData	string	true	"New password again"
//	@Success		200						{string}	string	"Server message"
//	@Failure		400						{object}	httpx.ErrorBody
//	@Router			/password/recover/{token} [post].
func (h *PasswordHandler) HandleRecover(w http.ResponseWriter, r *http.Request) {
	f, err := readFields(r, "password", "password_confirmation")
	if err != nil {
		reply(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if f["password"] == "" || f["password"] != f["password_confirmation"] {
		reply(w, r, http.StatusBadRequest, "Passwords do not match")
		return
	}

	msg, err := h.Client.RecoverPassword(r.Context(), r.PathValue("token"), authsdk.RecoverPasswordRequest{
		Password:             f["password"],
		PasswordConfirmation: f["password_confirmation"],
	})
	if err != nil {
		badRequest(w, r, err)
		return
	}
	httpx.WriteText(w, http.StatusOK, msg)
}
