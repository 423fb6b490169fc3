package http

import (
	"net/http"

	"github.com/aussiebroadwan/caronte/internal/service"
	"github.com/aussiebroadwan/caronte/pkg/caronte"
	"github.com/aussiebroadwan/caronte/pkg/httpx"
	"github.com/aussiebroadwan/caronte/pkg/jwtx"
)

// UserProfile is the public view of another user.
type UserProfile struct {
	URIUser string `json:"uri_user"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

type UserHandler struct {
	Users UserDirectory
}

// HandleToken godoc
//
//	@Summary		Current token
//	@Description	Returns the caller's raw token, exchanged first when it was stale.
//	@Tags			Users
//	@Produce		plain
//	@Success		200	{string}	string	"Raw token"
//	@Failure		401	{object}	httpx.ErrorBody
//	@Security		BearerAuth
//	@Router			/get-token [get].
func (h *UserHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	res, ok := caronte.ResultFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Token not provided")
		return
	}
	httpx.WriteText(w, http.StatusOK, res.Raw)
}

// HandleSelf godoc
//
//	@Summary		Current user
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	jwtx.UserPayload
//	@Failure		401	{object}	httpx.ErrorBody
//	@Failure		403	{object}	httpx.ErrorBody
//	@Security		BearerAuth
//	@Router			/api/user [get].
func (h *UserHandler) HandleSelf(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, httpx.UserFromRequest(r))
}

// HandleUser godoc
//
//	@Summary		User profile
//	@Description	Users may read their own profile; the admin role may read any profile known locally.
//	@Tags			Users
//	@Produce		json
//	@Param			uri_user	path		string	true	"User URI"
//	@Success		200			{object}	UserProfile
//	@Failure		401			{object}	httpx.ErrorBody
//	@Failure		403			{object}	httpx.ErrorBody
//	@Failure		404			{object}	httpx.ErrorBody
//	@Security		BearerAuth
//	@Router			/api/user/{uri_user} [get].
func (h *UserHandler) HandleUser(w http.ResponseWriter, r *http.Request) {
	target := r.PathValue("uri_user")

	if self := httpx.UserFromRequest(r); self != nil && self.URIUser == target {
		httpx.WriteJSON(w, http.StatusOK, profileOf(self))
		return
	}

	if h.Users == nil {
		httpx.WriteError(w, http.StatusNotFound, service.UserNotFound)
		return
	}

	name := h.Users.UserName(r.Context(), target)
	if name == service.UserNotFound {
		httpx.WriteError(w, http.StatusNotFound, service.UserNotFound)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, UserProfile{
		URIUser: target,
		Name:    name,
		Email:   h.Users.UserEmail(r.Context(), target),
	})
}

func profileOf(u *jwtx.UserPayload) UserProfile {
	return UserProfile{URIUser: u.URIUser, Name: u.Name, Email: u.Email}
}
