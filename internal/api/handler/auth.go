package handler

import (
	"errors"
	"net/http"

	mw "github.com/edvin/s3gate/internal/api/middleware"
	"github.com/edvin/s3gate/internal/api/request"
	"github.com/edvin/s3gate/internal/api/response"
	"github.com/edvin/s3gate/internal/core"
)

type Auth struct {
	users        *core.UserService
	sessions     *core.SessionService
	cookieSecure bool
}

func NewAuth(users *core.UserService, sessions *core.SessionService, cookieSecure bool) *Auth {
	return &Auth{users: users, sessions: sessions, cookieSecure: cookieSecure}
}

// Signup godoc
//
//	@Summary		Create an account
//	@Description	Registers a new user with an email and password.
//	@Tags			Auth
//	@Param			body	body		request.Signup	true	"Account details"
//	@Success		201		{object}	model.User
//	@Failure		400		{object}	response.ErrorResponse
//	@Router			/auth/signup [post]
func (h *Auth) Signup(w http.ResponseWriter, r *http.Request) {
	var req request.Signup
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.Create(r.Context(), req.Email, req.Password)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, user)
}

// Login godoc
//
//	@Summary		Sign in
//	@Description	Exchanges an email/password pair for a session token. The token is also set as a cookie for browser clients.
//	@Tags			Auth
//	@Param			body	body		request.Login	true	"Credentials"
//	@Success		200		{object}	map[string]string
//	@Failure		401		{object}	response.ErrorResponse
//	@Router			/auth/login [post]
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req request.Login
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			response.WriteError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		response.WriteServiceError(w, r, err)
		return
	}

	sess, token, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     mw.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	response.WriteJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_at": sess.ExpiresAt,
	})
}

// Logout godoc
//
//	@Summary	Sign out
//	@Tags		Auth
//	@Success	204
//	@Router		/auth/logout [post]
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if token := mw.ExtractToken(r); token != "" {
		if err := h.sessions.Revoke(r.Context(), token); err != nil {
			response.WriteServiceError(w, r, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     mw.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	w.WriteHeader(http.StatusNoContent)
}

// Me godoc
//
//	@Summary	Current user
//	@Tags		Auth
//	@Success	200	{object}	model.User
//	@Failure	401	{object}	response.ErrorResponse
//	@Router		/api/v1/me [get]
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	identity := mw.GetIdentity(r.Context())

	user, err := h.users.GetByID(r.Context(), identity.UserID)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, user)
}
