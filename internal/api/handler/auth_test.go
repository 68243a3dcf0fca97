package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	mw "github.com/edvin/s3gate/internal/api/middleware"
	"github.com/edvin/s3gate/internal/core"
)

// Validation paths return before any service is touched, so these handlers
// run with nil services.

func TestSignup_InvalidBody(t *testing.T) {
	h := NewAuth(nil, nil, false)

	tests := []struct {
		name string
		body string
	}{
		{name: "broken JSON", body: `{"email":`},
		{name: "missing password", body: `{"email":"a@example.com"}`},
		{name: "not an email", body: `{"email":"not-an-email","password":"longenough"}`},
		{name: "short password", body: `{"email":"a@example.com","password":"short"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.Signup(w, newRequest(t, http.MethodPost, "/auth/signup", tc.body))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, decodeError(t, w).Error)
		})
	}
}

func TestLogin_InvalidBody(t *testing.T) {
	h := NewAuth(nil, nil, false)

	w := httptest.NewRecorder()
	h.Login(w, newRequest(t, http.MethodPost, "/auth/login", `{"email":"a@example.com"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_BadCredentials(t *testing.T) {
	users := core.NewUserService(emptyDB{})
	h := NewAuth(users, nil, false)

	w := httptest.NewRecorder()
	h.Login(w, newRequest(t, http.MethodPost, "/auth/login",
		`{"email":"nobody@example.com","password":"whatever1"}`))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid email or password", decodeError(t, w).Error)
	// No session cookie on failure.
	assert.Empty(t, w.Result().Cookies())
}

func TestLogout_ClearsCookie(t *testing.T) {
	h := NewAuth(nil, nil, false)

	w := httptest.NewRecorder()
	// No token attached, so there is nothing to revoke.
	h.Logout(w, newRequest(t, http.MethodPost, "/api/v1/auth/logout", ""))

	assert.Equal(t, http.StatusNoContent, w.Code)

	cookies := w.Result().Cookies()
	if assert.Len(t, cookies, 1) {
		c := cookies[0]
		assert.Equal(t, mw.SessionCookieName, c.Name)
		assert.Empty(t, c.Value)
		assert.Negative(t, c.MaxAge)
		assert.True(t, c.HttpOnly)
	}
}
