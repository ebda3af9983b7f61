package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"collabstudy/identity"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubVerifier struct {
	claims *identity.Claims
	err    error
}

func (s *stubVerifier) Verify(_ context.Context, _ string) (*identity.Claims, error) {
	return s.claims, s.err
}

func TestAuthenticateMissingHeaderIs401(t *testing.T) {
	auth := NewAuth(&stubVerifier{}, zap.NewNop())
	called := false
	handler := auth.Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called = true
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/sessions", nil), nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestAuthenticateMalformedHeaderIs401(t *testing.T) {
	auth := NewAuth(&stubVerifier{}, zap.NewNop())
	handler := auth.Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		t.Fatal("handler must not run")
	})

	for _, header := range []string{"Token abc", "Bearer", "Bearer ", "bearer abc"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
		req.Header.Set("Authorization", header)
		handler(rec, req, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header=%q", header)
	}
}

func TestAuthenticateRejectedTokenIs403(t *testing.T) {
	auth := NewAuth(&stubVerifier{err: errors.New("expired")}, zap.NewNop())
	handler := auth.Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		t.Fatal("handler must not run")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	req.Header.Set("Authorization", "Bearer well-formed-but-bad")
	handler(rec, req, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthenticateAttachesClaims(t *testing.T) {
	want := &identity.Claims{Email: "s@example.com", Name: "Sam"}
	auth := NewAuth(&stubVerifier{claims: want}, zap.NewNop())

	var got *identity.Claims
	handler := auth.Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		got, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	req.Header.Set("Authorization", "Bearer good")
	handler(rec, req, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, want, got)
}
