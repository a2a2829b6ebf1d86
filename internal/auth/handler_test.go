package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hamar-padhai/progression/internal/middleware"
	"github.com/hamar-padhai/progression/internal/models"
	"github.com/hamar-padhai/progression/internal/store"
)

func newAuthRouter() (http.Handler, *Tokens) {
	tokens := NewTokens("test-secret", time.Hour)
	h := NewHandler(NewDirectory(store.NewMemoryStore()), tokens, time.Now, zap.NewNop())

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/register", h.Register).Methods("POST")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(tokens))
	protected.HandleFunc("/auth/me", h.GetCurrentUser).Methods("GET")
	protected.HandleFunc("/auth/me/name", h.Rename).Methods("PUT")
	return r, tokens
}

func serve(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, r http.Handler, body string) models.AuthResponse {
	t.Helper()
	rec := serve(r, "POST", "/api/v1/auth/register", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp models.AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestRegisterEndpoint(t *testing.T) {
	r, tokens := newAuthRouter()

	named := register(t, r, `{"name": " Asha Devi "}`)
	assert.Equal(t, "Asha Devi", named.User.Name)
	id, err := tokens.Parse(named.Token)
	require.NoError(t, err)
	assert.Equal(t, named.User.ID, id)

	anon := register(t, r, "")
	assert.True(t, strings.HasPrefix(anon.User.Name, "छात्र_"))

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"name":`},
		{"too long", `{"name": "` + strings.Repeat("a", 65) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(r, "POST", "/api/v1/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCurrentUserAndRename(t *testing.T) {
	r, tokens := newAuthRouter()
	resp := register(t, r, `{"name": "Asha"}`)

	rec := serve(r, "GET", "/api/v1/auth/me", resp.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var me models.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&me))
	assert.Equal(t, resp.User.ID, me.ID)

	rec = serve(r, "PUT", "/api/v1/auth/me/name", resp.Token, `{"name": "Asha Kumari"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&me))
	assert.Equal(t, "Asha Kumari", me.Name)

	rec = serve(r, "PUT", "/api/v1/auth/me/name", resp.Token, `{"name": "   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(r, "GET", "/api/v1/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	ghost, err := tokens.Generate("user_ghost", time.Now())
	require.NoError(t, err)
	rec = serve(r, "GET", "/api/v1/auth/me", ghost, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
