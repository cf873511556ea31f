package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"TaskFlow/internal/auth"
	"TaskFlow/internal/config"
)

func TestRBACPolicy(t *testing.T) {
	enf, err := NewEnforcer()
	require.NoError(t, err)

	tests := []struct {
		role, path, method string
		allowed            bool
	}{
		{auth.RoleMember, "/api/projects", http.MethodGet, true},
		{auth.RoleMember, "/api/projects/123/tasks", http.MethodGet, true},
		{auth.RoleMember, "/api/auth/me", http.MethodPut, true},
		{auth.RoleMember, "/api/tasks", http.MethodPost, true},
		{auth.RoleMember, "/api/tasks/123/status", http.MethodPatch, true},
		{auth.RoleMember, "/api/tasks/123", http.MethodDelete, false},
		{auth.RoleMember, "/api/comments/123", http.MethodDelete, true},
		{auth.RoleMember, "/api/notifications/read-all", http.MethodPatch, true},
		{auth.RoleMember, "/api/projects", http.MethodPost, false},
		{auth.RoleMember, "/api/reports/generate", http.MethodPost, false},
		{auth.RoleMember, "/api/users", http.MethodPost, false},

		{auth.RoleManager, "/api/tasks/123", http.MethodDelete, true},
		{auth.RoleManager, "/api/projects/123", http.MethodPut, true},
		{auth.RoleManager, "/api/meetings", http.MethodPost, true},
		{auth.RoleManager, "/api/reports/generate", http.MethodPost, true},
		{auth.RoleManager, "/api/comments", http.MethodPost, true},
		{auth.RoleManager, "/api/users/123", http.MethodDelete, false},
		{auth.RoleManager, "/api/admin/reminders/run", http.MethodPost, false},

		{auth.RoleAdmin, "/api/users/123", http.MethodDelete, true},
		{auth.RoleAdmin, "/api/admin/reminders/run", http.MethodPost, true},

		{"guest", "/api/projects", http.MethodGet, false},
	}
	for _, tt := range tests {
		t.Run(tt.role+" "+tt.method+" "+tt.path, func(t *testing.T) {
			ok, err := enf.Enforce(tt.role, tt.path, tt.method)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, ok)
		})
	}
}

func newTokens() *auth.TokenManager {
	return auth.NewTokenManager(&config.AppConfig{JWT: config.JWTConfig{Key: []byte("test-secret"), TTL: time.Hour}})
}

func serve(t *testing.T, e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthChain(t *testing.T) {
	enf, err := NewEnforcer()
	require.NoError(t, err)
	tokens := newTokens()

	e := echo.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(zap.NewNop(), nil)
	api := e.Group("/api", JWTMiddleware(tokens), CasbinMiddleware(enf, zap.NewNop()))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	api.GET("/projects", ok)
	api.POST("/projects", ok)

	member, err := tokens.GenerateJWT(&auth.User{ID: primitive.NewObjectID(), Name: "M", Role: auth.RoleMember})
	require.NoError(t, err)
	manager, err := tokens.GenerateJWT(&auth.User{ID: primitive.NewObjectID(), Name: "P", Role: auth.RoleManager})
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, serve(t, e, http.MethodGet, "/api/projects", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(t, e, http.MethodGet, "/api/projects", "garbage").Code)
	assert.Equal(t, http.StatusNoContent, serve(t, e, http.MethodGet, "/api/projects", member).Code)

	rec := serve(t, e, http.MethodPost, "/api/projects", member)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Forbidden: insufficient permissions"}`, rec.Body.String())

	assert.Equal(t, http.StatusNoContent, serve(t, e, http.MethodPost, "/api/projects", manager).Code)
}
