package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klass-lk/blogapi"
	"github.com/klass-lk/blogapi/internal/permission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(tokens *blogapi.TokenService, handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authentication(tokens))
	handlers = append(handlers, func(c *gin.Context) {
		identity := blogapi.IdentityOf(c)
		c.JSON(http.StatusOK, gin.H{"user_id": identity.UserID, "admin": identity.IsAdmin()})
	})
	r.GET("/whoami", handlers...)
	r.POST("/whoami", handlers...)
	return r
}

func do(r http.Handler, method, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthentication(t *testing.T) {
	tokens := blogapi.NewTokenService("secret", "refresh", time.Hour, time.Hour, "test")
	pair, err := tokens.GenerateTokens("u1", "alice", blogapi.RoleAdmin)
	require.NoError(t, err)

	r := newRouter(tokens)

	w := do(r, http.MethodGet, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"","admin":false}`, w.Body.String())

	w = do(r, http.MethodGet, "Bearer "+pair.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"u1","admin":true}`, w.Body.String())

	w = do(r, http.MethodGet, "Bearer "+pair.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "Basic dXNlcjpwYXNz")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "TOKEN_NOT_VALID", body["error_code"])
}

func TestRequire(t *testing.T) {
	tokens := blogapi.NewTokenService("secret", "refresh", time.Hour, time.Hour, "test")
	user, err := tokens.GenerateTokens("u1", "alice", blogapi.RoleUser)
	require.NoError(t, err)
	admin, err := tokens.GenerateTokens("u2", "root", blogapi.RoleAdmin)
	require.NoError(t, err)

	readOnly := newRouter(tokens, Require(permission.IsAuthenticatedOrReadOnly))
	assert.Equal(t, http.StatusOK, do(readOnly, http.MethodGet, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(readOnly, http.MethodPost, "").Code)
	assert.Equal(t, http.StatusOK, do(readOnly, http.MethodPost, "Bearer "+user.AccessToken).Code)

	adminOnly := newRouter(tokens, Require(permission.IsAdmin))
	assert.Equal(t, http.StatusUnauthorized, do(adminOnly, http.MethodGet, "").Code)
	assert.Equal(t, http.StatusForbidden, do(adminOnly, http.MethodGet, "Bearer "+user.AccessToken).Code)
	assert.Equal(t, http.StatusOK, do(adminOnly, http.MethodGet, "Bearer "+admin.AccessToken).Code)
}
