package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memohai/vidstream/internal/auth"
	"github.com/memohai/vidstream/internal/config"
)

func TestTokenRefresh(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Auth.JWTSecret = testSecret
	h, err := NewTokenHandler(nil, cfg)
	require.NoError(t, err)

	e := echo.New()
	e.Use(auth.JWTMiddleware(testSecret, func(c echo.Context) bool {
		return !strings.HasPrefix(c.Request().URL.Path, "/api/")
	}))
	h.Register(e)

	rec := doJSON(e, http.MethodPost, "/api/token/refresh", adminToken(t), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	parsed, err := jwt.Parse(got.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "admin-1", claims["sub"])
	assert.Equal(t, auth.RoleAdmin, claims["role"])

	rec = doJSON(e, http.MethodPost, "/api/token/refresh", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNewTokenHandlerRejectsBadExpiry(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Auth.JWTExpiresIn = "soon"
	_, err := NewTokenHandler(nil, cfg)
	assert.Error(t, err)
}
