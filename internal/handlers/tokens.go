package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/memohai/vidstream/internal/auth"
	"github.com/memohai/vidstream/internal/config"
)

type TokenHandler struct {
	secret  string
	expires time.Duration
	logger  *slog.Logger
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func NewTokenHandler(log *slog.Logger, cfg config.Config) (*TokenHandler, error) {
	expires, err := cfg.Auth.JWTExpiry()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &TokenHandler{
		secret:  cfg.Auth.JWTSecret,
		expires: expires,
		logger:  log.With(slog.String("handler", "token")),
	}, nil
}

func (h *TokenHandler) Register(e *echo.Echo) {
	e.POST("/api/token/refresh", h.Refresh)
}

// Refresh godoc
// @Summary Refresh token
// @Description Re-issue the caller's token with a new expiry
// @Tags auth
// @Produce json
// @Success 200 {object} TokenResponse
// @Failure 401 {object} echo.HTTPError
// @Router /api/token/refresh [post]
func (h *TokenHandler) Refresh(c echo.Context) error {
	token, expiresAt, err := auth.RefreshTokenFromContext(c, h.secret, h.expires)
	if err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}
		h.logger.Error("token refresh failed", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "token refresh failed")
	}
	return c.JSON(http.StatusOK, TokenResponse{AccessToken: token, ExpiresAt: expiresAt})
}
