package handlers

import (
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"

	"github.com/memohai/vidstream/internal/telegram"
)

// UpdateDispatcher accepts Telegram updates delivered over HTTP.
type UpdateDispatcher interface {
	UsesWebhook() bool
	CheckWebhookSecret(secret string) bool
	Dispatch(update tgbotapi.Update)
}

type TelegramWebhookHandler struct {
	bot    UpdateDispatcher
	logger *slog.Logger
}

// NewTelegramWebhookHandler accepts a nil bot when Telegram is disabled; no
// route is registered then.
func NewTelegramWebhookHandler(log *slog.Logger, bot *telegram.Bot) *TelegramWebhookHandler {
	if bot == nil {
		return newTelegramWebhookHandler(log, nil)
	}
	return newTelegramWebhookHandler(log, bot)
}

func newTelegramWebhookHandler(log *slog.Logger, bot UpdateDispatcher) *TelegramWebhookHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TelegramWebhookHandler{
		bot:    bot,
		logger: log.With(slog.String("handler", "telegram_webhook")),
	}
}

func (h *TelegramWebhookHandler) Register(e *echo.Echo) {
	if h.bot == nil || !h.bot.UsesWebhook() {
		return
	}
	e.POST("/telegram/webhook/:secret", h.Webhook)
}

// Webhook acknowledges the update immediately and processes it in the
// background so Telegram does not retry slow uploads.
func (h *TelegramWebhookHandler) Webhook(c echo.Context) error {
	if !h.bot.CheckWebhookSecret(c.Param("secret")) {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	var update tgbotapi.Update
	if err := c.Bind(&update); err != nil {
		h.logger.Warn("invalid webhook payload", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid update")
	}
	h.bot.Dispatch(update)
	return c.NoContent(http.StatusOK)
}
