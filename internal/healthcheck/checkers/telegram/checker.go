package telegramchecker

import (
	"context"
	"log/slog"

	"github.com/memohai/vidstream/internal/healthcheck"
)

const checkTypeTelegram = "telegram.bot"

// Pinger reports whether the bot token is accepted by the Bot API.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker evaluates the Telegram bot connection.
type Checker struct {
	logger *slog.Logger
	bot    Pinger
}

// NewChecker creates a Telegram health checker. A nil bot means the bot is
// disabled and yields no checks.
func NewChecker(log *slog.Logger, bot Pinger) *Checker {
	if log == nil {
		log = slog.Default()
	}
	return &Checker{
		logger: log.With(slog.String("checker", "healthcheck_telegram")),
		bot:    bot,
	}
}

// ListChecks calls getMe. Failures are warnings because streaming of
// direct-URL records keeps working without the bot.
func (c *Checker) ListChecks(ctx context.Context) []healthcheck.CheckResult {
	if c.bot == nil {
		return []healthcheck.CheckResult{}
	}
	item := healthcheck.CheckResult{ID: checkTypeTelegram, Type: checkTypeTelegram}
	if err := c.bot.Ping(ctx); err != nil {
		c.logger.Warn("telegram ping failed", slog.Any("error", err))
		item.Status = healthcheck.StatusWarn
		item.Summary = "Telegram Bot API is unreachable."
		item.Detail = err.Error()
		return []healthcheck.CheckResult{item}
	}
	item.Status = healthcheck.StatusOK
	item.Summary = "Telegram bot is connected."
	return []healthcheck.CheckResult{item}
}
