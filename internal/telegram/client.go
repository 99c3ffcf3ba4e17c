package telegram

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/memohai/vidstream/internal/config"
)

// botAPI is the subset of *tgbotapi.BotAPI the bot relies on.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFile(cfg tgbotapi.FileConfig) (tgbotapi.File, error)
	GetMe() (tgbotapi.User, error)
	GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// NewAPI connects to the Bot API, honoring a custom endpoint when configured.
func NewAPI(log *slog.Logger, cfg config.TelegramConfig) (*tgbotapi.BotAPI, error) {
	if log == nil {
		log = slog.Default()
	}
	_ = tgbotapi.SetLogger(&slogBotLogger{log: log.With(slog.String("adapter", "tgbotapi"))})
	var (
		bot *tgbotapi.BotAPI
		err error
	)
	if base := strings.TrimRight(strings.TrimSpace(cfg.APIEndpoint), "/"); base != "" {
		bot, err = tgbotapi.NewBotAPIWithAPIEndpoint(cfg.BotToken, base+"/bot%s/%s")
	} else {
		bot, err = tgbotapi.NewBotAPI(cfg.BotToken)
	}
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return bot, nil
}

// FileEndpoint returns the file download URL template (token, path) for cfg.
func FileEndpoint(cfg config.TelegramConfig) string {
	if base := strings.TrimRight(strings.TrimSpace(cfg.APIEndpoint), "/"); base != "" {
		return base + "/file/bot%s/%s"
	}
	return tgbotapi.FileEndpoint
}

// slogBotLogger routes tgbotapi's internal logging into slog.
type slogBotLogger struct {
	log *slog.Logger
}

func (l *slogBotLogger) Println(v ...interface{}) {
	l.log.Warn(strings.TrimSpace(fmt.Sprintln(v...)))
}

func (l *slogBotLogger) Printf(format string, v ...interface{}) {
	l.log.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// parseChatTarget splits a chat reference into a numeric id or an @username.
func parseChatTarget(raw string) (int64, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, "", fmt.Errorf("telegram target is required")
	}
	if strings.HasPrefix(raw, "@") {
		return 0, raw, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("telegram target must be @username or chat_id")
	}
	return id, "", nil
}

// asTelegramError unwraps a Bot API error. The library returns *Error from
// requests while callers sometimes wrap the value form.
func asTelegramError(err error) (tgbotapi.Error, bool) {
	if err == nil {
		return tgbotapi.Error{}, false
	}
	var ptr *tgbotapi.Error
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr, true
	}
	var val tgbotapi.Error
	if errors.As(err, &val) {
		return val, true
	}
	return tgbotapi.Error{}, false
}

func isTelegramTooManyRequests(err error) bool {
	apiErr, ok := asTelegramError(err)
	return ok && apiErr.Code == 429
}

func getTelegramRetryAfter(err error) time.Duration {
	apiErr, ok := asTelegramError(err)
	if ok && apiErr.RetryAfter > 0 {
		return time.Duration(apiErr.RetryAfter) * time.Second
	}
	return 0
}

func isTelegramFileTooBig(err error) bool {
	apiErr, ok := asTelegramError(err)
	return ok && apiErr.Code == 400 && strings.Contains(strings.ToLower(apiErr.Message), "file is too big")
}

func isTelegramFileMissing(err error) bool {
	apiErr, ok := asTelegramError(err)
	if !ok {
		return false
	}
	msg := strings.ToLower(apiErr.Message)
	return apiErr.Code == 400 && (strings.Contains(msg, "file_id") || strings.Contains(msg, "not found"))
}
