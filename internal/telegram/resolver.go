package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/memohai/vidstream/internal/config"
	"github.com/memohai/vidstream/internal/content"
	"github.com/memohai/vidstream/internal/metrics"
)

// FileResolver turns Telegram file ids into short-lived download URLs.
// getFile calls share one limiter so a burst of stream requests cannot trip
// the Bot API flood control.
type FileResolver struct {
	api          botAPI
	token        string
	fileEndpoint string
	limiter      *rate.Limiter
	logger       *slog.Logger
}

// NewFileResolver creates a resolver over api.
func NewFileResolver(log *slog.Logger, api botAPI, cfg config.TelegramConfig) *FileResolver {
	if log == nil {
		log = slog.Default()
	}
	limit := rate.Limit(cfg.GetFileRateLimit)
	if cfg.GetFileRateLimit <= 0 {
		limit = rate.Limit(config.DefaultGetFileRateLimit)
	}
	burst := int(limit)
	if burst < 1 {
		burst = 1
	}
	return &FileResolver{
		api:          api,
		token:        cfg.BotToken,
		fileEndpoint: FileEndpoint(cfg),
		limiter:      rate.NewLimiter(limit, burst),
		logger:       log.With(slog.String("service", "telegram_files")),
	}
}

// ResolveFileURL calls getFile and builds the download URL. Files above the
// Bot API download cap report content.ErrUnavailable; unknown ids report
// content.ErrNotFound.
func (r *FileResolver) ResolveFileURL(ctx context.Context, fileID string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		metrics.RecordGetFile("throttled")
		return "", fmt.Errorf("%w: getFile throttled: %v", content.ErrUnavailable, err)
	}
	file, err := r.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		switch {
		case isTelegramFileTooBig(err):
			metrics.RecordGetFile("too_big")
			r.logger.Warn("file exceeds bot api download limit", slog.String("file_id", fileID))
			return "", fmt.Errorf("%w: file exceeds bot api download limit", content.ErrUnavailable)
		case isTelegramFileMissing(err):
			metrics.RecordGetFile("not_found")
			return "", content.ErrNotFound
		case isTelegramTooManyRequests(err):
			metrics.RecordGetFile("rate_limited")
			r.logger.Warn("getFile rate limited", slog.Duration("retry_after", getTelegramRetryAfter(err)))
			return "", fmt.Errorf("%w: telegram rate limited", content.ErrUnavailable)
		default:
			metrics.RecordGetFile("error")
			return "", fmt.Errorf("%w: getFile: %v", content.ErrUnavailable, err)
		}
	}
	path := strings.TrimPrefix(strings.TrimSpace(file.FilePath), "/")
	if path == "" {
		metrics.RecordGetFile("error")
		return "", fmt.Errorf("%w: getFile returned no path", content.ErrUnavailable)
	}
	metrics.RecordGetFile("ok")
	return fmt.Sprintf(r.fileEndpoint, r.token, path), nil
}
