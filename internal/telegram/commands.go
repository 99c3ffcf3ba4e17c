package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/memohai/vidstream/internal/content"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		b.reply(msg, welcomeText())
	case "stats":
		b.handleStats(ctx, msg)
	case "delete":
		b.handleDelete(ctx, msg)
	default:
		b.reply(msg, welcomeText())
	}
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) {
	var userID int64
	if msg.From != nil {
		userID = msg.From.ID
	}
	stats, err := b.store.Stats(ctx, userID)
	if err != nil {
		b.logger.Error("load stats failed", slog.Any("error", err))
		b.reply(msg, textTryLater)
		return
	}
	b.reply(msg, statsText(stats, b.links.PublicBaseURL))
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) {
	id := strings.TrimSpace(msg.CommandArguments())
	if id == "" {
		b.reply(msg, textDeleteUsage)
		return
	}
	rec, err := b.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			b.reply(msg, textNotFound)
			return
		}
		b.logger.Error("load content failed", slog.String("content_id", id), slog.Any("error", err))
		b.reply(msg, textTryLater)
		return
	}
	if msg.From == nil || (msg.From.ID != rec.OwnerID && !b.isAdmin(msg.From.ID)) {
		b.reply(msg, textNotAllowed)
		return
	}
	if err := b.store.Delete(ctx, rec.ID); err != nil {
		if errors.Is(err, content.ErrNotFound) {
			b.reply(msg, textNotFound)
			return
		}
		b.logger.Error("delete content failed", slog.String("content_id", rec.ID), slog.Any("error", err))
		b.reply(msg, textTryLater)
		return
	}
	if rec.StorageChatID != 0 && rec.StorageMessageID != 0 {
		b.deleteMessage(rec.StorageChatID, int(rec.StorageMessageID))
	}
	b.logger.Info("content deleted by user", slog.String("content_id", rec.ID), slog.Int64("user_id", msg.From.ID))
	b.reply(msg, textDeleted)
}
