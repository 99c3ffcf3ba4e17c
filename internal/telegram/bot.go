// Package telegram runs the upload bot: it parks videos in a storage channel,
// records them and hands back stream links.
package telegram

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/memohai/vidstream/internal/config"
	"github.com/memohai/vidstream/internal/content"
)

const updateTimeout = 2 * time.Minute

// ContentStore is what the bot needs from the content store.
type ContentStore interface {
	Create(ctx context.Context, rec content.Record) (content.Record, error)
	Get(ctx context.Context, id string) (content.Record, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, ownerID int64) (content.Stats, error)
}

// Bot handles Telegram updates from long polling or a webhook.
type Bot struct {
	api    botAPI
	store  ContentStore
	cfg    config.TelegramConfig
	links  config.ServerConfig
	admins map[int64]struct{}
	logger *slog.Logger

	mu       sync.Mutex
	baseCtx  context.Context
	cancel   context.CancelFunc
	updates  tgbotapi.UpdatesChannel
	pollDone chan struct{}
	inflight sync.WaitGroup
}

// NewBot creates a Bot. Start must be called before updates are processed.
func NewBot(log *slog.Logger, api botAPI, store ContentStore, cfg config.TelegramConfig, links config.ServerConfig) *Bot {
	if log == nil {
		log = slog.Default()
	}
	admins := make(map[int64]struct{}, len(cfg.AdminUserIDs))
	for _, id := range cfg.AdminUserIDs {
		admins[id] = struct{}{}
	}
	return &Bot{
		api:     api,
		store:   store,
		cfg:     cfg,
		links:   links,
		admins:  admins,
		logger:  log.With(slog.String("adapter", "telegram")),
		baseCtx: context.Background(),
	}
}

// WebhookPath is the route Telegram posts updates to when webhook mode is on.
func WebhookPath(secret string) string {
	return "/telegram/webhook/" + secret
}

// UsesWebhook reports whether updates arrive over HTTP instead of polling.
func (b *Bot) UsesWebhook() bool {
	return strings.TrimSpace(b.cfg.WebhookURL) != ""
}

// CheckWebhookSecret compares secret with the configured one in constant time.
func (b *Bot) CheckWebhookSecret(secret string) bool {
	want := strings.TrimSpace(b.cfg.WebhookSecret)
	if want == "" || !b.UsesWebhook() {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(want)) == 1
}

// Start registers commands and begins receiving updates.
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	b.baseCtx, b.cancel = context.WithCancel(context.WithoutCancel(ctx))
	b.mu.Unlock()

	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(botCommands()...)); err != nil {
		b.logger.Warn("set commands failed", slog.Any("error", err))
	}

	if b.UsesWebhook() {
		link := strings.TrimRight(b.cfg.WebhookURL, "/") + WebhookPath(b.cfg.WebhookSecret)
		wh, err := tgbotapi.NewWebhook(link)
		if err != nil {
			return fmt.Errorf("build webhook: %w", err)
		}
		wh.DropPendingUpdates = true
		if _, err := b.api.Request(wh); err != nil {
			return fmt.Errorf("set webhook: %w", err)
		}
		b.logger.Info("webhook registered", slog.String("path", WebhookPath("<secret>")))
		return nil
	}

	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := b.api.GetUpdatesChan(updateConfig)
	done := make(chan struct{})
	b.mu.Lock()
	b.updates = updates
	b.pollDone = done
	loopCtx := b.baseCtx
	b.mu.Unlock()

	go b.poll(loopCtx, updates, done)
	b.logger.Info("polling started")
	return nil
}

// poll closes done on return; no Dispatch happens after that.
func (b *Bot) poll(ctx context.Context, updates tgbotapi.UpdatesChannel, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				b.logger.Info("updates channel closed")
				return
			}
			b.Dispatch(update)
		}
	}
}

// Dispatch processes update in the background.
func (b *Bot) Dispatch(update tgbotapi.Update) {
	b.mu.Lock()
	ctx := b.baseCtx
	b.mu.Unlock()
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		updCtx, cancel := context.WithTimeout(ctx, updateTimeout)
		defer cancel()
		b.HandleUpdate(updCtx, update)
	}()
}

// Stop ends polling and waits for in-flight updates.
func (b *Bot) Stop(ctx context.Context) error {
	b.mu.Lock()
	updates := b.updates
	pollDone := b.pollDone
	cancel := b.cancel
	b.updates = nil
	b.pollDone = nil
	b.mu.Unlock()

	b.logger.Info("stop")
	if updates != nil {
		b.api.StopReceivingUpdates()
	}
	if cancel != nil {
		cancel()
	}
	done := make(chan struct{})
	go func() {
		if pollDone != nil {
			<-pollDone
		}
		// Drain so the library's polling goroutine can finish its last
		// long poll and close the channel.
		if updates != nil {
			for range updates {
			}
		}
		b.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ping checks the bot token against the Bot API.
func (b *Bot) Ping(_ context.Context) error {
	_, err := b.api.GetMe()
	return err
}

// HandleUpdate processes one update synchronously.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	switch {
	case msg.IsCommand():
		b.handleCommand(ctx, msg)
	case msg.Video != nil || msg.Document != nil:
		b.handleUpload(ctx, msg)
	case len(msg.Photo) > 0 || msg.Audio != nil || msg.Voice != nil || msg.Animation != nil || msg.VideoNote != nil:
		b.reply(msg, textOnlyVideos)
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	_, ok := b.admins[userID]
	return ok
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) (tgbotapi.Message, error) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ParseMode = tgbotapi.ModeHTML
	out.ReplyToMessageID = msg.MessageID
	out.DisableWebPagePreview = true
	sent, err := b.api.Send(out)
	if err != nil {
		b.logger.Warn("send reply failed", slog.Int64("chat_id", msg.Chat.ID), slog.Any("error", err))
	}
	return sent, err
}

func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.logger.Debug("delete message failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
	}
}
