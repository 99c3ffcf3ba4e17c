package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/memohai/vidstream/internal/content"
	"github.com/memohai/vidstream/internal/media"
	"github.com/memohai/vidstream/internal/metrics"
)

// upload is the video part of an incoming message.
type upload struct {
	fileID       string
	fileUniqueID string
	fileName     string
	mimeType     string
	size         int64
}

// videoUpload extracts the upload from msg. Documents qualify only when the
// file name carries a supported video extension.
func videoUpload(msg *tgbotapi.Message) (upload, error) {
	switch {
	case msg.Video != nil:
		v := msg.Video
		name := strings.TrimSpace(v.FileName)
		if name == "" {
			name = "video_" + v.FileUniqueID + ".mp4"
		}
		return upload{
			fileID:       v.FileID,
			fileUniqueID: v.FileUniqueID,
			fileName:     name,
			mimeType:     v.MimeType,
			size:         int64(v.FileSize),
		}, nil
	case msg.Document != nil:
		d := msg.Document
		if !media.IsVideoFilename(d.FileName) {
			return upload{}, media.ErrUnsupportedFormat
		}
		return upload{
			fileID:       d.FileID,
			fileUniqueID: d.FileUniqueID,
			fileName:     strings.TrimSpace(d.FileName),
			mimeType:     d.MimeType,
			size:         int64(d.FileSize),
		}, nil
	default:
		return upload{}, media.ErrUnsupportedFormat
	}
}

func (b *Bot) handleUpload(ctx context.Context, msg *tgbotapi.Message) {
	up, err := videoUpload(msg)
	if err != nil {
		metrics.RecordUpload("rejected")
		if msg.Document != nil {
			b.reply(msg, textOnlyVideos)
		} else {
			b.reply(msg, textSendVideo)
		}
		return
	}
	if err := media.CheckSize(up.size, media.MaxUploadBytes); err != nil {
		metrics.RecordUpload("rejected")
		b.reply(msg, tooLargeText())
		return
	}

	processing, _ := b.reply(msg, textProcessing)
	defer b.deleteMessage(msg.Chat.ID, processing.MessageID)

	if strings.TrimSpace(b.cfg.StorageChannelID) == "" {
		metrics.RecordUpload("error")
		b.reply(msg, textNoStorage)
		return
	}
	forwarded, err := b.forwardToStorage(msg)
	if err != nil {
		metrics.RecordUpload("error")
		b.logger.Error("forward to storage failed", slog.Int64("chat_id", msg.Chat.ID), slog.Any("error", err))
		b.reply(msg, textStoreFailed)
		return
	}

	rec := content.Record{
		FileID:           up.fileID,
		FileUniqueID:     up.fileUniqueID,
		FileName:         up.fileName,
		TotalLength:      up.size,
		MimeType:         media.ResolveMime(up.mimeType, up.fileName),
		ChatID:           msg.Chat.ID,
		StorageMessageID: int64(forwarded.MessageID),
	}
	if msg.From != nil {
		rec.OwnerID = msg.From.ID
	}
	if forwarded.Chat != nil {
		rec.StorageChatID = forwarded.Chat.ID
	}
	created, err := b.store.Create(ctx, rec)
	if err != nil {
		metrics.RecordUpload("error")
		b.logger.Error("create content failed", slog.String("file_name", up.fileName), slog.Any("error", err))
		if errors.Is(err, content.ErrUnavailable) {
			b.reply(msg, textTryLater)
		} else {
			b.reply(msg, textGenericFailure)
		}
		return
	}

	metrics.RecordUpload("stored")
	b.logger.Info("video stored",
		slog.String("content_id", created.ID),
		slog.String("file_name", created.FileName),
		slog.Int64("size", created.TotalLength),
		slog.Int64("user_id", created.OwnerID),
	)
	b.reply(msg, storedText(created, b.links.StreamURL(created.ID), b.links.InfoURL(created.ID)))
}

func (b *Bot) forwardToStorage(msg *tgbotapi.Message) (tgbotapi.Message, error) {
	chatID, username, err := parseChatTarget(b.cfg.StorageChannelID)
	if err != nil {
		return tgbotapi.Message{}, err
	}
	fwd := tgbotapi.NewForward(chatID, msg.Chat.ID, msg.MessageID)
	fwd.ChannelUsername = username
	fwd.DisableNotification = true
	return b.api.Send(fwd)
}
