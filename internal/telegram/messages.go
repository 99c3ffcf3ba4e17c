package telegram

import (
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/memohai/vidstream/internal/content"
	"github.com/memohai/vidstream/internal/media"
)

const (
	textOnlyVideos     = "🎬 This bot only accepts video files.\n\nUse /start to see the supported formats."
	textSendVideo      = "❌ Please send a video file."
	textProcessing     = "⏳ Processing your video..."
	textNoStorage      = "❌ Storage channel not configured."
	textStoreFailed    = "❌ Error storing video in channel. Please make sure the bot is an admin in the storage channel."
	textGenericFailure = "❌ An error occurred while processing your video. Please try again."
	textDeleteUsage    = "Usage: /delete &lt;file id&gt;"
	textNotFound       = "❌ No video with that id."
	textNotAllowed     = "❌ You can only delete your own videos."
	textDeleted        = "🗑 Video deleted. Its stream link no longer works."
	textTryLater       = "❌ The service is busy. Please try again later."
)

func botCommands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "start", Description: "Get started with the video streaming bot"},
		{Command: "help", Description: "How to use the bot"},
		{Command: "stats", Description: "View bot statistics and your uploaded videos"},
		{Command: "delete", Description: "Delete one of your videos by id"},
	}
}

func welcomeText() string {
	formats := make([]string, 0, len(media.SupportedVideoExtensions))
	for _, ext := range media.SupportedVideoExtensions {
		formats = append(formats, strings.ToUpper(ext))
	}
	var b strings.Builder
	b.WriteString("🎬 <b>Video Streaming Bot</b>\n\n")
	b.WriteString("Send me a video file and I'll turn it into a permanent streaming URL that works with any video player.\n\n")
	b.WriteString("<b>Supported formats:</b>\n")
	b.WriteString(strings.Join(formats, ", "))
	b.WriteString("\n\n<b>Limits:</b> up to ")
	b.WriteString(media.FormatSize(media.MaxUploadBytes))
	b.WriteString(" per file.\n\n")
	b.WriteString("<b>How to use:</b>\n1. Send me a video file\n2. Get your streaming URL\n3. Open it in any player or share it\n\n")
	b.WriteString("Seeking works through HTTP range requests. /stats shows your uploads, /delete removes one.")
	return b.String()
}

func tooLargeText() string {
	return fmt.Sprintf("❌ Video file too large! Maximum size is %s.", media.FormatSize(media.MaxUploadBytes))
}

func storedText(rec content.Record, streamURL, infoURL string) string {
	return fmt.Sprintf(
		"✅ <b>Video processed successfully!</b>\n\n"+
			"🎬 <b>Video:</b> <code>%s</code>\n"+
			"📊 <b>Size:</b> %s\n"+
			"🆔 <b>File ID:</b> <code>%s</code>\n\n"+
			"🔗 <b>Streaming URL:</b>\n<code>%s</code>\n\n"+
			"ℹ️ <b>File Info API:</b>\n<code>%s</code>\n\n"+
			"Open the streaming URL in VLC (Media → Open Network Stream), an HTML5 player or any mobile player.",
		html.EscapeString(rec.FileName),
		media.FormatSize(rec.TotalLength),
		html.EscapeString(rec.ID),
		html.EscapeString(streamURL),
		html.EscapeString(infoURL),
	)
}

func statsText(stats content.Stats, baseURL string) string {
	return fmt.Sprintf(
		"📊 <b>Bot Statistics</b>\n\n"+
			"👤 <b>Your videos:</b> %d\n"+
			"🌐 <b>Total videos:</b> %d\n"+
			"💾 <b>Total storage:</b> %.2f GB\n\n"+
			"🔗 <b>Service URL:</b> %s",
		stats.OwnerCount,
		stats.TotalCount,
		float64(stats.TotalBytes)/(1024*1024*1024),
		html.EscapeString(baseURL),
	)
}
