package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/memohai/vidstream/internal/config"
	"github.com/memohai/vidstream/internal/content"
	"github.com/memohai/vidstream/internal/media"
)

type InfoHandler struct {
	records content.Getter
	links   config.ServerConfig
	logger  *slog.Logger
}

// InfoResponse is the public description of a stored file.
type InfoResponse struct {
	ID                string    `json:"file_id"`
	FileName          string    `json:"filename"`
	FileSize          int64     `json:"file_size"`
	FileSizeHuman     string    `json:"file_size_human"`
	MimeType          string    `json:"mime_type"`
	StreamURL         string    `json:"stream_url"`
	TelegramMessageID int64     `json:"telegram_message_id,omitempty"`
	UploadedBy        int64     `json:"uploaded_by,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

func NewInfoHandler(log *slog.Logger, records *content.Store, cfg config.Config) *InfoHandler {
	return newInfoHandler(log, records, cfg.Server)
}

func newInfoHandler(log *slog.Logger, records content.Getter, links config.ServerConfig) *InfoHandler {
	if log == nil {
		log = slog.Default()
	}
	return &InfoHandler{
		records: records,
		links:   links,
		logger:  log.With(slog.String("handler", "info")),
	}
}

func (h *InfoHandler) Register(e *echo.Echo) {
	e.GET("/info/:id", h.Info)
}

// Info godoc
// @Summary Get content info
// @Description Public description of a stored file with its stream URL
// @Tags info
// @Produce json
// @Param id path string true "Content ID"
// @Success 200 {object} InfoResponse
// @Failure 404 {object} echo.HTTPError
// @Failure 503 {object} echo.HTTPError
// @Router /info/{id} [get]
func (h *InfoHandler) Info(c echo.Context) error {
	id := c.Param("id")
	rec, err := h.records.Get(c.Request().Context(), id)
	if err != nil {
		return recordError(h.logger, id, err)
	}
	return c.JSON(http.StatusOK, InfoResponse{
		ID:                rec.ID,
		FileName:          rec.FileName,
		FileSize:          rec.TotalLength,
		FileSizeHuman:     media.FormatSize(rec.TotalLength),
		MimeType:          media.ResolveMime(rec.MimeType, rec.FileName),
		StreamURL:         h.links.StreamURL(rec.ID),
		TelegramMessageID: rec.StorageMessageID,
		UploadedBy:        rec.OwnerID,
		CreatedAt:         rec.CreatedAt,
	})
}

// recordError maps store errors to HTTP errors without leaking driver detail.
func recordError(log *slog.Logger, id string, err error) error {
	switch {
	case errors.Is(err, content.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "content not found")
	case errors.Is(err, content.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		log.Warn("content store unavailable", slog.String("content_id", id), slog.Any("error", err))
		return echo.NewHTTPError(http.StatusServiceUnavailable, "content store unavailable")
	default:
		log.Error("content lookup failed", slog.String("content_id", id), slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
