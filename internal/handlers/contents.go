package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/memohai/vidstream/internal/auth"
	"github.com/memohai/vidstream/internal/config"
	"github.com/memohai/vidstream/internal/content"
	"github.com/memohai/vidstream/internal/media"
)

// ContentRepository is the store surface used by the admin API.
type ContentRepository interface {
	Create(ctx context.Context, rec content.Record) (content.Record, error)
	Get(ctx context.Context, id string) (content.Record, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]content.Record, error)
}

type ContentsHandler struct {
	store    ContentRepository
	links    config.ServerConfig
	validate *validator.Validate
	logger   *slog.Logger
}

// CreateContentRequest registers a file served from an external upstream.
type CreateContentRequest struct {
	UpstreamURL string `json:"upstream_url" validate:"required,url,startswith=http://|startswith=https://|startswith=s3://"`
	FileName    string `json:"file_name" validate:"required,max=255"`
	TotalLength int64  `json:"total_length" validate:"gte=0"`
	MimeType    string `json:"mime_type" validate:"omitempty,max=127"`
}

// ContentResponse is a record plus its public links.
type ContentResponse struct {
	content.Record
	StreamURL string `json:"stream_url"`
	InfoURL   string `json:"info_url"`
}

type ListContentsResponse struct {
	Items  []ContentResponse `json:"items"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

func NewContentsHandler(log *slog.Logger, store *content.Store, cfg config.Config) *ContentsHandler {
	return newContentsHandler(log, store, cfg.Server)
}

func newContentsHandler(log *slog.Logger, store ContentRepository, links config.ServerConfig) *ContentsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ContentsHandler{
		store:    store,
		links:    links,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   log.With(slog.String("handler", "contents")),
	}
}

func (h *ContentsHandler) Register(e *echo.Echo) {
	group := e.Group("/api/contents", auth.RequireAdmin())
	group.GET("", h.List)
	group.POST("", h.Create)
	group.GET("/:id", h.Get)
	group.DELETE("/:id", h.Delete)
}

// List godoc
// @Summary List contents
// @Description List stored contents, newest first
// @Tags contents
// @Produce json
// @Param limit query int false "Page size (default 50)"
// @Param offset query int false "Offset"
// @Success 200 {object} ListContentsResponse
// @Failure 400 {object} echo.HTTPError
// @Failure 503 {object} echo.HTTPError
// @Router /api/contents [get]
func (h *ContentsHandler) List(c echo.Context) error {
	limit, err := queryInt(c, "limit", 50)
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return err
	}
	records, err := h.store.List(c.Request().Context(), limit, offset)
	if err != nil {
		return recordError(h.logger, "", err)
	}
	items := make([]ContentResponse, 0, len(records))
	for _, rec := range records {
		items = append(items, h.toResponse(rec))
	}
	return c.JSON(http.StatusOK, ListContentsResponse{Items: items, Limit: limit, Offset: offset})
}

// Create godoc
// @Summary Register external content
// @Description Register a file served from an HTTP or S3 upstream
// @Tags contents
// @Accept json
// @Produce json
// @Param request body CreateContentRequest true "Content"
// @Success 201 {object} ContentResponse
// @Failure 400 {object} echo.HTTPError
// @Router /api/contents [post]
func (h *ContentsHandler) Create(c echo.Context) error {
	var req CreateContentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.UpstreamURL = strings.TrimSpace(req.UpstreamURL)
	req.FileName = strings.TrimSpace(req.FileName)
	if err := h.validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := media.CheckSize(req.TotalLength, 0); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	owner := ""
	if userID, err := auth.UserIDFromContext(c); err == nil {
		owner = userID
	}
	rec, err := h.store.Create(c.Request().Context(), content.Record{
		UpstreamURL: req.UpstreamURL,
		FileName:    req.FileName,
		TotalLength: req.TotalLength,
		MimeType:    media.ResolveMime(req.MimeType, req.FileName),
	})
	if err != nil {
		return recordError(h.logger, "", err)
	}
	h.logger.Info("content registered",
		slog.String("content_id", rec.ID),
		slog.String("admin", owner),
		slog.Int64("total_length", rec.TotalLength),
	)
	return c.JSON(http.StatusCreated, h.toResponse(rec))
}

// Get godoc
// @Summary Get content
// @Tags contents
// @Produce json
// @Param id path string true "Content ID"
// @Success 200 {object} ContentResponse
// @Failure 404 {object} echo.HTTPError
// @Router /api/contents/{id} [get]
func (h *ContentsHandler) Get(c echo.Context) error {
	id := c.Param("id")
	rec, err := h.store.Get(c.Request().Context(), id)
	if err != nil {
		return recordError(h.logger, id, err)
	}
	return c.JSON(http.StatusOK, h.toResponse(rec))
}

// Delete godoc
// @Summary Delete content
// @Description Remove the record; the upstream bytes are left untouched
// @Tags contents
// @Param id path string true "Content ID"
// @Success 204
// @Failure 404 {object} echo.HTTPError
// @Router /api/contents/{id} [delete]
func (h *ContentsHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.store.Delete(c.Request().Context(), id); err != nil {
		return recordError(h.logger, id, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ContentsHandler) toResponse(rec content.Record) ContentResponse {
	return ContentResponse{
		Record:    rec,
		StreamURL: h.links.StreamURL(rec.ID),
		InfoURL:   h.links.InfoURL(rec.ID),
	}
}

func queryInt(c echo.Context, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a non-negative integer")
	}
	return value, nil
}
