package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/memohai/vidstream/internal/relay"
)

const headerRange = "Range"

// Streamer is the relay surface used by StreamHandler.
type Streamer interface {
	Serve(ctx context.Context, w http.ResponseWriter, id, rangeHeader string) error
	Head(ctx context.Context, w http.ResponseWriter, id, rangeHeader string) error
}

type StreamHandler struct {
	relay  Streamer
	logger *slog.Logger
}

func NewStreamHandler(log *slog.Logger, r *relay.Relay) *StreamHandler {
	return newStreamHandler(log, r)
}

func newStreamHandler(log *slog.Logger, r Streamer) *StreamHandler {
	if log == nil {
		log = slog.Default()
	}
	return &StreamHandler{
		relay:  r,
		logger: log.With(slog.String("handler", "stream")),
	}
}

func (h *StreamHandler) Register(e *echo.Echo) {
	e.GET("/stream/:id", h.Stream)
	e.HEAD("/stream/:id", h.StreamHead)
}

// Stream godoc
// @Summary Stream stored content
// @Description Relay the content bytes, honoring a single client byte range
// @Tags stream
// @Produce octet-stream
// @Param id path string true "Content ID"
// @Param Range header string false "Byte range, e.g. bytes=0-1023"
// @Success 200 {file} binary
// @Success 206 {file} binary
// @Failure 404 {object} echo.HTTPError
// @Failure 502 {object} echo.HTTPError
// @Failure 503 {object} echo.HTTPError
// @Router /stream/{id} [get]
func (h *StreamHandler) Stream(c echo.Context) error {
	id := c.Param("id")
	err := h.relay.Serve(c.Request().Context(), c.Response(), id, c.Request().Header.Get(headerRange))
	if err != nil {
		return streamError(c, err)
	}
	return nil
}

// StreamHead godoc
// @Summary Stream headers
// @Description Answer with the headers Stream would send without contacting the upstream
// @Tags stream
// @Param id path string true "Content ID"
// @Param Range header string false "Byte range"
// @Success 200
// @Success 206
// @Failure 404 {object} echo.HTTPError
// @Failure 503 {object} echo.HTTPError
// @Router /stream/{id} [head]
func (h *StreamHandler) StreamHead(c echo.Context) error {
	id := c.Param("id")
	err := h.relay.Head(c.Request().Context(), c.Response(), id, c.Request().Header.Get(headerRange))
	if err != nil {
		return streamError(c, err)
	}
	return nil
}

// streamError hides relay detail from clients; the relay has already logged it.
func streamError(c echo.Context, err error) error {
	status := relay.StatusFor(err)
	if c.Response().Committed {
		return nil
	}
	return echo.NewHTTPError(status, http.StatusText(status))
}
