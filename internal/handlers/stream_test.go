package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memohai/vidstream/internal/content"
	"github.com/memohai/vidstream/internal/relay"
)

func serveStream(t *testing.T, streamer *fakeStreamer, method, target, rangeHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	newStreamHandler(nil, streamer).Register(e)
	req := httptest.NewRequest(method, target, nil)
	if rangeHeader != "" {
		req.Header.Set(headerRange, rangeHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestStreamPassesIDAndRange(t *testing.T) {
	t.Parallel()

	streamer := &fakeStreamer{body: "payload"}
	rec := serveStream(t, streamer, http.MethodGet, "/stream/abc", "bytes=0-3")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "payload", rec.Body.String())
	assert.Equal(t, "abc", streamer.gotID)
	assert.Equal(t, "bytes=0-3", streamer.gotRange)
}

func TestStreamHeadUsesRelayHead(t *testing.T) {
	t.Parallel()

	streamer := &fakeStreamer{}
	rec := serveStream(t, streamer, http.MethodHead, "/stream/abc", "bytes=1-")

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, 1, streamer.headCalls)
	assert.Equal(t, 0, rec.Body.Len())
}

func TestStreamErrorStatuses(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "not found", err: content.ErrNotFound, want: http.StatusNotFound},
		{name: "store down", err: fmt.Errorf("get: %w", content.ErrUnavailable), want: http.StatusServiceUnavailable},
		{name: "upstream", err: fmt.Errorf("%w: refused", relay.ErrUpstream), want: http.StatusBadGateway},
		{name: "other", err: fmt.Errorf("boom"), want: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := serveStream(t, &fakeStreamer{err: tc.err}, http.MethodGet, "/stream/x", "")
			assert.Equal(t, tc.want, rec.Code)
			assert.NotContains(t, rec.Body.String(), "refused")
			assert.NotContains(t, rec.Body.String(), "boom")
		})
	}
}
