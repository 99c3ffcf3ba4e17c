package relay

import (
	"errors"
	"net/http"

	"github.com/memohai/vidstream/internal/content"
)

// ErrUpstream marks failures reaching the upstream before streaming began.
var ErrUpstream = errors.New("upstream fetch failed")

// StatusFor maps a pre-stream error to the HTTP status the client sees.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, content.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, content.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
