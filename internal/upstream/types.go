package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrUnsupportedScheme is returned for upstream URLs no fetcher handles.
var ErrUnsupportedScheme = errors.New("unsupported upstream scheme")

// Range is an inclusive byte range.
type Range struct {
	Start int64
	End   int64
}

// Header formats r as an HTTP Range header value.
func (r Range) Header() string {
	return fmt.Sprintf("bytes=%d-%d", r.Start, r.End)
}

// Len is the number of bytes in r.
func (r Range) Len() int64 {
	return r.End - r.Start + 1
}

// Response describes what the upstream sent back.
type Response struct {
	StatusCode int
	// Ranged is true when the body starts at the requested range start.
	Ranged bool
	// ContentLength is -1 when unknown.
	ContentLength int64
	ContentType   string
}

// Fetcher opens an upstream byte stream. The returned body must be closed.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, rng *Range) (io.ReadCloser, Response, error)
}

// FetchError reports a non-success upstream status.
type FetchError struct {
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("upstream responded %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}
