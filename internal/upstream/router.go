package upstream

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
)

// Router dispatches fetches by URL scheme.
type Router struct {
	fetchers map[string]Fetcher
}

// NewRouter serves http and https through httpFetcher. s3Fetcher may be nil.
func NewRouter(httpFetcher, s3Fetcher Fetcher) *Router {
	r := &Router{fetchers: map[string]Fetcher{}}
	if httpFetcher != nil {
		r.fetchers["http"] = httpFetcher
		r.fetchers["https"] = httpFetcher
	}
	if s3Fetcher != nil {
		r.fetchers["s3"] = s3Fetcher
	}
	return r
}

func (r *Router) Fetch(ctx context.Context, rawURL string, rng *Range) (io.ReadCloser, Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, Response{}, fmt.Errorf("parse upstream url: %w", err)
	}
	f, ok := r.fetchers[strings.ToLower(u.Scheme)]
	if !ok {
		return nil, Response{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	return f.Fetch(ctx, rawURL, rng)
}

var botTokenPattern = regexp.MustCompile(`/bot[^/]+/`)

// Redact hides credentials in rawURL so it can be logged.
func Redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return botTokenPattern.ReplaceAllString(rawURL, "/bot<redacted>/")
	}
	if u.User != nil {
		u.User = url.User("redacted")
	}
	u.RawQuery = ""
	out := u.String()
	return botTokenPattern.ReplaceAllString(out, "/bot<redacted>/")
}
