package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/memohai/vidstream/internal/config"
	"github.com/memohai/vidstream/internal/metrics"
)

// ErrIdleTimeout is returned by a body read after the upstream stalled.
var ErrIdleTimeout = errors.New("upstream read idle timeout")

const userAgent = "vidstream/1.0"

// HTTPFetcher fetches http(s) upstreams.
type HTTPFetcher struct {
	client      *http.Client
	readTimeout time.Duration
	logger      *slog.Logger
}

// NewHTTPFetcher builds a fetcher whose connect and header waits are bounded
// by cfg. The client has no overall timeout; long bodies are bounded by the
// idle read timeout instead.
func NewHTTPFetcher(log *slog.Logger, cfg config.UpstreamConfig) *HTTPFetcher {
	if log == nil {
		log = slog.Default()
	}
	connect := cfg.ConnectTimeout()
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connect,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   connect,
		ResponseHeaderTimeout: cfg.ReadTimeout(),
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConnsPerHost:   16,
		DisableCompression:    true,
	}
	return &HTTPFetcher{
		client:      &http.Client{Transport: transport},
		readTimeout: cfg.ReadTimeout(),
		logger:      log.With(slog.String("service", "upstream_http")),
	}
}

// Fetch issues a GET for rawURL, adding a Range header when rng is set.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, rng *Range) (io.ReadCloser, Response, error) {
	reqCtx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		cancel()
		return nil, Response{}, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if rng != nil {
		req.Header.Set("Range", rng.Header())
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		cancel()
		metrics.ObserveUpstreamFetch(req.URL.Scheme, time.Since(start), false)
		return nil, Response{}, fmt.Errorf("upstream request %s: %w", Redact(rawURL), err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		cancel()
		metrics.ObserveUpstreamFetch(req.URL.Scheme, time.Since(start), false)
		return nil, Response{}, &FetchError{StatusCode: resp.StatusCode}
	}
	metrics.ObserveUpstreamFetch(req.URL.Scheme, time.Since(start), true)
	f.logger.Debug("upstream responded",
		slog.String("url", Redact(rawURL)),
		slog.Int("status", resp.StatusCode),
		slog.Int64("content_length", resp.ContentLength),
	)

	out := Response{
		StatusCode:    resp.StatusCode,
		Ranged:        rng != nil && resp.StatusCode == http.StatusPartialContent,
		ContentLength: resp.ContentLength,
		ContentType:   resp.Header.Get("Content-Type"),
	}
	return newIdleTimeoutBody(resp.Body, f.readTimeout, cancel), out, nil
}

// idleTimeoutBody cancels the request when a single Read waits on the
// upstream longer than timeout. Time spent outside Read is not counted.
type idleTimeoutBody struct {
	body    io.ReadCloser
	timeout time.Duration
	cancel  context.CancelFunc
	timer   *time.Timer

	mu      sync.Mutex
	expired bool
	closed  bool
}

func newIdleTimeoutBody(body io.ReadCloser, timeout time.Duration, cancel context.CancelFunc) *idleTimeoutBody {
	b := &idleTimeoutBody{body: body, timeout: timeout, cancel: cancel}
	b.timer = time.AfterFunc(timeout, b.expire)
	b.timer.Stop()
	return b
}

func (b *idleTimeoutBody) expire() {
	b.mu.Lock()
	b.expired = true
	b.mu.Unlock()
	b.cancel()
}

func (b *idleTimeoutBody) Read(p []byte) (int, error) {
	b.timer.Reset(b.timeout)
	n, err := b.body.Read(p)
	b.timer.Stop()
	b.mu.Lock()
	expired := b.expired
	b.mu.Unlock()
	if expired {
		return n, ErrIdleTimeout
	}
	return n, err
}

func (b *idleTimeoutBody) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()
	b.timer.Stop()
	err := b.body.Close()
	b.cancel()
	return err
}
