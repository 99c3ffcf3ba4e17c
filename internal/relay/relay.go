// Package relay serves stored content to HTTP clients, translating client
// byte ranges into upstream range requests and streaming the result.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/memohai/vidstream/internal/config"
	"github.com/memohai/vidstream/internal/content"
	"github.com/memohai/vidstream/internal/media"
	"github.com/memohai/vidstream/internal/metrics"
	"github.com/memohai/vidstream/internal/upstream"
)

// Locator resolves content ids to upstream sources.
type Locator interface {
	Resolve(ctx context.Context, id string) (content.Source, error)
}

// Relay is stateless between requests; one instance serves all of them.
type Relay struct {
	locator      Locator
	fetcher      upstream.Fetcher
	chunkSize    int
	cacheControl string
	logger       *slog.Logger
}

// New creates a Relay.
func New(log *slog.Logger, locator Locator, fetcher upstream.Fetcher, cfg config.RelayConfig) *Relay {
	if log == nil {
		log = slog.Default()
	}
	chunk := cfg.ChunkSizeBytes
	if chunk <= 0 {
		chunk = config.DefaultChunkSizeBytes
	}
	maxAge := cfg.CacheMaxAgeSeconds
	if maxAge <= 0 {
		maxAge = config.DefaultCacheMaxAge
	}
	return &Relay{
		locator:      locator,
		fetcher:      fetcher,
		chunkSize:    chunk,
		cacheControl: "public, max-age=" + strconv.Itoa(maxAge),
		logger:       log.With(slog.String("service", "relay")),
	}
}

// plan is the response shape, fixed before any byte is written.
type plan struct {
	source content.Source
	rng    *upstream.Range
	mime   string
}

func (p plan) status() int {
	if p.rng != nil {
		return http.StatusPartialContent
	}
	return http.StatusOK
}

func (r *Relay) plan(ctx context.Context, id, rangeHeader string) (plan, error) {
	src, err := r.locator.Resolve(ctx, id)
	if err != nil {
		return plan{}, err
	}
	return plan{
		source: src,
		rng:    ParseRange(rangeHeader, src.TotalLength),
		mime:   media.ResolveMime(src.MimeHint, src.FileName),
	}, nil
}

func (r *Relay) writeHeaders(w http.ResponseWriter, p plan) {
	h := w.Header()
	h.Set("Content-Type", p.mime)
	h.Set("Accept-Ranges", "bytes")
	h.Set("Cache-Control", r.cacheControl)
	h.Set("Access-Control-Allow-Origin", "*")
	if p.source.FileName != "" {
		h.Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": p.source.FileName}))
	}
	total := p.source.TotalLength
	switch {
	case p.rng != nil:
		h.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", p.rng.Start, p.rng.End, total))
		h.Set("Content-Length", strconv.FormatInt(p.rng.Len(), 10))
	case total > 0:
		h.Set("Content-Length", strconv.FormatInt(total, 10))
	}
}

// Head writes the headers a GET would produce without contacting the upstream.
func (r *Relay) Head(ctx context.Context, w http.ResponseWriter, id, rangeHeader string) error {
	p, err := r.plan(ctx, id, rangeHeader)
	if err != nil {
		r.recordFailure(id, err)
		return err
	}
	r.writeHeaders(w, p)
	w.WriteHeader(p.status())
	metrics.RecordRelay(metrics.OutcomeHead)
	return nil
}

// Serve resolves id and streams it to w. A returned error means nothing was
// written and the caller should respond with StatusFor(err). Once streaming
// has begun, failures end the body early and are only logged.
func (r *Relay) Serve(ctx context.Context, w http.ResponseWriter, id, rangeHeader string) error {
	p, err := r.plan(ctx, id, rangeHeader)
	if err != nil {
		r.recordFailure(id, err)
		return err
	}

	body, resp, err := r.fetcher.Fetch(ctx, p.source.URL, p.rng)
	if err != nil {
		r.logger.Warn("upstream fetch failed",
			slog.String("content_id", id),
			slog.String("url", upstream.Redact(p.source.URL)),
			slog.Any("error", err),
		)
		err = fmt.Errorf("%w: %w", ErrUpstream, err)
		r.recordFailure(id, err)
		return err
	}
	defer body.Close()

	var src io.Reader = body
	want := int64(-1)
	switch {
	case p.rng != nil:
		want = p.rng.Len()
		if !resp.Ranged {
			// Upstream ignored the range and sent the whole object.
			if _, err := io.CopyN(io.Discard, body, p.rng.Start); err != nil {
				err = fmt.Errorf("%w: skip to range start: %w", ErrUpstream, err)
				r.recordFailure(id, err)
				return err
			}
		}
		src = io.LimitReader(body, want)
	case p.source.TotalLength > 0:
		want = p.source.TotalLength
		src = io.LimitReader(body, want)
	}

	r.writeHeaders(w, p)
	w.WriteHeader(p.status())

	written, err := r.copyChunks(w, src)
	metrics.AddRelayedBytes(written)
	if err == nil && want >= 0 && written < want {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		level := slog.LevelWarn
		if ctx.Err() != nil {
			level = slog.LevelDebug
		}
		r.logger.Log(ctx, level, "stream ended early",
			slog.String("content_id", id),
			slog.Int64("written", written),
			slog.Int64("expected", want),
			slog.Any("error", err),
		)
		metrics.RecordRelay(metrics.OutcomeTruncated)
		return nil
	}
	if p.rng != nil {
		metrics.RecordRelay(metrics.OutcomePartial)
	} else {
		metrics.RecordRelay(metrics.OutcomeFull)
	}
	return nil
}

// copyChunks writes src to w one chunk at a time, flushing after each so
// the client receives bytes as they arrive. Reads stop as soon as a write
// fails, which is how a client disconnect reaches the upstream.
func (r *Relay) copyChunks(w http.ResponseWriter, src io.Reader) (int64, error) {
	rc := http.NewResponseController(w)
	buf := make([]byte, r.chunkSize)
	var written int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			m, werr := w.Write(buf[:n])
			written += int64(m)
			if werr != nil {
				return written, werr
			}
			if ferr := rc.Flush(); ferr != nil && !errors.Is(ferr, http.ErrNotSupported) {
				return written, ferr
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}

func (r *Relay) recordFailure(id string, err error) {
	status := StatusFor(err)
	outcome := metrics.OutcomeError
	switch status {
	case http.StatusNotFound:
		outcome = metrics.OutcomeNotFound
	case http.StatusServiceUnavailable:
		outcome = metrics.OutcomeUnavailable
		r.logger.Warn("content store unavailable", slog.String("content_id", id), slog.Any("error", err))
	case http.StatusBadGateway:
		outcome = metrics.OutcomeBadGateway
	default:
		r.logger.Error("relay failed", slog.String("content_id", id), slog.Any("error", err))
	}
	metrics.RecordRelay(outcome)
}
