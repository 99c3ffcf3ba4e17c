package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Locator maps content ids to upstream sources. It holds no state between
// calls; every Resolve reads the store.
type Locator struct {
	records  Getter
	resolver URLResolver
	logger   *slog.Logger
}

// NewLocator creates a Locator. resolver may be nil when no platform-backed
// records are expected.
func NewLocator(log *slog.Logger, records Getter, resolver URLResolver) *Locator {
	if log == nil {
		log = slog.Default()
	}
	return &Locator{
		records:  records,
		resolver: resolver,
		logger:   log.With(slog.String("service", "locator")),
	}
}

// Resolve returns the upstream source for id. It fails with ErrNotFound when
// the id does not resolve and ErrUnavailable when the store or platform cannot
// be reached.
func (l *Locator) Resolve(ctx context.Context, id string) (Source, error) {
	if l.records == nil {
		return Source{}, ErrUnavailable
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Source{}, ErrNotFound
	}
	rec, err := l.records.Get(ctx, id)
	if err != nil {
		return Source{}, err
	}
	src := Source{
		ID:          rec.ID,
		URL:         strings.TrimSpace(rec.UpstreamURL),
		TotalLength: rec.TotalLength,
		MimeHint:    rec.MimeType,
		FileName:    rec.FileName,
	}
	if src.URL != "" {
		return src, nil
	}
	fileID := strings.TrimSpace(rec.FileID)
	if fileID == "" {
		l.logger.Warn("record has no upstream reference", slog.String("content_id", rec.ID))
		return Source{}, ErrNotFound
	}
	if l.resolver == nil {
		return Source{}, fmt.Errorf("%w: no file url resolver configured", ErrUnavailable)
	}
	url, err := l.resolver.ResolveFileURL(ctx, fileID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnavailable) {
			return Source{}, err
		}
		return Source{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	src.URL = url
	return src, nil
}
