package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/memohai/vidstream/internal/content"
	"github.com/memohai/vidstream/internal/healthcheck"
)

type fakeStreamer struct {
	err       error
	body      string
	gotID     string
	gotRange  string
	headCalls int
}

func (f *fakeStreamer) Serve(_ context.Context, w http.ResponseWriter, id, rangeHeader string) error {
	f.gotID, f.gotRange = id, rangeHeader
	if f.err != nil {
		return f.err
	}
	w.Header().Set("Content-Type", "video/mp4")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(f.body))
	return nil
}

func (f *fakeStreamer) Head(_ context.Context, w http.ResponseWriter, id, rangeHeader string) error {
	f.headCalls++
	f.gotID, f.gotRange = id, rangeHeader
	if f.err != nil {
		return f.err
	}
	w.Header().Set("Content-Type", "video/mp4")
	w.WriteHeader(http.StatusPartialContent)
	return nil
}

type memoryStore struct {
	mu      sync.Mutex
	records map[string]content.Record
	err     error
	created []content.Record
}

func newMemoryStore(records ...content.Record) *memoryStore {
	s := &memoryStore{records: map[string]content.Record{}}
	for _, r := range records {
		s.records[r.ID] = r
	}
	return s
}

func (s *memoryStore) Create(_ context.Context, rec content.Record) (content.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return content.Record{}, s.err
	}
	if rec.ID == "" {
		rec.ID = "generated-id"
	}
	rec.CreatedAt = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s.records[rec.ID] = rec
	s.created = append(s.created, rec)
	return rec, nil
}

func (s *memoryStore) Get(_ context.Context, id string) (content.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return content.Record{}, s.err
	}
	rec, ok := s.records[id]
	if !ok {
		return content.Record{}, content.ErrNotFound
	}
	return rec, nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.records[id]; !ok {
		return content.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *memoryStore) List(_ context.Context, limit, offset int) ([]content.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]content.Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	return out, nil
}

type staticHealth struct {
	report healthcheck.Report
}

func (s staticHealth) Run(context.Context) healthcheck.Report { return s.report }

type fakeDispatcher struct {
	webhook bool
	secret  string
	updates []tgbotapi.Update
}

func (f *fakeDispatcher) UsesWebhook() bool { return f.webhook }

func (f *fakeDispatcher) CheckWebhookSecret(secret string) bool { return secret == f.secret }

func (f *fakeDispatcher) Dispatch(update tgbotapi.Update) { f.updates = append(f.updates, update) }
