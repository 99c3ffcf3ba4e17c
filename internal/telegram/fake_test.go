package telegram

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/memohai/vidstream/internal/content"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	nextID   int

	sendErr    error
	forwardErr error
	file       tgbotapi.File
	fileErr    error
	fileCalls  int
	updates    chan tgbotapi.Update
	stopped    bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{nextID: 100, updates: make(chan tgbotapi.Update, 8)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	if _, ok := c.(tgbotapi.ForwardConfig); ok && f.forwardErr != nil {
		return tgbotapi.Message{}, f.forwardErr
	}
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	f.nextID++
	msg := tgbotapi.Message{MessageID: f.nextID}
	if fwd, ok := c.(tgbotapi.ForwardConfig); ok {
		msg.Chat = &tgbotapi.Chat{ID: fwd.ChatID}
		if fwd.ChatID == 0 {
			msg.Chat.ID = -100999
		}
	}
	return msg, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetFile(cfg tgbotapi.FileConfig) (tgbotapi.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fileCalls++
	if f.fileErr != nil {
		return tgbotapi.File{}, f.fileErr
	}
	file := f.file
	file.FileID = cfg.FileID
	return file, nil
}

func (f *fakeAPI) GetMe() (tgbotapi.User, error) {
	return tgbotapi.User{ID: 1, IsBot: true, UserName: "vidstream_bot"}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.stopped {
		f.stopped = true
		close(f.updates)
	}
}

func (f *fakeAPI) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeAPI) forwards() []tgbotapi.ForwardConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.ForwardConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.ForwardConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeAPI) deletes() []tgbotapi.DeleteMessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.DeleteMessageConfig
	for _, c := range f.requests {
		if m, ok := c.(tgbotapi.DeleteMessageConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

type fakeStore struct {
	mu      sync.Mutex
	records map[string]content.Record
	created []content.Record
	stats   content.Stats
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]content.Record{}}
}

func (s *fakeStore) Create(_ context.Context, rec content.Record) (content.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return content.Record{}, s.err
	}
	rec.ID = "11111111-2222-3333-4444-555555555555"
	s.records[rec.ID] = rec
	s.created = append(s.created, rec)
	return rec, nil
}

func (s *fakeStore) Get(_ context.Context, id string) (content.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return content.Record{}, content.ErrNotFound
	}
	return rec, nil
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return content.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *fakeStore) Stats(_ context.Context, _ int64) (content.Stats, error) {
	return s.stats, s.err
}
