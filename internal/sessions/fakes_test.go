package sessions_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/JaimeStill/candor/internal/interview"
	"github.com/JaimeStill/candor/pkg/ai"
	"github.com/JaimeStill/candor/pkg/storage"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*interview.Session
	finds    int
}

func newMemStore() *memStore {
	return &memStore{sessions: map[uuid.UUID]*interview.Session{}}
}

func (s *memStore) Find(ctx context.Context, id uuid.UUID) (*interview.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finds++
	sess, ok := s.sessions[id]
	if !ok {
		return nil, interview.ErrNotFound
	}
	return sess.Clone(), nil
}

func (s *memStore) Save(ctx context.Context, sess *interview.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.sessions[sess.ID]
	if (sess.Version == 0 && ok) || (sess.Version != 0 && (!ok || existing.Version != sess.Version)) {
		return interview.ErrConflict
	}
	sess.Version++
	s.sessions[sess.ID] = sess.Clone()
	return nil
}

func (s *memStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return interview.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *memStore) List(ctx context.Context, state *interview.State) ([]interview.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []interview.Session{}
	for _, sess := range s.sessions {
		if state == nil || sess.State == *state {
			out = append(out, *sess.Clone())
		}
	}
	return out, nil
}

func (s *memStore) Pending(ctx context.Context) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []uuid.UUID
	for id, sess := range s.sessions {
		if sess.State.Busy() {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *memStore) findCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finds
}

type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (b *memBlobs) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	return nil
}

func (b *memBlobs) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *memBlobs) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

// provider walks a session through the workflow with canned responses.
type provider struct {
	mu    sync.Mutex
	count int
}

func (p *provider) Name() string { return "canned" }

func (p *provider) Transcribe(ctx context.Context, audio ai.Audio) (string, error) {
	return "raw speech", nil
}

func (p *provider) Generate(ctx context.Context, req ai.Request) (string, error) {
	switch req.Name {
	case "generate_question":
		p.mu.Lock()
		p.count++
		n := p.count
		p.mu.Unlock()
		return fmt.Sprintf("Question %d?", n), nil
	case "rephrase_question":
		return "Reworded question?", nil
	case "label_speakers":
		return "Interviewer: Question 1?\nCandidate: An answer.", nil
	case "extract_answer":
		return "An answer.", nil
	case "score_answer":
		return `{"evaluation":{"clarity":{"score":7,"justification":"a"},"correctness":{"score":8,"justification":"b"},"depth":{"score":9,"justification":"c"}},"overall_summary":"ok"}`, nil
	case "holistic_summary":
		return `{"overall_summary":"Solid candidate."}`, nil
	}
	return "", fmt.Errorf("unexpected call %s", strings.TrimSpace(req.Name))
}
