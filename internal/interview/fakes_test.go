package interview_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/candor/internal/interview"
	"github.com/JaimeStill/candor/pkg/ai"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptProvider answers each call by name. Unscripted calls get defaults
// that walk a session through the whole workflow.
type scriptProvider struct {
	mu         sync.Mutex
	calls      map[string]int
	audio      [][]byte
	transcribe func(ai.Audio) (string, error)
	generate   map[string]func(ai.Request) (string, error)
}

func newScript() *scriptProvider {
	return &scriptProvider{
		calls:    map[string]int{},
		generate: map[string]func(ai.Request) (string, error){},
	}
}

func (p *scriptProvider) Name() string { return "script" }

func (p *scriptProvider) count(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[name]
}

func (p *scriptProvider) Transcribe(ctx context.Context, audio ai.Audio) (string, error) {
	p.mu.Lock()
	p.calls["transcribe"]++
	p.audio = append(p.audio, bytes.Clone(audio.Data))
	fn := p.transcribe
	p.mu.Unlock()

	if fn != nil {
		return fn(audio)
	}
	return "raw interview speech", nil
}

func (p *scriptProvider) Generate(ctx context.Context, req ai.Request) (string, error) {
	p.mu.Lock()
	p.calls[req.Name]++
	n := p.calls[req.Name]
	fn := p.generate[req.Name]
	p.mu.Unlock()

	if fn != nil {
		return fn(req)
	}

	switch req.Name {
	case "generate_question":
		return fmt.Sprintf("\"Question %d for the candidate?\"", n), nil
	case "rephrase_question":
		return "Rephrased question: " + lastLine(req.Prompt) + " (reworded)", nil
	case "label_speakers":
		return "Interviewer: Question 1 for the candidate?\nCandidate: An answer.", nil
	case "extract_answer":
		return "Candidate: answer to " + questionOf(req.Prompt), nil
	case "score_answer":
		return rubricJSON(8, 9, 6), nil
	case "holistic_summary":
		return `{"overall_summary":"Strong fundamentals.\n\nLight on trade-offs.\n\nLeaning hire."}`, nil
	}
	return "", fmt.Errorf("unscripted call %s", req.Name)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}

func questionOf(prompt string) string {
	lines := strings.Split(prompt, "\n")
	if len(lines) > 1 {
		return lines[1]
	}
	return ""
}

func rubricJSON(clarity, correctness, depth int) string {
	return fmt.Sprintf(`{
  "evaluation": {
    "clarity": {"score": %d, "justification": "c"},
    "correctness": {"score": %d, "justification": "k"},
    "depth": {"score": %d, "justification": "d"}
  },
  "overall_summary": "ok"
}`, clarity, correctness, depth)
}

// memStore is an in-memory Store with optimistic versioning.
type memStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*interview.Session
	saves    int
}

func newMemStore() *memStore {
	return &memStore{sessions: map[uuid.UUID]*interview.Session{}}
}

func (s *memStore) Find(ctx context.Context, id uuid.UUID) (*interview.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
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
	switch {
	case sess.Version == 0 && ok:
		return interview.ErrConflict
	case sess.Version != 0 && (!ok || existing.Version != sess.Version):
		return interview.ErrConflict
	}

	sess.Version++
	s.sessions[sess.ID] = sess.Clone()
	s.saves++
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
	var out []interview.Session
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

func (s *memStore) put(sess *interview.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess.Clone()
}

// memBlobs is an in-memory Blobs.
type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	fail    error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: map[string][]byte{}}
}

func (b *memBlobs) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if b.fail != nil {
		return b.fail
	}
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
		return nil, errors.New("blob not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *memBlobs) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

func (b *memBlobs) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

type harness struct {
	sys    interview.System
	store  *memStore
	blobs  *memBlobs
	script *scriptProvider
	cfg    *interview.Config
}

func newHarness(t *testing.T, mutate func(*interview.Config)) *harness {
	t.Helper()

	cfg := &interview.Config{MinRecordingSize: "16B", PollInterval: "5ms", PollMaxInterval: "20ms"}
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize error: %v", err)
	}

	h := &harness{
		store:  newMemStore(),
		blobs:  newMemBlobs(),
		script: newScript(),
		cfg:    cfg,
	}

	sys, err := interview.New(&interview.Runtime{
		Config:  cfg,
		Gateway: ai.NewGateway(h.script, time.Second, discard()),
		Store:   h.store,
		Blobs:   h.blobs,
		Logger:  discard(),
	})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	h.sys = sys
	return h
}

func audio(n int) interview.Take {
	return interview.Take{
		Filename:    "take.webm",
		ContentType: "audio/webm",
		Data:        bytes.Repeat([]byte{0x1a}, n),
	}
}

// toRecording walks a new session to the recording state with n questions.
func (h *harness) toRecording(t *testing.T, n int) *interview.Session {
	t.Helper()
	ctx := context.Background()

	s, err := h.sys.Create(ctx)
	must(t, err)
	s, err = h.sys.Start(ctx, s.ID, interview.StartCommand{Name: "Asha", Compensation: 40})
	must(t, err)
	for range n {
		s, err = h.sys.RequestNextQuestion(ctx, s.ID)
		must(t, err)
	}
	s, err = h.sys.Proceed(ctx, s.ID)
	must(t, err)
	return s
}

// toConfirmation captures audio and advances through processing.
func (h *harness) toConfirmation(t *testing.T, n int) *interview.Session {
	t.Helper()
	ctx := context.Background()

	s := h.toRecording(t, n)
	_, err := h.sys.Capture(ctx, s.ID, audio(64))
	must(t, err)
	_, err = h.sys.ConfirmRecording(ctx, s.ID)
	must(t, err)
	s, err = h.sys.Advance(ctx, s.ID)
	must(t, err)
	if s.State != interview.StateTranscriptConfirmation {
		t.Fatalf("state = %s, want transcript_confirmation", s.State)
	}
	return s
}

// toReport confirms the transcript and advances through evaluation.
func (h *harness) toReport(t *testing.T, n int) *interview.Session {
	t.Helper()
	ctx := context.Background()

	s := h.toConfirmation(t, n)
	_, err := h.sys.ConfirmTranscript(ctx, s.ID)
	must(t, err)
	s, err = h.sys.Advance(ctx, s.ID)
	must(t, err)
	return s
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
