package interview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/candor/internal/prompts"
	"github.com/JaimeStill/candor/pkg/formatting"
)

type machine struct {
	store       Store
	blobs       Blobs
	cfg         *Config
	questions   *QuestionGenerator
	transcripts *TranscriptProcessor
	evaluator   *Evaluator
	logger      *slog.Logger

	minRecording int64
	locks        sync.Map
	inflight     sync.Map
}

// New creates the session machine implementing the System interface.
// When rt.Catalog is nil the catalog is loaded from Config.ArchetypesFile,
// falling back to the built-in catalog.
func New(rt *Runtime) (System, error) {
	catalog := rt.Catalog
	if catalog == nil {
		catalog = prompts.DefaultCatalog()
		if rt.Config.ArchetypesFile != "" {
			c, err := prompts.LoadCatalog(rt.Config.ArchetypesFile)
			if err != nil {
				return nil, err
			}
			catalog = c
		}
	}

	if rt.Config.SlotCount > catalog.Len() {
		return nil, fmt.Errorf(
			"slot_count %d exceeds the %d question archetypes available",
			rt.Config.SlotCount, catalog.Len(),
		)
	}

	return &machine{
		store:        rt.Store,
		blobs:        rt.Blobs,
		cfg:          rt.Config,
		questions:    NewQuestionGenerator(rt.Gateway, catalog, rt.Prompts),
		transcripts:  NewTranscriptProcessor(rt.Gateway, rt.Prompts),
		evaluator:    NewEvaluator(rt.Gateway, rt.Prompts),
		logger:       rt.Logger.With("system", "interview"),
		minRecording: rt.Config.MinRecordingBytes(),
	}, nil
}

func (m *machine) Create(ctx context.Context) (*Session, error) {
	s := NewSession(m.cfg.SlotCount, TakeMode(m.cfg.TakeMode))
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	m.logger.InfoContext(ctx, "session created", "id", s.ID, "slot_limit", s.SlotLimit)
	return s, nil
}

func (m *machine) Find(ctx context.Context, id uuid.UUID) (*Session, error) {
	return m.store.Find(ctx, id)
}

func (m *machine) List(ctx context.Context, state *State) ([]Session, error) {
	return m.store.List(ctx, state)
}

func (m *machine) Pending(ctx context.Context) ([]uuid.UUID, error) {
	return m.store.Pending(ctx)
}

func (m *machine) Start(ctx context.Context, id uuid.UUID, cmd StartCommand) (*Session, error) {
	return m.apply(ctx, id, ActionStart, func(s *Session) error {
		c, err := NewCandidate(cmd, m.cfg)
		if err != nil {
			return err
		}
		s.Candidate = c
		return nil
	})
}

func (m *machine) RequestNextQuestion(ctx context.Context, id uuid.UUID) (*Session, error) {
	return m.apply(ctx, id, ActionRequestQuestion, func(s *Session) error {
		if len(s.Slots) >= s.SlotLimit {
			return fmt.Errorf("%w: %d of %d", ErrSlotLimit, len(s.Slots), s.SlotLimit)
		}

		slot, err := m.questions.Generate(ctx, s.Candidate.Role, len(s.Slots)+1)
		if err != nil {
			return err
		}
		s.Slots = append(s.Slots, slot)
		return nil
	})
}

func (m *machine) RephraseLastQuestion(ctx context.Context, id uuid.UUID) (*Session, error) {
	return m.apply(ctx, id, ActionRephraseQuestion, func(s *Session) error {
		if len(s.Slots) == 0 {
			return ErrNoQuestions
		}

		last := &s.Slots[len(s.Slots)-1]
		text, err := m.questions.Rephrase(ctx, last.Text)
		if err != nil {
			return err
		}
		last.Text = text
		last.Origin = OriginRephrased
		return nil
	})
}

func (m *machine) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (*Session, error) {
	return m.apply(ctx, id, ActionUpdateNotes, func(s *Session) error {
		s.Notes = notes
		return nil
	})
}

func (m *machine) Proceed(ctx context.Context, id uuid.UUID) (*Session, error) {
	return m.apply(ctx, id, ActionProceed, nil)
}

func (m *machine) Capture(ctx context.Context, id uuid.UUID, take Take) (*Session, error) {
	if int64(len(take.Data)) < m.minRecording {
		return nil, fmt.Errorf(
			"%w: got %s, need at least %s",
			ErrEmptyRecording,
			formatting.FormatBytes(int64(len(take.Data)), 1),
			formatting.FormatBytes(m.minRecording, 1),
		)
	}

	var uploaded string
	var replaced []Recording

	s, err := m.apply(ctx, id, ActionCapture, func(s *Session) error {
		rec := Recording{
			Key:         recordingKey(s.ID, take.Filename),
			Filename:    take.Filename,
			ContentType: take.ContentType,
			Size:        int64(len(take.Data)),
			CapturedAt:  time.Now().UTC(),
		}

		if err := m.blobs.Upload(ctx, rec.Key, bytes.NewReader(take.Data), rec.Size, rec.ContentType); err != nil {
			return fmt.Errorf("upload recording: %w", err)
		}
		uploaded = rec.Key

		if s.TakeMode == TakeSingle {
			replaced = s.Recordings
			s.Recordings = []Recording{rec}
		} else {
			s.Recordings = append(s.Recordings, rec)
		}
		return nil
	})

	if err != nil {
		if uploaded != "" {
			m.deleteBlob(ctx, uploaded)
		}
		return nil, err
	}

	for _, r := range replaced {
		m.deleteBlob(ctx, r.Key)
	}
	return s, nil
}

func (m *machine) Recording(ctx context.Context, id uuid.UUID, index int) (Recording, io.ReadCloser, error) {
	s, err := m.store.Find(ctx, id)
	if err != nil {
		return Recording{}, nil, err
	}
	if index < 1 || index > len(s.Recordings) {
		return Recording{}, nil, fmt.Errorf("%w: recording %d", ErrNotFound, index)
	}

	rec := s.Recordings[index-1]
	rc, err := m.blobs.Download(ctx, rec.Key)
	if err != nil {
		return Recording{}, nil, fmt.Errorf("download recording: %w", err)
	}
	return rec, rc, nil
}

func (m *machine) ConfirmRecording(ctx context.Context, id uuid.UUID) (*Session, error) {
	return m.apply(ctx, id, ActionConfirmRecording, func(s *Session) error {
		if len(s.Recordings) == 0 {
			return ErrNoRecording
		}
		s.Diagnostic = ""
		return nil
	})
}

func (m *machine) EditTranscript(ctx context.Context, id uuid.UUID, text string) (*Session, error) {
	return m.apply(ctx, id, ActionEditTranscript, func(s *Session) error {
		s.Transcript.Text = formatting.NormalizeNewlines(text)
		s.Transcript.Edited = true
		return nil
	})
}

func (m *machine) ConfirmTranscript(ctx context.Context, id uuid.UUID) (*Session, error) {
	return m.apply(ctx, id, ActionConfirmTranscript, func(s *Session) error {
		if strings.TrimSpace(s.Transcript.Text) == "" {
			return fmt.Errorf("%w: transcript is empty", ErrValidation)
		}
		s.Transcript.Frozen = true
		return nil
	})
}

func (m *machine) Discard(ctx context.Context, id uuid.UUID) (*Session, error) {
	unlock := m.lock(id)
	defer unlock()

	s, err := m.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := Transition(s.State, ActionDiscard); err != nil {
		return nil, err
	}

	if err := m.store.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("delete session: %w", err)
	}
	m.locks.Delete(id)
	for _, r := range s.Recordings {
		m.deleteBlob(ctx, r.Key)
	}
	m.logger.InfoContext(ctx, "session discarded", "id", id, "state", s.State)

	return m.Create(ctx)
}

func (m *machine) Report(ctx context.Context, id uuid.UUID) (*Report, error) {
	s, err := m.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return BuildReport(s)
}

// apply runs one action under the session lock: load, guard the transition,
// mutate a copy, validate, and save. A nil fn only transitions.
func (m *machine) apply(ctx context.Context, id uuid.UUID, action Action, fn func(*Session) error) (*Session, error) {
	unlock := m.lock(id)
	defer unlock()

	current, err := m.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := Transition(current.State, action)
	if err != nil {
		return nil, err
	}

	s := current.Clone()
	if fn != nil {
		if err := fn(s); err != nil {
			return nil, err
		}
	}

	prev := s.State
	s.State = next
	s.UpdatedAt = time.Now().UTC()

	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	m.logger.InfoContext(
		ctx, "session updated",
		"id", id,
		"action", action,
		"from", prev,
		"to", next,
	)
	return s, nil
}

// lock serializes operations on one session.
func (m *machine) lock(id uuid.UUID) func() {
	v, _ := m.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (m *machine) deleteBlob(ctx context.Context, key string) {
	if err := m.blobs.Delete(context.WithoutCancel(ctx), key); err != nil {
		m.logger.WarnContext(ctx, "recording delete failed", "key", key, "error", err)
	}
}

func recordingKey(id uuid.UUID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || strings.ContainsAny(ext, `/\`) {
		ext = ".bin"
	}
	return fmt.Sprintf("sessions/%s/recordings/%s%s", id, uuid.New(), ext)
}

func isCanceled(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}
