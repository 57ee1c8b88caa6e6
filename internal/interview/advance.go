package interview

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/candor/internal/prompts"
	"github.com/JaimeStill/candor/pkg/ai"
)

func (m *machine) Advance(ctx context.Context, id uuid.UUID) (*Session, error) {
	if _, running := m.inflight.LoadOrStore(id, struct{}{}); running {
		return nil, fmt.Errorf("%w: advance already running", ErrBusy)
	}
	defer m.inflight.Delete(id)

	s, err := m.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.State.Busy() {
		return s, nil
	}

	if err := s.Validate(); err != nil {
		return m.abort(ctx, s, err)
	}

	switch s.State {
	case StateProcessing:
		return m.process(ctx, s)
	case StateEvaluating:
		return m.evaluate(ctx, s)
	}
	return s, nil
}

// commit persists an automatic action. It ignores caller cancellation so a
// finished AI step is never lost to a closing request or shutdown.
func (m *machine) commit(ctx context.Context, id uuid.UUID, action Action, fn func(*Session) error) (*Session, error) {
	return m.apply(context.WithoutCancel(ctx), id, action, fn)
}

// abort resets a session whose aggregate can no longer be advanced.
// The ID is kept so the operator sees the diagnostic on the next read.
func (m *machine) abort(ctx context.Context, s *Session, cause error) (*Session, error) {
	m.logger.ErrorContext(ctx, "session aborted", "id", s.ID, "state", s.State, "error", cause)

	recordings := s.Recordings
	out, err := m.commit(ctx, s.ID, ActionAbort, func(w *Session) error {
		fresh := NewSession(w.SlotLimit, w.TakeMode)
		fresh.ID = w.ID
		fresh.Version = w.Version
		fresh.CreatedAt = w.CreatedAt
		fresh.Diagnostic = "session reset after fatal error: " + cause.Error()
		*w = *fresh
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, r := range recordings {
		m.deleteBlob(ctx, r.Key)
	}
	return out, nil
}

// process transcribes every recording, joins the text, and labels speakers.
// Failure returns the session to recording with its audio intact.
func (m *machine) process(ctx context.Context, s *Session) (*Session, error) {
	raw, labeled, err := m.transcribe(ctx, s)
	if err != nil {
		if isCanceled(ctx, err) {
			m.logger.WarnContext(ctx, "processing interrupted", "id", s.ID)
			return s, ctx.Err()
		}

		m.logger.WarnContext(ctx, "processing failed", "id", s.ID, "error", err)
		return m.commit(ctx, s.ID, ActionProcessingFailed, func(w *Session) error {
			w.Diagnostic = "processing failed: " + err.Error()
			return nil
		})
	}

	return m.commit(ctx, s.ID, ActionTranscribed, func(w *Session) error {
		w.RawTranscript = raw
		w.Transcript = &Transcript{Text: labeled}
		w.Diagnostic = ""
		return nil
	})
}

func (m *machine) transcribe(ctx context.Context, s *Session) (raw, labeled string, err error) {
	parts := make([]string, 0, len(s.Recordings))

	for i, rec := range s.Recordings {
		audio, err := m.readRecording(ctx, rec)
		if err != nil {
			return "", "", fmt.Errorf("recording %d: %w", i+1, err)
		}

		text, err := m.transcripts.Transcribe(ctx, audio)
		if err != nil {
			return "", "", fmt.Errorf("recording %d: %w", i+1, err)
		}
		parts = append(parts, text)
	}

	raw = strings.Join(parts, "\n\n")

	labeled, err = m.transcripts.LabelSpeakers(ctx, raw, s.Questions())
	if err != nil {
		return "", "", err
	}
	return raw, labeled, nil
}

func (m *machine) readRecording(ctx context.Context, rec Recording) (ai.Audio, error) {
	rc, err := m.blobs.Download(ctx, rec.Key)
	if err != nil {
		return ai.Audio{}, fmt.Errorf("download: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return ai.Audio{}, fmt.Errorf("read: %w", err)
	}

	return ai.Audio{
		Data:        data,
		Filename:    rec.Filename,
		ContentType: rec.ContentType,
	}, nil
}

// evaluate extracts and scores every unanswered slot, then writes the
// holistic summary. Per-answer and summary failures are absorbed; only
// cancellation leaves the session in evaluating for a later resume.
func (m *machine) evaluate(ctx context.Context, s *Session) (*Session, error) {
	var err error

	if m.cfg.EvaluationWorkers > 1 {
		s, err = m.evaluateParallel(ctx, s)
	} else {
		s, err = m.evaluateSequential(ctx, s)
	}
	if err != nil {
		return s, err
	}

	summary, err := m.evaluator.HolisticSummary(ctx, s.Candidate.Role, s.Answers)
	if err != nil {
		if isCanceled(ctx, err) {
			return s, ctx.Err()
		}
		m.logger.WarnContext(ctx, "holistic summary failed", "id", s.ID, "error", err)
		summary = prompts.SummaryUnavailable
	}

	out, err := m.commit(ctx, s.ID, ActionEvaluated, func(w *Session) error {
		w.Summary = summary
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.InfoContext(ctx, "evaluation complete", "id", s.ID, "answers", len(out.Answers), "degraded", countDegraded(out.Answers))
	return out, nil
}

func (m *machine) evaluateSequential(ctx context.Context, s *Session) (*Session, error) {
	role := s.Candidate.Role
	transcript := s.Transcript.Text

	for _, slot := range s.PendingSlots() {
		answer := m.evaluateSlot(ctx, role, slot, transcript)
		if ctx.Err() != nil {
			return s, ctx.Err()
		}

		next, err := m.commit(ctx, s.ID, ActionAnswered, func(w *Session) error {
			w.RecordAnswers(answer)
			return nil
		})
		if err != nil {
			return nil, err
		}
		s = next
	}

	return s, nil
}

func (m *machine) evaluateParallel(ctx context.Context, s *Session) (*Session, error) {
	role := s.Candidate.Role
	transcript := s.Transcript.Text
	pending := s.PendingSlots()
	if len(pending) == 0 {
		return s, nil
	}

	answers := make([]Answer, len(pending))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.EvaluationWorkers)

	for i, slot := range pending {
		g.Go(func() error {
			answers[i] = m.evaluateSlot(gctx, role, slot, transcript)
			return nil
		})
	}

	_ = g.Wait()
	if ctx.Err() != nil {
		return s, ctx.Err()
	}

	return m.commit(ctx, s.ID, ActionAnswered, func(w *Session) error {
		w.RecordAnswers(answers...)
		return nil
	})
}

// evaluateSlot never fails: extraction failure yields the no-answer
// sentinel with an empty evaluation, scoring failure an empty evaluation.
func (m *machine) evaluateSlot(ctx context.Context, role RoleLevel, slot Slot, transcript string) Answer {
	answer := Answer{SlotIndex: slot.Index, Question: slot.Text}

	text, err := m.transcripts.ExtractAnswer(ctx, slot.Text, transcript)
	if err != nil {
		m.logger.WarnContext(ctx, "answer extraction failed", "slot", slot.Index, "error", err)
		answer.Text = prompts.NoAnswer
		answer.Evaluation = EmptyEvaluation()
		answer.Degraded = true
		answer.Diagnostic = "answer extraction failed: " + err.Error()
		return answer
	}
	answer.Text = text

	eval, err := m.evaluator.ScoreAnswer(ctx, role, slot.Text, text)
	if err != nil {
		m.logger.WarnContext(ctx, "answer scoring failed", "slot", slot.Index, "error", err)
		answer.Evaluation = EmptyEvaluation()
		answer.Degraded = true
		answer.Diagnostic = "scoring failed: " + err.Error()
		return answer
	}

	answer.Evaluation = eval
	return answer
}

func countDegraded(answers []Answer) int {
	var n int
	for _, a := range answers {
		if a.Degraded {
			n++
		}
	}
	return n
}
