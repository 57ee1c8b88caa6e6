// Package interview implements the interview session workflow: the state
// machine over the session aggregate and the AI-backed components it drives
// to generate questions, transcribe and label recordings, and score answers.
package interview

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// Take is one captured audio upload.
type Take struct {
	Filename    string
	ContentType string
	Data        []byte
}

// System defines the public contract for interview session operations.
// Every mutating operation is serialized per session and persisted before
// it returns.
type System interface {
	Create(ctx context.Context) (*Session, error)
	Find(ctx context.Context, id uuid.UUID) (*Session, error)
	List(ctx context.Context, state *State) ([]Session, error)
	Pending(ctx context.Context) ([]uuid.UUID, error)

	Start(ctx context.Context, id uuid.UUID, cmd StartCommand) (*Session, error)
	RequestNextQuestion(ctx context.Context, id uuid.UUID) (*Session, error)
	RephraseLastQuestion(ctx context.Context, id uuid.UUID) (*Session, error)
	UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (*Session, error)
	Proceed(ctx context.Context, id uuid.UUID) (*Session, error)

	Capture(ctx context.Context, id uuid.UUID, take Take) (*Session, error)
	// Recording opens the 1-based index-th captured take. The caller closes the reader.
	Recording(ctx context.Context, id uuid.UUID, index int) (Recording, io.ReadCloser, error)
	ConfirmRecording(ctx context.Context, id uuid.UUID) (*Session, error)

	EditTranscript(ctx context.Context, id uuid.UUID, text string) (*Session, error)
	ConfirmTranscript(ctx context.Context, id uuid.UUID) (*Session, error)

	// Advance runs the automatic block of the session's current state.
	// It is a no-op outside processing and evaluating.
	Advance(ctx context.Context, id uuid.UUID) (*Session, error)

	// Discard deletes the session and its recordings and returns a fresh
	// session in setup with a new ID.
	Discard(ctx context.Context, id uuid.UUID) (*Session, error)

	Report(ctx context.Context, id uuid.UUID) (*Report, error)

	// Await polls until the session leaves a busy state or timeout elapses.
	// A non-positive timeout uses the configured default.
	Await(ctx context.Context, id uuid.UUID, timeout time.Duration) (*Session, error)
}
