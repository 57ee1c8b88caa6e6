package interview

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Store persists session aggregates.
//
// Save inserts a session whose Version is zero and otherwise updates it only
// if the stored version still equals s.Version, returning ErrConflict when it
// does not. On success Save increments s.Version.
type Store interface {
	Find(ctx context.Context, id uuid.UUID) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, state *State) ([]Session, error)
	Pending(ctx context.Context) ([]uuid.UUID, error)
}

// Blobs holds recording audio.
type Blobs interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
