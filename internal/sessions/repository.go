// Package sessions persists interview sessions in PostgreSQL and exposes the
// interview workflow over HTTP.
package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/candor/internal/interview"
	"github.com/JaimeStill/candor/pkg/repository"
)

const projection = "SELECT data, version FROM sessions"

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRepository creates a PostgreSQL-backed session store. The aggregate is
// stored as JSONB next to indexed state and version columns.
func NewRepository(db *sql.DB, logger *slog.Logger) interview.Store {
	return &repo{
		db:     db,
		logger: logger.With("system", "sessions"),
	}
}

// findErrors maps reads and deletes; saveErrors treats a missing row as a
// version mismatch, since the update is keyed on id and version.
var (
	findErrors = repository.Errors{
		NotFound: interview.ErrNotFound,
		Conflict: interview.ErrConflict,
	}
	saveErrors = repository.Errors{
		NotFound:  interview.ErrConflict,
		Duplicate: interview.ErrConflict,
		Conflict:  interview.ErrConflict,
	}
)

func scanSession(s repository.Scanner) (interview.Session, error) {
	var (
		data    repository.JSON[interview.Session]
		version int
	)
	if err := s.Scan(&data, &version); err != nil {
		return interview.Session{}, err
	}
	data.V.Version = version
	return data.V, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*interview.Session, error) {
	s, err := repository.QueryOne(
		ctx, r.db,
		projection+" WHERE id = $1",
		[]any{id},
		scanSession,
	)
	if err != nil {
		return nil, findErrors.Map(err)
	}
	return &s, nil
}

func (r *repo) Save(ctx context.Context, s *interview.Session) error {
	next := s.Version + 1

	stored := *s
	stored.Version = next
	data := repository.JSON[*interview.Session]{V: &stored}

	err := repository.WithTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		if s.Version == 0 {
			_, err := tx.ExecContext(
				ctx,
				`INSERT INTO sessions(id, state, version, data, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				s.ID, string(s.State), next, data, s.CreatedAt, s.UpdatedAt,
			)
			return err
		}

		return repository.ExecExpectOne(
			ctx, tx,
			`UPDATE sessions
			SET state = $2, version = $3, data = $4, updated_at = $5
			WHERE id = $1 AND version = $6`,
			s.ID, string(s.State), next, data, s.UpdatedAt, s.Version,
		)
	})
	if err != nil {
		if mapped := saveErrors.Map(err); errors.Is(mapped, interview.ErrConflict) {
			return mapped
		}
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}

	s.Version = next
	return nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM sessions WHERE id = $1", id)
	if err != nil {
		return findErrors.Map(err)
	}
	r.logger.Info("session deleted", "id", id)
	return nil
}

func (r *repo) List(ctx context.Context, state *interview.State) ([]interview.Session, error) {
	q := projection
	var args []any
	if state != nil {
		q += " WHERE state = $1"
		args = append(args, string(*state))
	}
	q += " ORDER BY updated_at DESC"

	sessions, err := repository.QueryMany(ctx, r.db, q, args, scanSession)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	return sessions, nil
}

func (r *repo) Pending(ctx context.Context) ([]uuid.UUID, error) {
	ids, err := repository.QueryMany(
		ctx, r.db,
		"SELECT id FROM sessions WHERE state IN ($1, $2) ORDER BY updated_at",
		[]any{string(interview.StateProcessing), string(interview.StateEvaluating)},
		func(s repository.Scanner) (uuid.UUID, error) {
			var id uuid.UUID
			err := s.Scan(&id)
			return id, err
		},
	)
	if err != nil {
		return nil, fmt.Errorf("query pending sessions: %w", err)
	}
	return ids, nil
}
