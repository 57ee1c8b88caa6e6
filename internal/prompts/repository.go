package prompts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/candor/pkg/repository"
)

const projection = `SELECT id, name, stage, instructions, description, active, created_at, updated_at FROM prompts`

const returning = `RETURNING id, name, stage, instructions, description, active, created_at, updated_at`

var (
	findErrors = repository.Errors{
		NotFound: ErrNotFound,
	}
	writeErrors = repository.Errors{
		NotFound:  ErrNotFound,
		Duplicate: ErrDuplicate,
		Conflict:  ErrConflict,
	}
	// A unique violation while activating is a concurrent activation for
	// the same stage, not a name clash.
	activateErrors = repository.Errors{
		NotFound:  ErrNotFound,
		Duplicate: ErrConflict,
		Conflict:  ErrConflict,
	}
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a PostgreSQL-backed prompt override system.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "prompts"),
	}
}

func scanPrompt(s repository.Scanner) (Prompt, error) {
	var p Prompt
	err := s.Scan(
		&p.ID, &p.Name, &p.Stage, &p.Instructions, &p.Description,
		&p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func scanText(s repository.Scanner) (string, error) {
	var text string
	err := s.Scan(&text)
	return text, err
}

func (r *repo) List(ctx context.Context, filter Filter) ([]Prompt, error) {
	var (
		where []string
		args  []any
	)
	if filter.Stage != nil {
		args = append(args, string(*filter.Stage))
		where = append(where, fmt.Sprintf("stage = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		where = append(where, fmt.Sprintf("active = $%d", len(args)))
	}

	q := projection
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY stage, name"

	items, err := repository.QueryMany(ctx, r.db, q, args, scanPrompt)
	if err != nil {
		return nil, fmt.Errorf("query prompts: %w", err)
	}
	return items, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	p, err := repository.QueryOne(ctx, r.db, projection+" WHERE id = $1", []any{id}, scanPrompt)
	if err != nil {
		return nil, findErrors.Map(err)
	}
	return &p, nil
}

func (r *repo) Create(ctx context.Context, cmd Command) (*Prompt, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	p, err := repository.QueryOne(
		ctx, r.db,
		`INSERT INTO prompts(name, stage, instructions, description)
		VALUES ($1, $2, $3, $4) `+returning,
		[]any{cmd.Name, string(cmd.Stage), cmd.Instructions, cmd.Description},
		scanPrompt,
	)
	if err != nil {
		return nil, writeErrors.Map(err)
	}

	r.logger.Info("prompt created", "id", p.ID, "name", p.Name, "stage", p.Stage)
	return &p, nil
}

// Update replaces the editable fields. Moving a prompt to another stage
// clears its active flag.
func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd Command) (*Prompt, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	p, err := repository.QueryOne(
		ctx, r.db,
		`UPDATE prompts
		SET name = $2, stage = $3, instructions = $4, description = $5,
			active = active AND stage = $3, updated_at = NOW()
		WHERE id = $1 `+returning,
		[]any{id, cmd.Name, string(cmd.Stage), cmd.Instructions, cmd.Description},
		scanPrompt,
	)
	if err != nil {
		return nil, writeErrors.Map(err)
	}

	r.logger.Info("prompt updated", "id", p.ID, "name", p.Name, "stage", p.Stage)
	return &p, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM prompts WHERE id = $1", id); err != nil {
		return findErrors.Map(err)
	}
	r.logger.Info("prompt deleted", "id", id)
	return nil
}

func (r *repo) Activate(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	var p Prompt
	err := repository.WithTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		stage, err := repository.QueryOne(
			ctx, tx,
			"SELECT stage FROM prompts WHERE id = $1 FOR UPDATE",
			[]any{id},
			scanText,
		)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(
			ctx,
			`UPDATE prompts SET active = false, updated_at = NOW()
			WHERE stage = $1 AND active AND id <> $2`,
			stage, id,
		); err != nil {
			return err
		}

		p, err = repository.QueryOne(
			ctx, tx,
			"UPDATE prompts SET active = true, updated_at = NOW() WHERE id = $1 "+returning,
			[]any{id},
			scanPrompt,
		)
		return err
	})
	if err != nil {
		return nil, activateErrors.Map(err)
	}

	r.logger.Info("prompt activated", "id", p.ID, "name", p.Name, "stage", p.Stage)
	return &p, nil
}

func (r *repo) Deactivate(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	p, err := repository.QueryOne(
		ctx, r.db,
		"UPDATE prompts SET active = false, updated_at = NOW() WHERE id = $1 "+returning,
		[]any{id},
		scanPrompt,
	)
	if err != nil {
		return nil, findErrors.Map(err)
	}

	r.logger.Info("prompt deactivated", "id", p.ID, "name", p.Name, "stage", p.Stage)
	return &p, nil
}

// Instructions returns the active override for stage, or the built-in
// instructions when no override is active.
func (r *repo) Instructions(ctx context.Context, stage Stage) (string, error) {
	text, _, err := r.resolve(ctx, stage)
	return text, err
}

func (r *repo) Effective(ctx context.Context, stage Stage) (*StageText, error) {
	text, overridden, err := r.resolve(ctx, stage)
	if err != nil {
		return nil, err
	}
	spec, err := Spec(stage)
	if err != nil {
		return nil, err
	}
	return &StageText{
		Stage:        stage,
		Instructions: text,
		Spec:         spec,
		Overridden:   overridden,
	}, nil
}

func (r *repo) resolve(ctx context.Context, stage Stage) (string, bool, error) {
	builtin, err := Instructions(stage)
	if err != nil {
		return "", false, err
	}

	text, err := repository.QueryOne(
		ctx, r.db,
		"SELECT instructions FROM prompts WHERE stage = $1 AND active",
		[]any{string(stage)},
		scanText,
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return builtin, false, nil
	case err != nil:
		return "", false, fmt.Errorf("query active prompt for %s: %w", stage, err)
	}
	return text, true, nil
}
