package repository_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/candor/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
	errConflict  = errors.New("conflict")
)

func TestErrorsMap(t *testing.T) {
	full := repository.Errors{
		NotFound:  errNotFound,
		Duplicate: errDuplicate,
		Conflict:  errConflict,
	}
	other := errors.New("some other error")
	foreignKey := &pgconn.PgError{Code: "23503"}
	serialization := &pgconn.PgError{Code: "40001"}

	tests := []struct {
		name string
		m    repository.Errors
		err  error
		want error
	}{
		{"nil", full, nil, nil},
		{"no rows", full, sql.ErrNoRows, errNotFound},
		{"wrapped no rows", full, fmt.Errorf("scan: %w", sql.ErrNoRows), errNotFound},
		{"unique violation", full, &pgconn.PgError{Code: "23505"}, errDuplicate},
		{"serialization failure", full, serialization, errConflict},
		{"deadlock", full, &pgconn.PgError{Code: "40P01"}, errConflict},
		{"other pg error", full, foreignKey, foreignKey},
		{"passthrough", full, other, other},
		{"unmapped kind kept", repository.Errors{NotFound: errNotFound}, serialization, serialization},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.Map(tt.err)
			if got != tt.want {
				t.Errorf("Map = %v, want %v", got, tt.want)
			}
		})
	}
}

type payload struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func TestJSONColumn(t *testing.T) {
	in := repository.JSON[payload]{V: payload{Name: "asha", Items: []string{"a", "b"}}}

	v, err := in.Value()
	if err != nil {
		t.Fatalf("Value error: %v", err)
	}

	var out repository.JSON[payload]
	if err := out.Scan(v); err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if out.V.Name != "asha" || len(out.V.Items) != 2 {
		t.Errorf("Scan = %+v", out.V)
	}

	if err := out.Scan(`{"name":"text"}`); err != nil || out.V.Name != "text" {
		t.Errorf("Scan(string) = %+v, %v", out.V, err)
	}

	if err := out.Scan(nil); err != nil || out.V.Name != "" {
		t.Errorf("Scan(nil) = %+v, %v", out.V, err)
	}

	if err := out.Scan(42); err == nil {
		t.Error("Scan(int) should fail")
	}
	if err := out.Scan([]byte("{")); err == nil {
		t.Error("Scan(truncated) should fail")
	}
}
