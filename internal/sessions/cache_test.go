package sessions_test

import (
	"context"
	"errors"
	"testing"

	"github.com/JaimeStill/candor/internal/interview"
	"github.com/JaimeStill/candor/internal/sessions"
)

func TestCacheServesRepeatedFinds(t *testing.T) {
	ctx := context.Background()
	backing := newMemStore()

	store, err := sessions.NewCache(backing, 8)
	if err != nil {
		t.Fatalf("NewCache error: %v", err)
	}

	s := interview.NewSession(4, interview.TakeSingle)
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	for range 3 {
		got, err := store.Find(ctx, s.ID)
		if err != nil {
			t.Fatalf("Find error: %v", err)
		}
		if got.Version != 1 {
			t.Errorf("version = %d, want 1", got.Version)
		}
	}

	if backing.findCount() != 0 {
		t.Errorf("backing finds = %d, want 0", backing.findCount())
	}
}

func TestCacheReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store, _ := sessions.NewCache(newMemStore(), 8)

	s := interview.NewSession(4, interview.TakeSingle)
	if err := store.Save(ctx, s); err != nil {
		t.Fatal(err)
	}

	first, _ := store.Find(ctx, s.ID)
	first.Notes = "mutated"

	second, _ := store.Find(ctx, s.ID)
	if second.Notes != "" {
		t.Error("cached session was mutated through a returned copy")
	}
}

func TestCacheDropsEntryOnConflict(t *testing.T) {
	ctx := context.Background()
	backing := newMemStore()
	store, _ := sessions.NewCache(backing, 8)

	s := interview.NewSession(4, interview.TakeSingle)
	if err := store.Save(ctx, s); err != nil {
		t.Fatal(err)
	}

	stale := s.Clone()
	stale.Version = 0
	if err := store.Save(ctx, stale); !errors.Is(err, interview.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	if _, err := store.Find(ctx, s.ID); err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if backing.findCount() != 1 {
		t.Errorf("backing finds = %d, want 1", backing.findCount())
	}
}

func TestCacheDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := sessions.NewCache(newMemStore(), 8)

	s := interview.NewSession(4, interview.TakeSingle)
	if err := store.Save(ctx, s); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, s.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := store.Find(ctx, s.ID); !errors.Is(err, interview.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCacheDisabled(t *testing.T) {
	backing := newMemStore()
	store, err := sessions.NewCache(backing, 0)
	if err != nil {
		t.Fatal(err)
	}
	if store != interview.Store(backing) {
		t.Error("size 0 should return the backing store")
	}
}
