package sessions

import (
	"context"
	"errors"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/JaimeStill/candor/internal/interview"
)

type cachedStore struct {
	interview.Store
	cache *lru.Cache[uuid.UUID, *interview.Session]
}

// NewCache wraps store with a read-through LRU cache of size entries.
// Entries are written on every successful Save and dropped on conflicts and
// deletes. A size of zero disables caching.
func NewCache(store interview.Store, size int) (interview.Store, error) {
	if size == 0 {
		return store, nil
	}

	cache, err := lru.New[uuid.UUID, *interview.Session](size)
	if err != nil {
		return nil, err
	}
	return &cachedStore{Store: store, cache: cache}, nil
}

func (c *cachedStore) Find(ctx context.Context, id uuid.UUID) (*interview.Session, error) {
	if s, ok := c.cache.Get(id); ok {
		return s.Clone(), nil
	}

	s, err := c.Store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	c.cache.Add(id, s.Clone())
	return s, nil
}

func (c *cachedStore) Save(ctx context.Context, s *interview.Session) error {
	if err := c.Store.Save(ctx, s); err != nil {
		if errors.Is(err, interview.ErrConflict) {
			c.cache.Remove(s.ID)
		}
		return err
	}
	c.cache.Add(s.ID, s.Clone())
	return nil
}

func (c *cachedStore) Delete(ctx context.Context, id uuid.UUID) error {
	c.cache.Remove(id)
	return c.Store.Delete(ctx, id)
}
