package checkpoint

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const memoryCleanupInterval = 10 * time.Minute

// MemoryStore keeps checkpoints in process memory. Entries expire
// after the configured TTL; a TTL of zero keeps them forever.
type MemoryStore struct {
	cache *gocache.Cache
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &MemoryStore{
		cache: gocache.New(ttl, memoryCleanupInterval),
	}
}

func (s *MemoryStore) Get(ctx context.Context, threadID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, ok := s.cache.Get(threadID)
	if !ok {
		return nil, ErrNotFound
	}
	state := raw.([]byte)
	return append([]byte(nil), state...), nil
}

func (s *MemoryStore) Put(ctx context.Context, threadID string, state []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.cache.Set(threadID, append([]byte(nil), state...), gocache.DefaultExpiration)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, threadID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.cache.Delete(threadID)
	return nil
}

var _ Store = &MemoryStore{}
