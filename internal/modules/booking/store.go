// README: Draft stores; Redis with TTL in deployments, memory for local runs and tests.
package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"gosnap/internal/types"
)

const draftKeyPrefix = "booking:draft:%s"

type RedisStore struct {
	redis *redis.Client
}

func NewRedisStore(redis *redis.Client) *RedisStore {
	return &RedisStore{redis: redis}
}

func (s *RedisStore) Save(ctx context.Context, d Draft, ttl time.Duration) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, draftKey(d.ID), raw, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, id types.ID) (Draft, error) {
	raw, err := s.redis.Get(ctx, draftKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Draft{}, ErrNotFound
	}
	if err != nil {
		return Draft{}, err
	}
	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return Draft{}, fmt.Errorf("decode draft %s: %w", id, err)
	}
	return d, nil
}

func draftKey(id types.ID) string {
	return fmt.Sprintf(draftKeyPrefix, string(id))
}

type memoryEntry struct {
	draft     Draft
	expiresAt time.Time
}

// MemoryStore keeps drafts in process. Expired drafts are dropped on read,
// and every Save sweeps the ones nobody read.
type MemoryStore struct {
	mu     sync.Mutex
	drafts map[types.ID]memoryEntry
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: map[types.ID]memoryEntry{}, now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, d Draft, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweepLocked(now)
	e := memoryEntry{draft: d}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}
	s.drafts[d.ID] = e
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id types.ID) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.drafts[id]
	if !ok {
		return Draft{}, ErrNotFound
	}
	if e.expired(s.now()) {
		delete(s.drafts, id)
		return Draft{}, ErrNotFound
	}
	return e.draft, nil
}

func (s *MemoryStore) sweepLocked(now time.Time) {
	for id, e := range s.drafts {
		if e.expired(now) {
			delete(s.drafts, id)
		}
	}
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}
