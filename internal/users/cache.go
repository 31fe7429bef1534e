package users

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CachedStore is a read-through cache over another Store. Concurrent
// lookups for the same username are collapsed into one backing call.
// Absent users are not cached so a freshly created account is visible
// immediately.
type CachedStore struct {
	inner  Store
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewCachedStore wraps a Store with a Redis cache.
func NewCachedStore(inner Store, client *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{inner: inner, client: client, ttl: ttl}
}

// FindByUsername returns the cached record when present, otherwise
// consults the backing store and caches the result. Cache failures
// degrade to direct lookups.
func (s *CachedStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	key := s.cacheKey(username)
	payload, err := s.client.Get(ctx, key).Bytes()
	if err == nil {
		var user User
		if err := json.Unmarshal(payload, &user); err == nil {
			return &user, nil
		}
		// Unreadable entry: drop it and fall through to the store.
		_ = s.client.Del(ctx, key).Err()
	}
	// redis.Nil and transport errors both degrade to a direct lookup.

	result, err, _ := s.group.Do(username, func() (any, error) {
		user, err := s.inner.FindByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(user); err == nil {
			_ = s.client.Set(ctx, key, data, s.ttl).Err()
		}
		return user, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*User), nil
}

// Invalidate removes a cached record after an account change.
func (s *CachedStore) Invalidate(ctx context.Context, username string) error {
	err := s.client.Del(ctx, s.cacheKey(username)).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

func (s *CachedStore) cacheKey(username string) string {
	return "user:" + username
}

var _ Store = (*CachedStore)(nil)
