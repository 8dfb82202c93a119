package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/stackflame/pkg/cache"
	"github.com/matzehuels/stackflame/pkg/errors"
)

// CacheStore keeps sessions in a [cache.Cache], typically Redis, so that
// several server instances share them. Expiry is left to the cache TTL.
type CacheStore struct {
	cache cache.Cache
}

// NewCacheStore creates a store on top of c.
func NewCacheStore(c cache.Cache) *CacheStore {
	return &CacheStore{cache: c}
}

func key(sessionID string) string { return "session:" + sessionID }

func (s *CacheStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, ok, err := s.cache.Get(ctx, key(sessionID))
	if err != nil || !ok {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse session")
	}
	if sess.IsExpired() {
		return nil, nil
	}
	return &sess, nil
}

func (s *CacheStore) Set(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal session")
	}
	return s.cache.Set(ctx, key(sess.ID), data, max(time.Until(sess.ExpiresAt), time.Second))
}

func (s *CacheStore) Delete(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, key(sessionID))
}

func (s *CacheStore) Cleanup(ctx context.Context) error { return nil }

var _ Store = (*CacheStore)(nil)
