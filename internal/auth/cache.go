package auth

import (
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/pcoutinho/legal-management/internal/authz"
)

// actorCache keeps recently resolved actors with their grant graph so hot
// request paths skip the eager-load query. Entries are short-lived and
// grant-mutating operations invalidate the affected actor explicitly, so a
// stale window never outlives the TTL.
type actorCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

func newActorCache(ttl time.Duration) (*actorCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &actorCache{cache: cache, ttl: ttl}, nil
}

func (c *actorCache) get(userID string) (*authz.Actor, bool) {
	if c == nil {
		return nil, false
	}
	value, found := c.cache.Get(userID)
	if !found {
		return nil, false
	}
	actor, ok := value.(*authz.Actor)
	return actor, ok
}

func (c *actorCache) set(userID string, actor *authz.Actor) {
	if c == nil {
		return
	}
	c.cache.SetWithTTL(userID, actor, 1, c.ttl)
}

func (c *actorCache) invalidate(userID string) {
	if c == nil {
		return
	}
	c.cache.Del(userID)
}
