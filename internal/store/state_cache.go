package store

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// statePrefix namespaces bulb state entries so prunes never touch keys owned
// by other services sharing the instance.
const statePrefix = "flux:state:"

// defaultStateTTL bounds how long a bulb's last state outlives its polls.
// Every poll rewrites the entry, so expiry only fires for bulbs the adapter
// stopped managing.
const defaultStateTTL = 24 * time.Hour

// StateCache keeps the last published state per bulb in redis so reads do not
// hit the database between polls.
type StateCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStateCache wraps a redis client. A non-positive ttl selects the default.
func NewStateCache(rdb *redis.Client, ttl time.Duration) *StateCache {
	if ttl <= 0 {
		ttl = defaultStateTTL
	}
	return &StateCache{rdb: rdb, ttl: ttl}
}

func stateKey(id string) string { return statePrefix + id }

func (c *StateCache) Set(ctx context.Context, id string, stateJSON []byte) error {
	return c.rdb.Set(ctx, stateKey(id), stateJSON, c.ttl).Err()
}

func (c *StateCache) Get(ctx context.Context, id string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, stateKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return b, err
}

func (c *StateCache) Delete(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, stateKey(id)).Err()
}

// RemoveAllExcept drops every cached bulb state whose id is not in keepIDs,
// returning the removed ids. Used when a config prune removes bulbs.
func (c *StateCache) RemoveAllExcept(ctx context.Context, keepIDs []string) ([]string, error) {
	keep := make(map[string]struct{}, len(keepIDs))
	for _, id := range keepIDs {
		if id == "" {
			continue
		}
		keep[id] = struct{}{}
	}

	var staleKeys []string
	var removed []string
	iter := c.rdb.Scan(ctx, 0, statePrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		id := strings.TrimPrefix(iter.Val(), statePrefix)
		if _, ok := keep[id]; ok {
			continue
		}
		staleKeys = append(staleKeys, iter.Val())
		removed = append(removed, id)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	if len(staleKeys) > 0 {
		if err := c.rdb.Del(ctx, staleKeys...).Err(); err != nil {
			return nil, err
		}
	}
	return removed, nil
}
