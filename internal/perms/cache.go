package perms

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// GrantCache caches per-user grant name sets in Redis. Concurrent misses
// for the same user collapse into a single storage read.
type GrantCache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewGrantCache instantiates the cache helper.
func NewGrantCache(client *redis.Client, ttl time.Duration) *GrantCache {
	return &GrantCache{client: client, ttl: ttl}
}

// Fetch returns the cached grant names for a user, populating the entry
// via the loader on a miss. A nil cache degrades to calling the loader.
func (c *GrantCache) Fetch(ctx context.Context, userID int64, loader func(context.Context) ([]string, error)) ([]string, error) {
	if loader == nil {
		return nil, errors.New("perms: cache loader required")
	}
	if c == nil || c.client == nil {
		return loader(ctx)
	}

	key := grantKey(userID)
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var names []string
		if err := json.Unmarshal(payload, &names); err == nil {
			return names, nil
		}
		// Corrupt entry: fall through and rebuild.
	} else if !errors.Is(err, redis.Nil) {
		return nil, err
	}

	resultChan := c.group.DoChan(key, func() (any, error) {
		names, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		if names == nil {
			names = []string{}
		}
		raw, err := json.Marshal(names)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return nil, err
		}
		return names, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]string), nil
	}
}

// Invalidate drops the cached grant set after a grant or revoke.
func (c *GrantCache) Invalidate(ctx context.Context, userID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	err := c.client.Del(ctx, grantKey(userID)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func grantKey(userID int64) string {
	return "grants:" + strconv.FormatInt(userID, 10)
}
