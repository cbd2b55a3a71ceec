package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/imadgeboyega/kiekky-matching/internal/common/logger"
)

const vectorCachePrefix = "matching:vector:"

// CachedVectorStore keeps recently read vectors in redis in front of another store.
// Cache failures degrade to the backing store.
type CachedVectorStore struct {
	VectorStore
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedVectorStore(store VectorStore, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedVectorStore {
	return &CachedVectorStore{
		VectorStore: store,
		redis:       client,
		ttl:         ttl,
		logger:      log,
	}
}

func vectorCacheKey(userID int64) string {
	return fmt.Sprintf("%s%d", vectorCachePrefix, userID)
}

func (c *CachedVectorStore) GetVector(ctx context.Context, userID int64) (*FeatureVector, error) {
	data, err := c.redis.Get(ctx, vectorCacheKey(userID)).Bytes()
	if err == nil {
		var vector FeatureVector
		if err := json.Unmarshal(data, &vector); err == nil {
			recordCacheLookup(true)
			return &vector, nil
		}
	} else if err != redis.Nil {
		c.logger.Warn("vector cache read failed", map[string]interface{}{"user_id": userID, "error": err.Error()})
	}
	recordCacheLookup(false)

	vector, err := c.VectorStore.GetVector(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.set(ctx, vector)
	return vector, nil
}

func (c *CachedVectorStore) GetVectors(ctx context.Context, userIDs []int64) (map[int64]*FeatureVector, error) {
	out := make(map[int64]*FeatureVector, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = vectorCacheKey(id)
	}

	missing := make([]int64, 0, len(userIDs))
	cached, err := c.redis.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("vector cache batch read failed", map[string]interface{}{"error": err.Error()})
		missing = append(missing, userIDs...)
	} else {
		for i, raw := range cached {
			s, ok := raw.(string)
			if !ok {
				missing = append(missing, userIDs[i])
				continue
			}
			var vector FeatureVector
			if err := json.Unmarshal([]byte(s), &vector); err != nil {
				missing = append(missing, userIDs[i])
				continue
			}
			out[userIDs[i]] = &vector
		}
	}

	if len(missing) == 0 {
		return out, nil
	}
	loaded, err := c.VectorStore.GetVectors(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, vector := range loaded {
		out[id] = vector
		c.set(ctx, vector)
	}
	return out, nil
}

func (c *CachedVectorStore) SaveVector(ctx context.Context, vector *FeatureVector) error {
	if err := c.VectorStore.SaveVector(ctx, vector); err != nil {
		return err
	}
	c.set(ctx, vector)
	return nil
}

func (c *CachedVectorStore) set(ctx context.Context, vector *FeatureVector) {
	data, err := json.Marshal(vector)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, vectorCacheKey(vector.UserID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("vector cache write failed", map[string]interface{}{"user_id": vector.UserID, "error": err.Error()})
	}
}

// Invalidate drops a cached vector
func (c *CachedVectorStore) Invalidate(ctx context.Context, userID int64) error {
	return c.redis.Del(ctx, vectorCacheKey(userID)).Err()
}
