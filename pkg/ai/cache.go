package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CachedEncoder memoises embeddings in Redis. Cache failures are logged and
// the wrapped encoder is used instead; encoder failures are never cached.
type CachedEncoder struct {
	next      Encoder
	cache     *redis.Client
	ttl       time.Duration
	namespace string
	logger    zerolog.Logger
}

// NewCachedEncoder wraps next. A nil client disables caching.
func NewCachedEncoder(next Encoder, cache *redis.Client, namespace string, ttl time.Duration, logger zerolog.Logger) *CachedEncoder {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedEncoder{
		next:      next,
		cache:     cache,
		ttl:       ttl,
		namespace: namespace,
		logger:    logger.With().Str("component", "embedding_cache").Logger(),
	}
}

// Encode returns the cached embedding for text, computing and storing it on a miss.
func (c *CachedEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	if c.cache == nil {
		return c.next.Encode(ctx, text)
	}

	key := c.key(text)
	if cached, err := c.cache.Get(ctx, key).Bytes(); err == nil {
		var vector []float32
		if unmarshalErr := json.Unmarshal(cached, &vector); unmarshalErr == nil && len(vector) > 0 {
			c.logger.Debug().Str("key", key).Msg("embedding cache hit")
			return vector, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn().Err(err).Msg("failed to read embedding cache")
	}

	vector, err := c.next.Encode(ctx, text)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(vector); err == nil {
		if err := c.cache.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn().Err(err).Msg("failed to store embedding cache")
		}
	}

	return vector, nil
}

func (c *CachedEncoder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("embedding:%s:%s", c.namespace, hex.EncodeToString(sum[:]))
}
