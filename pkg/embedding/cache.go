package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cardiac-assistant-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// CachedProvider memoizes embeddings in Redis. Redis failures fall through to
// the wrapped provider and are logged at WARN.
type CachedProvider struct {
	next   EmbeddingProvider
	client *redis.Client
	model  string
	ttl    time.Duration
	logger logger.ILogger
}

func NewCachedProvider(next EmbeddingProvider, client *redis.Client, model string, ttl time.Duration, logger logger.ILogger) *CachedProvider {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedProvider{next: next, client: client, model: model, ttl: ttl, logger: logger}
}

func (c *CachedProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	key := c.key(text, taskType)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var values []float32
		if json.Unmarshal(raw, &values) == nil && len(values) > 0 {
			return &EmbeddingResponse{Embedding: EmbeddingResponseEmbedding{Values: values}}, nil
		}
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("EmbeddingCache", "Cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	res, err := c.next.Generate(ctx, text, taskType)
	if err != nil {
		return nil, err
	}

	raw, err = json.Marshal(res.Embedding.Values)
	if err == nil {
		err = c.client.Set(ctx, key, raw, c.ttl).Err()
	}
	if err != nil {
		c.logger.Warn("EmbeddingCache", "Cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	return res, nil
}

func (c *CachedProvider) key(text, taskType string) string {
	sum := sha256.Sum256([]byte(taskType + "\x00" + text))
	return fmt.Sprintf("embedding:%s:%s", c.model, hex.EncodeToString(sum[:]))
}
