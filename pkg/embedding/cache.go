package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedProvider wraps a Provider with a redis content-hash cache so that
// re-embedding identical text (unchanged items during a regeneration pass,
// repeated queries) costs nothing. Redis failures degrade to the inner
// provider silently; the cache is an optimization, never a dependency.
type CachedProvider struct {
	inner Provider
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedProvider(inner Provider, rdb *redis.Client, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedProvider{
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
	}
}

func (p *CachedProvider) Kind() Kind {
	return p.inner.Kind()
}

func (p *CachedProvider) Generate(ctx context.Context, text string, taskType string) ([]float32, error) {
	key := p.cacheKey(text, taskType)

	if cached, err := p.rdb.Get(ctx, key).Bytes(); err == nil {
		var values []float32
		if err := json.Unmarshal(cached, &values); err == nil && len(values) == Dimensions {
			return values, nil
		}
	}

	values, err := p.inner.Generate(ctx, text, taskType)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(values); err == nil {
		p.rdb.Set(ctx, key, data, p.ttl)
	}

	return values, nil
}

func (p *CachedProvider) cacheKey(text string, taskType string) string {
	h := sha256.New()
	h.Write([]byte(string(p.inner.Kind())))
	h.Write([]byte{0})
	h.Write([]byte(taskType))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return "embedding:" + hex.EncodeToString(h.Sum(nil))
}
