package analyzer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/nongnai/nongnai/pkg/logx"
	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = time.Hour

// CachedAnalyzer memoizes analysis results in Redis, keyed by a hash of the
// utterance. Cache failures fall through to the inner analyzer.
type CachedAnalyzer struct {
	inner Analyzer
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedAnalyzer(inner Analyzer, rdb *redis.Client, ttl time.Duration) *CachedAnalyzer {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedAnalyzer{inner: inner, rdb: rdb, ttl: ttl}
}

func (c *CachedAnalyzer) Analyze(ctx context.Context, text string) (Analysis, error) {
	key := cacheKey(text)

	if data, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var cached Analysis
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	} else if err != redis.Nil {
		logx.Warn().Err(err).Msg("analyzer cache: read failed, calling service")
	}

	out, err := c.inner.Analyze(ctx, text)
	if err != nil {
		return Analysis{}, err
	}

	if data, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			logx.Warn().Err(err).Msg("analyzer cache: write failed")
		}
	}
	return out, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "nongnai:analysis:" + hex.EncodeToString(sum[:])
}
