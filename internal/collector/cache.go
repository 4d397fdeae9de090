package collector

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"WatchlistScanner/internal/model"
)

// CachedSource keeps loaded series in Redis for TTL. Redis failures are
// logged and the wrapped Source answers instead.
type CachedSource struct {
	Source Source
	Client redis.Cmdable
	TTL    time.Duration
	Prefix string
}

// NewCachedSource wraps source with a Redis read-through cache.
func NewCachedSource(source Source, client redis.Cmdable, ttl time.Duration, prefix string) *CachedSource {
	if prefix == "" {
		prefix = "bars:"
	}
	return &CachedSource{Source: source, Client: client, TTL: ttl, Prefix: prefix}
}

func (c *CachedSource) key(ticker string) string {
	return c.Prefix + ticker
}

func (c *CachedSource) Load(ctx context.Context, ticker string) (model.BarSeries, error) {
	key := c.key(ticker)
	cacheUp := true

	raw, err := c.Client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var series model.BarSeries
		jerr := json.Unmarshal(raw, &series)
		if jerr == nil {
			log.Debug().Str("ticker", ticker).Msg("bar cache hit")
			return series, nil
		}
		log.Warn().Err(jerr).Str("key", key).Msg("discarding corrupt cache entry")
	case errors.Is(err, redis.Nil):
	default:
		cacheUp = false
		log.Warn().Err(err).Str("key", key).Msg("bar cache unavailable, loading from source")
	}

	series, err := c.Source.Load(ctx, ticker)
	if err != nil {
		return model.BarSeries{}, err
	}
	if !cacheUp {
		return series, nil
	}
	data, err := json.Marshal(series)
	if err != nil {
		return series, nil
	}
	if err := c.Client.Set(ctx, key, data, c.TTL).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("bar cache write failed")
	}
	return series, nil
}

// Invalidate drops the cached series of ticker.
func (c *CachedSource) Invalidate(ctx context.Context, ticker string) error {
	return c.Client.Del(ctx, c.key(ticker)).Err()
}
