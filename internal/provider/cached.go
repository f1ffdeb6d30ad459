package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fxresolver/internal/rates"

	"github.com/redis/go-redis/v9"
)

// CachedTableProvider wraps a TableProvider with Redis caching of fetched
// windows.
type CachedTableProvider struct {
	provider     TableProvider
	cache        *redis.Client
	ttl          time.Duration
	providerName string
}

// NewCachedTableProvider creates a new CachedTableProvider.
func NewCachedTableProvider(provider TableProvider, cache *redis.Client, ttl time.Duration, providerName string) *CachedTableProvider {
	return &CachedTableProvider{
		provider:     provider,
		cache:        cache,
		ttl:          ttl,
		providerName: providerName,
	}
}

func (p *CachedTableProvider) cacheKey(start, end time.Time) string {
	return fmt.Sprintf("provider_cache:%s:{%s..%s}",
		p.providerName, start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// Source reports the underlying provider's source.
func (p *CachedTableProvider) Source() rates.Source {
	return p.provider.Source()
}

// FetchTable attempts to read the window from cache before calling the
// underlying provider.
func (p *CachedTableProvider) FetchTable(ctx context.Context, start, end time.Time) (rates.Table, error) {
	if p.cache == nil {
		return p.provider.FetchTable(ctx, start, end)
	}

	key := p.cacheKey(start, end)

	// check cache
	if raw, err := p.cache.Get(ctx, key).Result(); err == nil {
		var table rates.Table
		if err := json.Unmarshal([]byte(raw), &table); err == nil {
			return table, nil
		}
	}

	table, err := p.provider.FetchTable(ctx, start, end)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(table); err == nil {
		_ = p.cache.Set(ctx, key, payload, p.ttl).Err()
	}

	return table, nil
}

var _ TableProvider = (*CachedTableProvider)(nil)
