package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const cacheKeyPrefixConvert = "convert:"

func (s *RateService) conversionCacheKey(from, to, day string) string {
	return cacheKeyPrefixConvert + s.source + ":{" + from + ":" + to + "}:" + day
}

func (s *RateService) cacheGetConversion(ctx context.Context, from, to string, day time.Time) (*ConversionResult, bool) {
	if s.cache == nil {
		return nil, false
	}

	dayStr := day.Format("2006-01-02")
	key := s.conversionCacheKey(from, to, dayStr)
	vals, err := s.cache.HMGet(ctx, key, "rate", "lookup").Result()
	if err != nil || len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return nil, false
	}

	rateStr, ok := asString(vals[0])
	if !ok {
		return nil, false
	}
	lookup, ok := asString(vals[1])
	if !ok {
		return nil, false
	}
	rate, err := decimal.NewFromString(rateStr)
	if err != nil {
		return nil, false
	}

	return &ConversionResult{
		From:   from,
		To:     to,
		Date:   dayStr,
		Rate:   rate,
		Lookup: lookup,
		Source: s.source,
	}, true
}

func (s *RateService) cacheSetConversion(ctx context.Context, res *ConversionResult) {
	if s.cache == nil || res == nil {
		return
	}

	key := s.conversionCacheKey(res.From, res.To, res.Date)
	pipe := s.cache.Pipeline()
	pipe.HSet(ctx, key, "rate", res.Rate.String(), "lookup", res.Lookup)
	pipe.Expire(ctx, key, s.cacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warnw("Failed to update cache", "key", key, "error", err)
	}
}

func asString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case []byte:
		return string(x), true
	default:
		return "", false
	}
}
