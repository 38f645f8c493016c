// Package ratelimit throttles the authorization and token endpoints per client
// IP with sliding-window buckets held in memory or Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"unique/internal/ratelimit/models"
)

// BucketStore is a sliding-window counter.
type BucketStore interface {
	Allow(ctx context.Context, key string, policy models.Policy) (*models.Result, error)
	Reset(ctx context.Context, key string) error
}

// Limits are requests per minute for each endpoint class.
type Limits struct {
	AuthorizePerMinute int
	TokenPerMinute     int
}

// Limiter applies one Policy per endpoint class.
type Limiter struct {
	store    BucketStore
	policies map[models.EndpointClass]models.Policy
}

func New(store BucketStore, limits Limits) (*Limiter, error) {
	if store == nil {
		return nil, fmt.Errorf("rate limiter: bucket store is required")
	}
	if limits.AuthorizePerMinute <= 0 || limits.TokenPerMinute <= 0 {
		return nil, fmt.Errorf("rate limiter: limits must be positive")
	}
	return &Limiter{
		store: store,
		policies: map[models.EndpointClass]models.Policy{
			models.ClassAuthorize: {Limit: limits.AuthorizePerMinute, Window: time.Minute},
			models.ClassToken:     {Limit: limits.TokenPerMinute, Window: time.Minute},
		},
	}, nil
}

// CheckIP counts one request from ip against class.
func (l *Limiter) CheckIP(ctx context.Context, ip string, class models.EndpointClass) (*models.Result, error) {
	policy, ok := l.policies[class]
	if !ok {
		return nil, fmt.Errorf("rate limiter: unknown endpoint class %q", class)
	}
	return l.store.Allow(ctx, models.BucketKey(class, ip), policy)
}
