package ratelimit

import "context"

// RateLimiter caps outbound email throughput per delivery provider. Wait
// blocks until a send slot is available or the context is done.
type RateLimiter interface {
	Allow(ctx context.Context, provider string) (bool, error)
	Wait(ctx context.Context, provider string) error
}
