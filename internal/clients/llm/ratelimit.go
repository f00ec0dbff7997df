package llm

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimited throttles calls per model so bursts of submissions cannot
// exceed the provider quota.
type RateLimited struct {
	next Client
	rpm  int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewRateLimited(next Client, requestsPerMinute int) *RateLimited {
	return &RateLimited{
		next:     next,
		rpm:      requestsPerMinute,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (r *RateLimited) limiter(model string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.limiters[model]; ok {
		return l
	}
	burst := r.rpm / 5
	if burst < 5 {
		burst = 5
	}
	l := rate.NewLimiter(rate.Limit(float64(r.rpm)/60.0), burst)
	r.limiters[model] = l
	return l
}

func (r *RateLimited) Generate(ctx context.Context, req Request) (string, error) {
	if err := r.limiter(req.Model).Wait(ctx); err != nil {
		return "", err
	}
	return r.next.Generate(ctx, req)
}
