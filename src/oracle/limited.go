package oracle

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limited spaces queries to the wrapped oracle at least interval apart.
type Limited struct {
	inner   Oracle
	limiter *rate.Limiter
}

// NewLimited returns inner unchanged when interval is not positive.
func NewLimited(inner Oracle, interval time.Duration) Oracle {
	if interval <= 0 {
		return inner
	}
	return &Limited{inner: inner, limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

func (l *Limited) Query(ctx context.Context, prompt, instructions string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return l.inner.Query(ctx, prompt, instructions)
}
