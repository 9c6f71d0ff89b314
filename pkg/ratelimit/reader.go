// Package ratelimit throttles the aggregate read bandwidth of hashing.
package ratelimit

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/time/rate"
)

// minBurst keeps reads smooth at very low rates
const minBurst = 64 * 1024

// Limiter is shared by every reader it wraps, so the limit applies to the
// whole run rather than to each file
type Limiter struct {
	bytesPerSecond int64
	rl             *rate.Limiter
}

// NewLimiter creates a limiter. A non-positive rate returns nil, meaning no limit.
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}
	burst := max(bytesPerSecond, minBurst)
	return &Limiter{
		bytesPerSecond: bytesPerSecond,
		rl:             rate.NewLimiter(rate.Limit(bytesPerSecond), int(burst)),
	}
}

// Rate returns the configured bytes per second
func (l *Limiter) Rate() int64 {
	if l == nil {
		return 0
	}
	return l.bytesPerSecond
}

// Wrap returns rc throttled by the limiter, or rc itself when l is nil
func (l *Limiter) Wrap(ctx context.Context, rc io.ReadCloser) io.ReadCloser {
	if l == nil {
		return rc
	}
	return &readCloser{ctx: ctx, ReadCloser: rc, rl: l.rl}
}

type readCloser struct {
	io.ReadCloser
	ctx context.Context
	rl  *rate.Limiter
}

// Read pays for the bytes it returns. A single read never asks for more than one burst.
func (r *readCloser) Read(p []byte) (int, error) {
	if burst := r.rl.Burst(); len(p) > burst {
		p = p[:burst]
	}

	n, err := r.ReadCloser.Read(p)
	if n > 0 {
		if waitErr := r.rl.WaitN(r.ctx, n); waitErr != nil {
			if ctxErr := r.ctx.Err(); ctxErr != nil {
				return 0, ctxErr
			}
			return 0, fmt.Errorf("read throttled: %w", waitErr)
		}
	}
	return n, err
}

// ParseRate parses a human rate such as "512K", "10M" or "1G" (binary units, per second).
// An empty string or "0" means unlimited.
func ParseRate(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	s = strings.TrimSuffix(strings.TrimSuffix(s, "/S"), "B")
	if s == "" {
		return 0, nil
	}

	multiplier := int64(1)
	switch s[len(s)-1] {
	case 'K':
		multiplier = 1 << 10
	case 'M':
		multiplier = 1 << 20
	case 'G':
		multiplier = 1 << 30
	}
	if multiplier > 1 {
		s = s[:len(s)-1]
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid rate %q", s)
	}
	return int64(n * float64(multiplier)), nil
}
