// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package ratelimit

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/canonical/portal-auth/internal/http/types"
	"github.com/canonical/portal-auth/internal/logging"
	"github.com/canonical/portal-auth/internal/monitoring"
)

const (
	idleTTL       = 5 * time.Minute
	sweepInterval = time.Minute
)

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// Limiter is a per client IP token bucket guarding the unauthenticated
// credential endpoints.
type Limiter struct {
	rps   rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time

	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = l.now()

	return b.lim.AllowN(b.lastSeen, 1)
}

// Middleware rejects requests over the limit with 429 RATE_LIMITED.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)
		if ip == "" {
			ip = "unknown"
		}

		if !l.Allow(ip) {
			l.logger.Debugf("rate limit exceeded for %s on %s", ip, r.URL.Path)
			if err := l.monitor.IncAuthEventMetric(map[string]string{"event": "rate_limit", "outcome": "rejected"}); err != nil {
				l.logger.Debugf("failed to record auth event: %v", err)
			}
			w.Header().Set("Retry-After", "1")
			_ = types.WriteError(w, types.CodeRateLimited, "too many requests")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Sweep drops buckets idle for longer than idleTTL and returns how many went.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-idleTTL)
	removed := 0
	for k, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, k)
			removed++
		}
	}

	return removed
}

// Run sweeps idle buckets until ctx is cancelled.
func (l *Limiter) Run(ctx context.Context) error {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := l.Sweep(); n > 0 {
				l.logger.Debugf("rate limiter dropped %d idle clients", n)
			}
		}
	}
}

// ClientIP returns the host part of RemoteAddr. Forwarding headers are only
// honoured once a trusted proxy middleware has rewritten RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

func NewLimiter(rps float64, burst int, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Limiter {
	return &Limiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		buckets: make(map[string]*bucket),
		now:     time.Now,
		monitor: monitor,
		logger:  logger,
	}
}
