// Package ratelimiter implements the per-provider windowed admission
// control: admit() is a non-consuming check,
// record() consumes a unit, and the window resets exactly once, the first
// time it is observed to have expired — never on every record (re-anchoring
// calls out that re-anchoring on every record is a source-implementation
// bug and must not be replicated here).
package ratelimiter

import (
	"sync"
	"time"

	"github.com/mediadirectory/searchcore/internal/catalog"
)

// Stats is the snapshot returned by StatsFor, consumed by ProviderStatuses.
type Stats struct {
	Used              int
	Limit             int // 0 means unlimited
	Remaining         int
	SecondsUntilReset int
}

// Limiter is a per-provider windowed counter. The zero value is not usable;
// construct with New. Safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	counters map[catalog.ProviderName]*catalog.UsageCounter
	quotas   map[catalog.ProviderName]quota
	now      func() time.Time
}

type quota struct {
	limit  int
	period time.Duration
}

// New builds a Limiter from the given provider configs. Providers with no
// quota configured (RateLimitQuota == 0) are never rate limited.
func New(configs []catalog.ProviderConfig) *Limiter {
	l := &Limiter{
		counters: make(map[catalog.ProviderName]*catalog.UsageCounter),
		quotas:   make(map[catalog.ProviderName]quota),
		now:      time.Now,
	}
	for _, c := range configs {
		if !c.HasQuota() {
			continue
		}
		l.quotas[c.Name] = quota{
			limit:  c.RateLimitQuota,
			period: time.Duration(c.RatePeriodSeconds) * time.Second,
		}
	}
	return l
}

// Admit reports whether provider may issue one more request in the current
// window. It never increments the counter — only Record does. If the
// window has expired, Admit rolls it over (resets count to zero, anchors a
// new window at now) before evaluating.
func (l *Limiter) Admit(provider catalog.ProviderName) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	q, hasQuota := l.quotas[provider]
	if !hasQuota {
		return true
	}

	now := l.now()
	uc := l.counterLocked(provider, q, now)
	if now.Sub(uc.WindowStart) >= uc.WindowDur {
		uc.Count = 0
		uc.WindowStart = now
	}
	return uc.Count < q.limit
}

// Record increments provider's window counter. Called by the adapter
// immediately after issuing the upstream request, whether or not the
// response arrives. A no-op for providers without a quota.
func (l *Limiter) Record(provider catalog.ProviderName) {
	l.mu.Lock()
	defer l.mu.Unlock()

	q, hasQuota := l.quotas[provider]
	if !hasQuota {
		return
	}
	now := l.now()
	uc := l.counterLocked(provider, q, now)
	// Window rollover is decided in Admit; Record only ever increments
	// within whatever window is currently anchored.
	uc.Count++
}

// StatsFor returns the current usage snapshot for provider, read by the
// provider-status endpoint.
func (l *Limiter) StatsFor(provider catalog.ProviderName) Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	q, hasQuota := l.quotas[provider]
	if !hasQuota {
		return Stats{}
	}
	now := l.now()
	uc := l.counterLocked(provider, q, now)
	remaining := q.limit - uc.Count
	if remaining < 0 {
		remaining = 0
	}
	resetAt := uc.WindowStart.Add(uc.WindowDur)
	secondsLeft := int(resetAt.Sub(now).Seconds())
	if secondsLeft < 0 {
		secondsLeft = 0
	}
	return Stats{
		Used:              uc.Count,
		Limit:             q.limit,
		Remaining:         remaining,
		SecondsUntilReset: secondsLeft,
	}
}

// counterLocked returns the UsageCounter for provider, creating one anchored
// at now if absent. Caller must hold l.mu.
func (l *Limiter) counterLocked(provider catalog.ProviderName, q quota, now time.Time) *catalog.UsageCounter {
	uc, ok := l.counters[provider]
	if !ok {
		uc = &catalog.UsageCounter{WindowStart: now, WindowDur: q.period}
		l.counters[provider] = uc
	}
	return uc
}
