// Package ratelimit keeps one token bucket per client key.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Store allows Limit events per Window for every key, bursting up to Limit.
type Store struct {
	mu           sync.Mutex
	entries      map[string]*storeEntry
	limit        int
	window       time.Duration
	idleTTL      time.Duration
	cleanupEvery time.Duration
	now          func() time.Time
}

type storeEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type Option func(*Store)

func WithIdleTTL(d time.Duration) Option {
	return func(s *Store) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) Option {
	return func(s *Store) { s.cleanupEvery = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(limit int, window time.Duration, opts ...Option) *Store {
	if limit <= 0 {
		limit = 1
	}
	s := &Store{
		entries:      make(map[string]*storeEntry),
		limit:        limit,
		window:       window,
		idleTTL:      2 * window,
		cleanupEvery: window,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.idleTTL < window {
		s.idleTTL = window
	}
	return s
}

func (s *Store) Limit() int            { return s.limit }
func (s *Store) Window() time.Duration { return s.window }

func (s *Store) limiter(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}
	lim := rate.NewLimiter(rate.Every(s.window/time.Duration(s.limit)), s.limit)
	s.entries[key] = &storeEntry{lim: lim, lastSeen: now}
	return lim
}

// Decide consumes one token for key, or reports how long to wait.
func (s *Store) Decide(key string) Decision {
	now := s.now()
	lim := s.limiter(key, now)

	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return Decision{Allowed: false, RetryAfter: s.window}
	}
	delay := r.DelayFrom(now)
	if delay == 0 {
		return Decision{Allowed: true}
	}
	r.CancelAt(now)
	return Decision{Allowed: false, RetryAfter: delay}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup forgets keys idle for longer than the idle TTL; a forgotten key
// starts again with a full bucket.
func (s *Store) Cleanup() {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor runs Cleanup periodically until ctx is done.
func (s *Store) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}
	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}
