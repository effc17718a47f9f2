package auth

import (
	"strings"
	"sync"
	"time"

	"github.com/mrlokans/booklend/internal/config"
)

// LoginLimiter throttles login attempts per client IP and login name,
// independently of the per-account lockout kept in the database. It stops
// guessing against logins that do not exist as well.
type LoginLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attempts
	max      int
	window   time.Duration
	lockout  time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type attempts struct {
	count       int
	windowStart time.Time
	lockedUntil time.Time
}

// NewLoginLimiter builds a limiter from the auth config and starts its
// janitor goroutine. Call Stop on shutdown.
func NewLoginLimiter(cfg config.Auth) *LoginLimiter {
	l := &LoginLimiter{
		attempts: make(map[string]*attempts),
		max:      cfg.MaxLoginAttempts,
		window:   cfg.RateLimitWindow,
		lockout:  cfg.LockoutDuration,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	if l.max <= 0 {
		l.max = 5
	}
	if l.window <= 0 {
		l.window = 15 * time.Minute
	}
	if l.lockout <= 0 {
		l.lockout = 30 * time.Minute
	}

	go l.janitor(5 * time.Minute)
	return l
}

// Stop ends the janitor goroutine. Safe to call more than once.
func (l *LoginLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func limiterKey(ip, login string) string {
	return ip + "|" + strings.ToLower(login)
}

// Allow reports whether another attempt is permitted and, if not, how long
// the caller must wait.
func (l *LoginLimiter) Allow(ip, login string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.attempts[limiterKey(ip, login)]
	if !ok {
		return true, 0
	}
	if now.Before(rec.lockedUntil) {
		return false, rec.lockedUntil.Sub(now)
	}
	if now.Sub(rec.windowStart) > l.window {
		return true, 0
	}
	if rec.count < l.max {
		return true, 0
	}
	return false, l.lockout
}

// RecordFailure counts a failed attempt and reports whether it triggered
// a lockout.
func (l *LoginLimiter) RecordFailure(ip, login string) bool {
	now := l.now()
	key := limiterKey(ip, login)

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.attempts[key]
	if !ok || now.Sub(rec.windowStart) > l.window {
		rec = &attempts{windowStart: now}
		l.attempts[key] = rec
	}

	rec.count++
	if rec.count >= l.max {
		rec.lockedUntil = now.Add(l.lockout)
		return true
	}
	return false
}

// RecordSuccess forgets earlier failures for ip and login.
func (l *LoginLimiter) RecordSuccess(ip, login string) {
	l.mu.Lock()
	delete(l.attempts, limiterKey(ip, login))
	l.mu.Unlock()
}

func (l *LoginLimiter) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

func (l *LoginLimiter) sweep() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, rec := range l.attempts {
		if now.Sub(rec.windowStart) > l.window && !now.Before(rec.lockedUntil) {
			delete(l.attempts, key)
		}
	}
}
