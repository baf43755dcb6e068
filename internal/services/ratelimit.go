package services

import (
	"sync"
	"time"
)

// LoginLimiter tracks failed login attempts per client fingerprint over a
// sliding window. It is an injected dependency of the auth handler rather
// than a package-level map, so tests can scope one per case and a shared
// external store could replace it for multi-instance deployments.
type LoginLimiter struct {
	mu          sync.Mutex
	maxAttempts int
	window      time.Duration
	attempts    map[string][]time.Time
}

func NewLoginLimiter(maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		maxAttempts: maxAttempts,
		window:      window,
		attempts:    map[string][]time.Time{},
	}
}

func (l *LoginLimiter) prune(timestamps []time.Time, now time.Time) []time.Time {
	recent := timestamps[:0]
	for _, t := range timestamps {
		if now.Sub(t) < l.window {
			recent = append(recent, t)
		}
	}
	return recent
}

// Allow reports whether clientID may attempt a login right now.
func (l *LoginLimiter) Allow(clientID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	recent := l.prune(l.attempts[clientID], now)
	if len(recent) > 0 {
		l.attempts[clientID] = recent
	} else {
		delete(l.attempts, clientID)
	}
	return len(recent) < l.maxAttempts
}

// RegisterFailure records one failed attempt for clientID.
func (l *LoginLimiter) RegisterFailure(clientID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	recent := append(l.prune(l.attempts[clientID], now), now)
	l.attempts[clientID] = recent
}

// Reset clears the failure history after a successful login.
func (l *LoginLimiter) Reset(clientID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, clientID)
}
