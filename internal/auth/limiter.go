package auth

import (
	"sync"
	"time"
)

type attempts struct {
	count int
	gen   int
}

// Limiter counts failed sign-ins per key. Each failure expires on its own
// after the window; a successful sign-in resets the key.
type Limiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	keys   map[string]*attempts
	gen    int
	after  func(time.Duration, func())
}

func NewLimiter(max int, window time.Duration) *Limiter {
	return &Limiter{
		max:    max,
		window: window,
		keys:   make(map[string]*attempts),
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// Allow reports whether another attempt may be made for key.
func (l *Limiter) Allow(key string) bool {
	if l.max <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.keys[key]
	return !ok || a.count < l.max
}

func (l *Limiter) Fail(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.keys[key]
	if !ok {
		l.gen++
		a = &attempts{gen: l.gen}
		l.keys[key] = a
	}
	a.count++
	gen := a.gen

	l.after(l.window, func() {
		l.mu.Lock()
		defer l.mu.Unlock()

		current, ok := l.keys[key]
		if !ok || current.gen != gen {
			return
		}
		current.count--
		if current.count <= 0 {
			delete(l.keys, key)
		}
	})
}

func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.keys, key)
}
