// Package guard provides keyed mutual exclusion for orchestrator operations.
// Acquisition never blocks: a caller that loses the race skips its work and
// relies on the next scheduled interval.
package guard

import (
	"strings"
	"sync"
	"time"
)

// LoginKey is the singleton key for the interactive login flow. Console
// operations read the saved session, so they refuse to run while this key
// is held.
const LoginKey = "login"

const consolePrefix = "console:"

// ConsoleKey returns the lock key for operations on one console.
func ConsoleKey(name string) string {
	return consolePrefix + name
}

// Guard tracks at most one holder per key.
type Guard struct {
	mu   sync.Mutex
	held map[string]time.Time
}

func New() *Guard {
	return &Guard{held: make(map[string]time.Time)}
}

// TryAcquire takes the key if free. The returned release function is safe to
// call more than once and must be called on every exit path.
func (g *Guard) TryAcquire(key string) (func(), bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, taken := g.held[key]; taken {
		return nil, false
	}
	g.held[key] = time.Now()

	var once sync.Once
	release := func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, key)
			g.mu.Unlock()
		})
	}
	return release, true
}

// ConsoleOpRunning reports whether any per-console key currently has a
// holder. The login flow rewrites the shared session, so it refuses to start
// while any console operation could be reading it.
func (g *Guard) ConsoleOpRunning() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for k := range g.held {
		if strings.HasPrefix(k, consolePrefix) {
			return true
		}
	}
	return false
}

// IsHeld reports whether the key currently has a holder.
func (g *Guard) IsHeld(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, taken := g.held[key]
	return taken
}

// Held returns a snapshot of held keys and their acquisition times, for the
// control surface status view.
func (g *Guard) Held() map[string]time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make(map[string]time.Time, len(g.held))
	for k, v := range g.held {
		out[k] = v
	}
	return out
}
