package logging

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/clementg/consoleback/internal/model"
)

// DefaultRingSize matches the last-100 entries the control surface displays.
const DefaultRingSize = 100

// Ring keeps the most recent log entries in memory and fans them out to
// live subscribers. It plugs into zerolog as a hook.
type Ring struct {
	mu      sync.Mutex
	entries []model.LogEntry
	max     int
	subs    map[chan model.LogEntry]struct{}
}

func NewRing(max int) *Ring {
	if max <= 0 {
		max = DefaultRingSize
	}
	return &Ring{
		max:  max,
		subs: make(map[chan model.LogEntry]struct{}),
	}
}

// Run implements zerolog.Hook.
func (r *Ring) Run(_ *zerolog.Event, level zerolog.Level, message string) {
	if message == "" || level == zerolog.NoLevel {
		return
	}
	r.append(model.LogEntry{
		Timestamp: time.Now(),
		Level:     level.String(),
		Message:   message,
	})
}

func (r *Ring) append(entry model.LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	if len(r.entries) > r.max {
		r.entries = r.entries[len(r.entries)-r.max:]
	}

	for ch := range r.subs {
		select {
		case ch <- entry:
		default:
			// Slow subscriber, drop rather than block logging.
		}
	}
}

// Recent returns a copy of the buffered entries, oldest first.
func (r *Ring) Recent() []model.LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.LogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Subscribe registers a live feed of new entries. The returned cancel
// function must be called when the subscriber goes away.
func (r *Ring) Subscribe() (<-chan model.LogEntry, func()) {
	ch := make(chan model.LogEntry, 16)

	r.mu.Lock()
	r.subs[ch] = struct{}{}
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		delete(r.subs, ch)
		r.mu.Unlock()
	}
	return ch, cancel
}
