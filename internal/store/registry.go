package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/clementg/consoleback/internal/model"
)

// Registry is the durable record of configured consoles. All mutation goes
// through the lock and flushes to disk before returning.
type Registry struct {
	path string

	mu       sync.Mutex
	consoles map[string]*model.Console
}

// OpenRegistry loads the registry file, creating an empty registry when the
// file does not exist yet.
func OpenRegistry(path string) (*Registry, error) {
	r := &Registry{
		path:     path,
		consoles: make(map[string]*model.Console),
	}

	var records []*model.Console
	found, err := readFile(path, &records)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	if found {
		for _, c := range records {
			r.consoles[c.Name] = c
		}
	}
	return r, nil
}

func (r *Registry) flushLocked() error {
	records := make([]*model.Console, 0, len(r.consoles))
	for _, c := range r.consoles {
		records = append(records, c)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return writeFileAtomic(r.path, records)
}

// List returns copies of every console, sorted by name.
func (r *Registry) List() []model.Console {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Console, 0, len(r.consoles))
	for _, c := range r.consoles {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns a copy of the named console.
func (r *Registry) Get(name string) (model.Console, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.consoles[name]
	if !ok {
		return model.Console{}, false
	}
	return *c, true
}

// Exists reports whether a console with the name is registered.
func (r *Registry) Exists(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.consoles[name]
	return ok
}

// Add inserts a new console and flushes. The caller validates uniqueness;
// Add still refuses duplicates to keep the invariant under races.
func (r *Registry) Add(c model.Console) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.consoles[c.Name]; dup {
		return fmt.Errorf("console %q already registered", c.Name)
	}
	stored := c
	r.consoles[c.Name] = &stored
	return r.flushLocked()
}

// Remove deletes the named console and flushes. Returns false when unknown.
func (r *Registry) Remove(name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.consoles[name]; !ok {
		return false, nil
	}
	delete(r.consoles, name)
	return true, r.flushLocked()
}

// Update applies fn to the named console under the lock and flushes. When fn
// returns an error the console is left unchanged and nothing is written.
func (r *Registry) Update(name string, fn func(*model.Console) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.consoles[name]
	if !ok {
		return fmt.Errorf("console %q not registered", name)
	}

	scratch := *c
	if err := fn(&scratch); err != nil {
		return err
	}
	*c = scratch
	return r.flushLocked()
}

// ResetFailures clears every console's consecutive-failure counter and
// attention flag. Called after a successful re-login.
func (r *Registry) ResetFailures() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.consoles {
		c.ConsecutiveFailures = 0
		c.NeedsAttention = false
	}
	return r.flushLocked()
}
