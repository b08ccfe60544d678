package lower

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is the unit registry: it owns lowered units keyed by
// dotted name. Scope pop finalises a unit exactly once; the root
// driver flushes the top-level unit at teardown.
type Registry struct {
	mu    sync.Mutex
	units map[string]*Unit
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{units: map[string]*Unit{}}
}

// Bind registers u, keyed by its dotted Name.
func (r *Registry) Bind(u *Unit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.units[u.Name] = u
}

// Finalize marks u as finalised. Finalizing an already-finalised
// unit is a core invariant violation; callers return the error
// rather than panicking since a double-pop on an error path is
// recoverable by the caller unwinding further.
func (r *Registry) Finalize(u *Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.final {
		return fmt.Errorf("unit %s finalised twice", u.Name)
	}
	u.final = true
	return nil
}

// Flush removes and returns the unit named name, used by the root
// driver to flush the top-level unit at teardown.
func (r *Registry) Flush(name string) (*Unit, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.units[name]
	if ok {
		delete(r.units, name)
	}
	return u, ok
}

// Names returns every bound unit's name, sorted, for deterministic
// test assertions.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.units))
	for name := range r.units {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
