package display

import (
	"io"
	"sort"
	"sync"

	"brake-hud.klederson.com/internal/route"
)

// Registry holds the named display targets and resolves route entries
// against them. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	targets map[string]route.Target
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		targets: make(map[string]route.Target),
	}
}

// Add registers t under its name, replacing any target with the same name.
func (r *Registry) Add(t route.Target) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets[t.Name()] = t
}

// AddPanel registers and returns a new single-surface panel.
func (r *Registry) AddPanel(name string) *Panel {
	p := NewPanel(name)
	r.Add(p)
	return p
}

// AddGroup registers and returns a new group of n panels.
func (r *Registry) AddGroup(name string, n int) *Group {
	g := NewGroup(name, n)
	r.Add(g)
	return g
}

// FindByName implements route.Resolver.
func (r *Registry) FindByName(name string) (route.Target, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.targets[name]
	return t, ok
}

// Subsurface implements route.Resolver.
func (r *Registry) Subsurface(t route.Target, index int) (route.Surface, bool) {
	g, ok := t.(*Group)
	if !ok {
		return nil, false
	}
	p, ok := g.Surface(index)
	if !ok {
		return nil, false
	}
	return p, true
}

// Snapshot returns the state of every panel, group members included,
// sorted by name.
func (r *Registry) Snapshot() []PanelState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]PanelState, 0, len(r.targets))
	for _, t := range r.targets {
		switch t := t.(type) {
		case *Panel:
			result = append(result, t.State())
		case *Group:
			for _, p := range t.panels {
				result = append(result, p.State())
			}
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// MirrorTo makes every registered panel copy its writes to w.
func (r *Registry) MirrorTo(w io.Writer) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.targets {
		switch t := t.(type) {
		case *Panel:
			t.Mirror(w)
		case *Group:
			for _, p := range t.panels {
				p.Mirror(w)
			}
		}
	}
}

// Count returns the number of registered targets.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.targets)
}
