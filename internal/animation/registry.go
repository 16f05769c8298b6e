package animation

import (
	"sort"
	"sync"
)

// Registry is the catalog of animation definitions. It is safe for
// concurrent use; construct one per application and pass it down.
type Registry struct {
	mu         sync.RWMutex
	animations map[string]Definition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{animations: make(map[string]Definition)}
}

// Register inserts def, overwriting any definition with the same name.
// Missing category and version are defaulted; the template is not validated.
func (r *Registry) Register(def Definition) {
	if !def.Category.Valid() {
		def.Category = CategoryText
	}
	if def.Version == "" {
		def.Version = DefaultVersion
	}
	def.Parameters = append([]ParameterSpec(nil), def.Parameters...)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.animations[def.Name] = def
}

// Get returns a copy of the named definition.
func (r *Registry) Get(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.animations[name]
	if !ok {
		return nil, false
	}
	def.Parameters = append([]ParameterSpec(nil), def.Parameters...)
	return &def, true
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.animations[name]
	return ok
}

// List returns all definitions sorted by name.
func (r *Registry) List() []Definition {
	r.mu.RLock()
	out := make([]Definition, 0, len(r.animations))
	for _, def := range r.animations {
		out = append(out, def)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ByCategory returns the definitions in category c, sorted by name.
func (r *Registry) ByCategory(c Category) []Definition {
	all := r.List()
	out := all[:0]
	for _, def := range all {
		if def.Category == c {
			out = append(out, def)
		}
	}
	return out
}

// Len returns the number of registered animations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.animations)
}
