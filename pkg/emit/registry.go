package emit

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps format names to writers. The converter resolves the
// requested output format through it, so a writer must be registered before
// a Request can name it.
type Registry struct {
	mu      sync.RWMutex
	writers map[string]Writer
}

// NewRegistry returns a registry with no writers.
func NewRegistry() *Registry {
	return &Registry{
		writers: make(map[string]Writer),
	}
}

// Register adds a writer under its Name(). Registering the same name twice
// is an error.
func (r *Registry) Register(writer Writer) error {
	if writer == nil {
		return fmt.Errorf("emit: writer is required")
	}
	name := writer.Name()
	if name == "" {
		return fmt.Errorf("emit: writer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.writers[name]; exists {
		return fmt.Errorf("emit: writer %q already registered", name)
	}

	r.writers[name] = writer
	return nil
}

// MustRegister is Register for construction-time wiring; it panics instead
// of returning the error.
func (r *Registry) MustRegister(writer Writer) {
	if err := r.Register(writer); err != nil {
		panic(err)
	}
}

// Get looks up the writer registered under name.
func (r *Registry) Get(name string) (Writer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	writer, ok := r.writers[name]
	if !ok {
		return nil, fmt.Errorf("emit: writer %q not found", name)
	}
	return writer, nil
}

// List returns the registered writer names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.writers))
	for name := range r.writers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a writer is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.writers[name]
	return ok
}
