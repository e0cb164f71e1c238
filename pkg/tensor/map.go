package tensor

import (
	"fmt"
	"sort"
)

// Map is the flat name → tensor mapping emitters consume, together with
// free-form string metadata that container formats may persist. The zero
// value is not usable; construct instances with NewMap.
type Map struct {
	tensors  map[string]Tensor
	metadata map[string]string
}

// NewMap returns an empty mapping.
func NewMap() *Map {
	return &Map{
		tensors:  make(map[string]Tensor),
		metadata: make(map[string]string),
	}
}

// Add registers a tensor under name. Duplicate names and tensors that fail
// validation are rejected so malformed mappings never reach an emitter.
func (m *Map) Add(name string, t Tensor) error {
	if name == "" {
		return fmt.Errorf("tensor: name is required")
	}
	if _, exists := m.tensors[name]; exists {
		return fmt.Errorf("tensor: duplicate name %q", name)
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("tensor: %q: %w", name, err)
	}
	m.tensors[name] = t
	return nil
}

// Get retrieves a tensor by name.
func (m *Map) Get(name string) (Tensor, bool) {
	t, ok := m.tensors[name]
	return t, ok
}

// Names returns the tensor names in sorted order. Emitters rely on this for
// deterministic output bytes.
func (m *Map) Names() []string {
	names := make([]string, 0, len(m.tensors))
	for name := range m.tensors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports the number of tensors.
func (m *Map) Len() int {
	return len(m.tensors)
}

// SetMetadata records a metadata key/value pair. Empty keys are ignored.
func (m *Map) SetMetadata(key, value string) {
	if key == "" {
		return
	}
	m.metadata[key] = value
}

// Metadata returns a copy of the metadata mapping.
func (m *Map) Metadata() map[string]string {
	out := make(map[string]string, len(m.metadata))
	for k, v := range m.metadata {
		out[k] = v
	}
	return out
}
