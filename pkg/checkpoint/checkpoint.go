package checkpoint

import "errors"

// Checkpoint wraps the object graph decoded from a checkpoint file together
// with its origin. The graph is whatever dictionary-of-named-arrays the
// deserialization library produced; this package only knows how to navigate
// it, never how to interpret individual entries.
type Checkpoint struct {
	source Source
	root   any
}

// New constructs a Checkpoint wrapper while validating the inputs.
func New(src Source, root any) (Checkpoint, error) {
	if src == nil {
		return Checkpoint{}, errors.New("checkpoint: source is required")
	}
	if root == nil {
		return Checkpoint{}, errors.New("checkpoint: decoded graph is required")
	}
	return Checkpoint{source: src, root: root}, nil
}

// Source reports where the checkpoint came from.
func (c Checkpoint) Source() Source {
	return c.source
}

// Root returns the decoded object graph.
func (c Checkpoint) Root() any {
	return c.root
}

// Lookup walks nested dictionary-like nodes by key and returns the value at
// the end of the path. It returns false as soon as a key is missing or a node
// is not dictionary-like.
func (c Checkpoint) Lookup(keys ...string) (any, bool) {
	node := c.root
	for _, key := range keys {
		next, ok := Get(node, key)
		if !ok {
			return nil, false
		}
		node = next
	}
	return node, true
}

// getter matches the Get contract shared by the decoder's dictionary types,
// so navigation works without this package depending on the decoder.
type getter interface {
	Get(k any) (any, bool)
}

// Get reads a single key from a dictionary-like node. Plain Go maps and any
// type exposing Get(key) (value, bool) are supported.
func Get(node any, key string) (any, bool) {
	switch d := node.(type) {
	case map[string]any:
		v, ok := d[key]
		return v, ok
	case map[any]any:
		v, ok := d[key]
		return v, ok
	case getter:
		return d.Get(key)
	default:
		return nil, false
	}
}
