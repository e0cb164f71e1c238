// Package emit exposes the output-stage contracts: the Writer interface that
// serializes a tensor mapping into container bytes, and a Registry for
// selecting writers by name. Concrete formats live under pkg/emitters.
package emit
