// Package convert coordinates the full pipeline from checkpoint file to
// written container: discover inputs, deserialize each one, flatten it to a
// tensor mapping for the declared kind, and write the emitted bytes alongside
// the input. Defaults cover the common case (pickle loader, safetensors
// writer) while every stage stays open to dependency injection.
package convert
