// Package tensor defines the flat tensor model shared by the loading and
// emitting stages. A checkpoint, whatever shape it arrives in, is reduced to a
// Map of named tensors plus string metadata; emitters only ever see that Map.
package tensor
