// Package schema exposes the contracts for the mapping stage: the checkpoint
// kinds the converter understands and the Builder that flattens a decoded
// checkpoint into the tensor mapping emitters consume. The implementation
// lives under internal/schema.
package schema
