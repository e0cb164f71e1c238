// Package checkpoint exposes the public contracts for the loading stage:
// sources identifying where checkpoint files live, the Loader interface that
// deserializes them, and the Checkpoint wrapper around the decoded object
// graph. The pickle-backed implementation lives under internal/checkpoint to
// keep the deserialization library hidden from consumers.
package checkpoint
