package convert

import (
	"errors"
	"fmt"
	"strings"
)

// FileResult records one successfully converted input.
type FileResult struct {
	Input   string
	Output  string
	Tensors int

	// Metadata carries the training metadata the builder surfaced, when any.
	Metadata map[string]string
}

// FileFailure records one skipped input and why it was skipped.
type FileFailure struct {
	Input string
	Err   error
}

// Result summarises a conversion run. A run with failures still completes;
// callers inspect Failed (or Err) to decide the exit status.
type Result struct {
	Converted []FileResult
	Failed    []FileFailure

	// Skipped lists inputs passed over on purpose (declined overwrites).
	Skipped []string
}

// Err folds the per-file failures into a single error, or nil when every
// discovered input converted.
func (r Result) Err() error {
	switch len(r.Failed) {
	case 0:
		return nil
	case 1:
		return fmt.Errorf("convert: %s: %w", r.Failed[0].Input, r.Failed[0].Err)
	default:
		var sb strings.Builder
		fmt.Fprintf(&sb, "convert: %d files failed:", len(r.Failed))
		for _, f := range r.Failed {
			fmt.Fprintf(&sb, "\n  %s: %v", f.Input, f.Err)
		}
		return errors.New(sb.String())
	}
}
