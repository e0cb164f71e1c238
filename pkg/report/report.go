// Package report renders human-readable summaries of conversion runs. The
// template is embedded so the CLI needs no assets on disk, and the renderer
// is exported for callers that want run summaries in their own tooling.
package report

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-ptconv/pkg/convert"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

const templateName = "report.tpl"

// convertedRow is the template view of one successful conversion.
type convertedRow struct {
	Input    string
	Output   string
	Tensors  int
	Metadata []metadataRow
}

type metadataRow struct {
	Key   string
	Value string
}

// failedRow is the template view of one skipped input.
type failedRow struct {
	Input  string
	Reason string
}

// Renderer renders convert.Result values through the embedded template.
type Renderer struct {
	template *pongo2.Template
}

// New constructs a Renderer, loading the embedded template set.
func New() (*Renderer, error) {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("report: template fs: %w", err)
	}
	set := pongo2.NewSet("report", pongo2.NewFSLoader(sub))
	tpl, err := set.FromFile(templateName)
	if err != nil {
		return nil, fmt.Errorf("report: load template: %w", err)
	}
	return &Renderer{template: tpl}, nil
}

// Render produces the textual summary of a run.
func (r *Renderer) Render(result convert.Result) (string, error) {
	converted := make([]convertedRow, 0, len(result.Converted))
	for _, f := range result.Converted {
		row := convertedRow{
			Input:   f.Input,
			Output:  f.Output,
			Tensors: f.Tensors,
		}
		keys := make([]string, 0, len(f.Metadata))
		for k := range f.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			row.Metadata = append(row.Metadata, metadataRow{Key: k, Value: f.Metadata[k]})
		}
		converted = append(converted, row)
	}

	failed := make([]failedRow, 0, len(result.Failed))
	for _, f := range result.Failed {
		failed = append(failed, failedRow{Input: f.Input, Reason: f.Err.Error()})
	}

	out, err := r.template.Execute(pongo2.Context{
		"converted": converted,
		"failed":    failed,
		"skipped":   result.Skipped,
	})
	if err != nil {
		return "", fmt.Errorf("report: render: %w", err)
	}
	return out, nil
}
