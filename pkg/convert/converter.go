package convert

import (
	"go.uber.org/zap"

	internalLoader "github.com/goliatone/go-ptconv/internal/checkpoint/loader"
	"github.com/goliatone/go-ptconv/internal/prompt"
	internalSchema "github.com/goliatone/go-ptconv/internal/schema"
	"github.com/goliatone/go-ptconv/pkg/checkpoint"
	"github.com/goliatone/go-ptconv/pkg/emit"
	"github.com/goliatone/go-ptconv/pkg/emitters/manifest"
	"github.com/goliatone/go-ptconv/pkg/emitters/safetensors"
	"github.com/goliatone/go-ptconv/pkg/schema"
)

const defaultWriterName = safetensors.WriterName

// OverwritePolicy decides what happens when an output file already exists.
type OverwritePolicy string

const (
	// OverwriteError fails the file; the run continues with the next input.
	OverwriteError OverwritePolicy = "error"

	// OverwriteReplace silently replaces the existing output.
	OverwriteReplace OverwritePolicy = "replace"

	// OverwritePrompt asks the configured Confirmer before replacing.
	OverwritePrompt OverwritePolicy = "prompt"
)

// Confirmer answers yes/no questions for interactive policies. The default
// implementation prompts on the terminal; tests inject stubs.
type Confirmer interface {
	Confirm(message string, defaultAnswer bool) (bool, error)
}

// Option customises the converter configuration.
type Option func(*Converter)

// WithLoader injects a custom checkpoint loader.
func WithLoader(loader checkpoint.Loader) Option {
	return func(c *Converter) {
		c.loader = loader
	}
}

// WithLoaderOptions overrides the options used for input discovery and the
// default loader (extension allow-list, fs.FS).
func WithLoaderOptions(options ...checkpoint.LoaderOption) Option {
	return func(c *Converter) {
		c.loaderOpts = checkpoint.NewLoaderOptions(options...)
	}
}

// WithBuilder injects a custom schema builder.
func WithBuilder(builder schema.Builder) Option {
	return func(c *Converter) {
		c.builder = builder
	}
}

// WithRegistry injects a writer registry.
func WithRegistry(registry *emit.Registry) Option {
	return func(c *Converter) {
		c.registry = registry
	}
}

// WithDefaultWriter overrides the writer used when a request omits an
// explicit Writer field.
func WithDefaultWriter(name string) Option {
	return func(c *Converter) {
		c.defaultWriter = name
	}
}

// WithLogger injects a structured logger. The default is a no-op logger so
// library callers opt in to output.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithOutputDir redirects output files into dir instead of writing siblings.
func WithOutputDir(dir string) Option {
	return func(c *Converter) {
		c.outputDir = dir
	}
}

// WithOverwritePolicy selects the behavior when an output already exists.
func WithOverwritePolicy(policy OverwritePolicy) Option {
	return func(c *Converter) {
		c.overwrite = policy
	}
}

// WithConfirmer injects the yes/no driver used by OverwritePrompt.
func WithConfirmer(confirmer Confirmer) Option {
	return func(c *Converter) {
		c.confirmer = confirmer
	}
}

// Converter runs the discover → load → build → emit pipeline. Construct it
// with New; the zero value has no stages wired.
type Converter struct {
	loader        checkpoint.Loader
	loaderOpts    checkpoint.LoaderOptions
	builder       schema.Builder
	registry      *emit.Registry
	defaultWriter string
	logger        *zap.Logger
	outputDir     string
	overwrite     OverwritePolicy
	confirmer     Confirmer
}

// New constructs a Converter applying any provided options. Missing
// dependencies are initialised with the built-in implementations so callers
// can start with a single constructor call.
func New(options ...Option) *Converter {
	c := &Converter{
		defaultWriter: defaultWriterName,
		overwrite:     OverwriteError,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	c.applyDefaults()
	return c
}

func (c *Converter) applyDefaults() {
	if len(c.loaderOpts.Extensions) == 0 {
		c.loaderOpts = checkpoint.NewLoaderOptions(
			checkpoint.WithFileSystem(c.loaderOpts.FileSystem),
		)
	}
	if c.loader == nil {
		c.loader = internalLoader.New(c.loaderOpts)
	}
	if c.builder == nil {
		c.builder = internalSchema.New()
	}
	if c.registry == nil {
		registry := emit.NewRegistry()
		registry.MustRegister(safetensors.New())
		registry.MustRegister(manifest.New())
		c.registry = registry
	}
	if c.defaultWriter == "" {
		c.defaultWriter = defaultWriterName
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.overwrite == "" {
		c.overwrite = OverwriteError
	}
	if c.confirmer == nil {
		c.confirmer = prompt.New()
	}
}
