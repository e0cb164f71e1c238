package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-ptconv/pkg/checkpoint"
	"github.com/goliatone/go-ptconv/pkg/emit"
	"github.com/goliatone/go-ptconv/pkg/schema"
)

// Request describes the inputs required to convert one source (a file, a
// directory of files, or an fs.FS entry).
type Request struct {
	// Source identifies where the checkpoint(s) live.
	Source checkpoint.Source

	// Kind declares the checkpoint shape (embedding or vae).
	Kind schema.Kind

	// Writer names the output format. If empty, the converter falls back to
	// the configured default writer.
	Writer string

	// Metadata is merged into the container metadata of every output.
	Metadata map[string]string
}

// Convert executes the discover → load → build → emit sequence for every
// input the request's source expands to. Per-file failures are logged and
// skipped so one corrupt checkpoint does not abort a directory run; the
// returned error is reserved for request-level problems (bad kind, unknown
// writer, undiscoverable source).
func (c *Converter) Convert(ctx context.Context, req Request) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("convert: context is required")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if req.Source == nil {
		return Result{}, errors.New("convert: source is required")
	}
	if !req.Kind.Valid() {
		return Result{}, fmt.Errorf("convert: kind %q is not supported", req.Kind)
	}

	writer, err := c.writerFor(req.Writer)
	if err != nil {
		return Result{}, err
	}

	paths, err := checkpoint.Discover(ctx, req.Source, c.loaderOpts)
	if err != nil {
		return Result{}, fmt.Errorf("convert: discover inputs: %w", err)
	}
	if len(paths) == 0 {
		// A directory without matching files is a quiet no-op, not an error.
		c.logger.Info("no checkpoint files found", zap.String("source", req.Source.Location()))
		return Result{}, nil
	}

	fromFS := req.Source.Kind() == checkpoint.SourceKindFS

	var result Result
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		fileResult, err := c.convertOne(ctx, path, fromFS, req, writer)
		if err != nil {
			if errors.Is(err, errDeclined) {
				c.logger.Info("skipping file", zap.String("input", path), zap.String("reason", "overwrite declined"))
				result.Skipped = append(result.Skipped, path)
				continue
			}
			c.logger.Warn("skipping file", zap.String("input", path), zap.Error(err))
			result.Failed = append(result.Failed, FileFailure{Input: path, Err: err})
			continue
		}
		c.logger.Info("converted checkpoint",
			zap.String("input", path),
			zap.String("output", fileResult.Output),
			zap.Int("tensors", fileResult.Tensors))
		result.Converted = append(result.Converted, fileResult)
	}
	return result, nil
}

// errDeclined marks an interactive "no" so Convert can file it under Skipped
// rather than Failed.
var errDeclined = errors.New("overwrite declined")

func (c *Converter) convertOne(ctx context.Context, path string, fromFS bool, req Request, writer emit.Writer) (FileResult, error) {
	var src checkpoint.Source
	if fromFS {
		src = checkpoint.SourceFromFS(path)
	} else {
		src = checkpoint.SourceFromFile(path)
	}

	chk, err := c.loader.Load(ctx, src)
	if err != nil {
		return FileResult{}, fmt.Errorf("load: %w", err)
	}

	tensors, err := c.builder.Build(ctx, chk, req.Kind)
	if err != nil {
		return FileResult{}, fmt.Errorf("build %s mapping: %w", req.Kind, err)
	}

	metadata := tensors.Metadata()
	c.logger.Debug("flattened checkpoint",
		zap.String("input", path),
		zap.String("kind", req.Kind.String()),
		zap.Int("tensors", tensors.Len()),
		zap.Any("metadata", metadata))

	data, err := writer.Write(ctx, tensors, emit.Options{Metadata: req.Metadata})
	if err != nil {
		return FileResult{}, fmt.Errorf("emit %s: %w", writer.Name(), err)
	}

	outPath := c.outputPath(path, writer.Extension())
	if err := c.checkOverwrite(outPath); err != nil {
		return FileResult{}, err
	}
	if err := writeFileAtomic(outPath, data); err != nil {
		return FileResult{}, err
	}

	return FileResult{
		Input:    path,
		Output:   outPath,
		Tensors:  tensors.Len(),
		Metadata: metadata,
	}, nil
}

// outputPath swaps the checkpoint extension for the writer extension, keeping
// the file alongside its input unless an output directory is configured.
func (c *Converter) outputPath(inputPath, ext string) string {
	base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ext
	if c.outputDir == "" {
		return base
	}
	return filepath.Join(c.outputDir, filepath.Base(base))
}

func (c *Converter) checkOverwrite(outPath string) error {
	if _, err := os.Stat(outPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat output %q: %w", outPath, err)
	}

	switch c.overwrite {
	case OverwriteReplace:
		return nil
	case OverwritePrompt:
		ok, err := c.confirmer.Confirm(fmt.Sprintf("Overwrite %s?", outPath), false)
		if err != nil {
			return fmt.Errorf("confirm overwrite: %w", err)
		}
		if !ok {
			return errDeclined
		}
		return nil
	default:
		return fmt.Errorf("output %q already exists", outPath)
	}
}

// writeFileAtomic stages the bytes in a temp file and renames it into place,
// so a failed write never leaves a truncated container behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir %q: %w", dir, err)
		}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("stage output: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod output: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("finalize output %q: %w", path, err)
	}
	return nil
}

func (c *Converter) writerFor(name string) (emit.Writer, error) {
	if c.registry == nil {
		return nil, errors.New("convert: writer registry is nil")
	}

	target := name
	if target == "" {
		target = c.defaultWriter
	}
	writer, err := c.registry.Get(target)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	return writer, nil
}
