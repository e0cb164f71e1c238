package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-ptconv/internal/cliconfig"
	"github.com/goliatone/go-ptconv/internal/watch"
	"github.com/goliatone/go-ptconv/pkg/checkpoint"
	"github.com/goliatone/go-ptconv/pkg/convert"
	"github.com/goliatone/go-ptconv/pkg/report"
	"github.com/goliatone/go-ptconv/pkg/schema"
)

func main() {
	verbose := flag.Bool("verbose", false, "enable verbose output")
	recursive := flag.Bool("recursive", false, "descend into subdirectories when the path is a directory")
	force := flag.Bool("force", false, "overwrite existing output files without asking")
	watchMode := flag.Bool("watch", false, "keep watching a directory and convert checkpoints as they arrive")
	showReport := flag.Bool("report", false, "print a summary report after the run")
	outputDir := flag.String("output-dir", "", "write outputs into this directory instead of alongside inputs")
	format := flag.String("format", "", "output format: safetensors (default) or manifest")
	configPath := flag.String("config", "", "config file path (default ptconv.yaml when present)")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <path> <embedding|vae>\n\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "Converts PyTorch checkpoint files to the safetensors format.")
		fmt.Fprintln(flag.CommandLine.Output(), "<path> may be a checkpoint file or a directory containing checkpoint files.")
		fmt.Fprintln(flag.CommandLine.Output(), "\nFlags:")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	kind, err := schema.ParseKind(flag.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ptconv-cli: %v\n", err)
		os.Exit(2)
	}

	cfg, err := cliconfig.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ptconv-cli: %v\n", err)
		os.Exit(2)
	}

	logger, err := buildLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ptconv-cli: initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, cfg, runOptions{
		path:       path,
		kind:       kind,
		verbose:    *verbose,
		recursive:  *recursive || cfg.Recursive,
		force:      *force,
		watch:      *watchMode,
		showReport: *showReport,
		outputDir:  firstNonEmpty(*outputDir, cfg.OutputDir),
		format:     firstNonEmpty(*format, cfg.Format),
	}); err != nil {
		logger.Error("conversion failed", zap.Error(err))
		os.Exit(1)
	}
}

type runOptions struct {
	path       string
	kind       schema.Kind
	verbose    bool
	recursive  bool
	force      bool
	watch      bool
	showReport bool
	outputDir  string
	format     string
}

func run(ctx context.Context, logger *zap.Logger, cfg cliconfig.Config, opts runOptions) error {
	info, err := os.Stat(opts.path)
	if err != nil {
		return fmt.Errorf("stat %q: %w", opts.path, err)
	}

	loaderOpts := []checkpoint.LoaderOption{}
	if len(cfg.Extensions) > 0 {
		loaderOpts = append(loaderOpts, checkpoint.WithExtensions(cfg.Extensions...))
	}

	overwrite := convert.OverwritePrompt
	if opts.force {
		overwrite = convert.OverwriteReplace
	} else if cfg.Overwrite != "" {
		overwrite = convert.OverwritePolicy(cfg.Overwrite)
	}

	converterOptions := []convert.Option{
		convert.WithLogger(logger),
		convert.WithLoaderOptions(loaderOpts...),
		convert.WithOverwritePolicy(overwrite),
	}
	if opts.outputDir != "" {
		converterOptions = append(converterOptions, convert.WithOutputDir(opts.outputDir))
	}
	if opts.format != "" {
		converterOptions = append(converterOptions, convert.WithDefaultWriter(opts.format))
	}
	conv := convert.New(converterOptions...)

	var src checkpoint.Source
	if info.IsDir() {
		src = checkpoint.SourceFromDir(opts.path, opts.recursive)
	} else {
		src = checkpoint.SourceFromFile(opts.path)
	}

	result, err := conv.Convert(ctx, convert.Request{Source: src, Kind: opts.kind})
	if err != nil {
		return err
	}
	printResult(result)
	if opts.showReport {
		if err := printReport(result); err != nil {
			return err
		}
	}

	if opts.watch {
		if !info.IsDir() {
			return fmt.Errorf("watch mode needs a directory, %q is a file", opts.path)
		}
		return runWatch(ctx, logger, conv, checkpoint.NewLoaderOptions(loaderOpts...), opts)
	}
	return result.Err()
}

// runWatch blocks converting checkpoints as they land in the directory until
// the process is interrupted.
func runWatch(ctx context.Context, logger *zap.Logger, conv *convert.Converter, watchOpts checkpoint.LoaderOptions, opts runOptions) error {
	watcher, err := watch.New(opts.path, watchOpts, logger)
	if err != nil {
		return err
	}
	err = watcher.Run(ctx, func(path string) {
		result, err := conv.Convert(ctx, convert.Request{
			Source: checkpoint.SourceFromFile(path),
			Kind:   opts.kind,
		})
		if err != nil {
			logger.Warn("conversion failed", zap.String("input", path), zap.Error(err))
			return
		}
		printResult(result)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printResult(result convert.Result) {
	for _, f := range result.Converted {
		fmt.Printf("Saved converted file: %s\n", f.Output)
	}
}

func printReport(result convert.Result) error {
	renderer, err := report.New()
	if err != nil {
		return err
	}
	out, err := renderer.Render(result)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
