// Package commands implements the pdf2text command line.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/spherical/pdf2text/cmd/pdf2text/ui"
	"github.com/spherical/pdf2text/internal/config"
	"github.com/spherical/pdf2text/internal/domain"
	"github.com/spherical/pdf2text/internal/observability"
	"github.com/spherical/pdf2text/internal/output"
	"github.com/spherical/pdf2text/pkg/pdf2text"
)

// Exit codes
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitInvalidInput = 2
	ExitDocumentRead = 3
	ExitOCREngine    = 4
	ExitConfig       = 5
	ExitOutput       = 6
	ExitCanceled     = 130
)

type rootOptions struct {
	cfgFile    string
	input      string
	language   string
	workers    int
	output     string
	order      string
	engine     string
	counter    string
	dpi        int
	cache      string
	redisAddr  string
	upload     string
	verbose    bool
	noProgress bool
	noColor    bool
}

// NewRootCommand builds the pdf2text command.
func NewRootCommand(version string, stdout, stderr io.Writer) *cobra.Command {
	o := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "pdf2text -i <file.pdf> [-l eng+rus] [-w workers]",
		Short: "Convert a scanned PDF to plain text with OCR",
		Long: `pdf2text renders every page of a PDF document, recognizes its text with
Tesseract (or a vision model) on a pool of parallel workers, and writes the
text of all pages to result.txt.`,
		Example: `  pdf2text -i scan.pdf
  pdf2text -i scan.pdf -l eng+rus -w 4
  pdf2text -i scan.pdf --order page -o scan.txt`,
		Version:       version,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return domain.InvalidInputError(fmt.Sprintf("unexpected argument %q; pass the PDF with -i", args[0]), nil)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, o, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return domain.InvalidInputError(err.Error(), err)
	})

	flags := cmd.Flags()
	flags.StringVarP(&o.input, "input", "i", "", "path to the PDF file (required)")
	flags.StringVarP(&o.language, "language", "l", domain.DefaultLanguage, `OCR language profile, "+" joins several (eng+rus)`)
	flags.IntVarP(&o.workers, "workers", "w", 1, "number of pages recognized in parallel")
	flags.StringVarP(&o.output, "output", "o", config.DefaultOutput, "output text file")
	flags.StringVar(&o.order, "order", string(domain.OrderCompletion), "page order in the output: completion or page")
	flags.StringVar(&o.engine, "engine", config.EngineTesseract, "OCR engine: tesseract or vision")
	flags.StringVar(&o.counter, "counter", config.CounterFitz, "page counter: fitz or pdfcpu")
	flags.IntVar(&o.dpi, "dpi", 300, "page render resolution")
	flags.StringVar(&o.cache, "cache", config.CacheNone, "page cache: none, memory or redis")
	flags.StringVar(&o.redisAddr, "redis-addr", "", "Redis address for --cache redis")
	flags.StringVar(&o.upload, "upload", "", "also upload the result to gs://bucket/object")
	flags.StringVarP(&o.cfgFile, "config", "c", "", "config file path")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVar(&o.noProgress, "no-progress", false, "disable the progress bar")
	flags.BoolVar(&o.noColor, "no-color", false, "disable colored output")

	return cmd
}

// Execute runs the command with args and returns the process exit code.
func Execute(ctx context.Context, version string, args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCommand(version, stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		ui.New(stdout, stderr, noColorRequested(cmd)).Error("%v", err)
	}
	return ExitCode(err)
}

func noColorRequested(cmd *cobra.Command) bool {
	v, err := cmd.Flags().GetBool("no-color")
	return err == nil && v
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return ExitCanceled
	}
	switch domain.TypeOf(err) {
	case domain.ErrorTypeInvalidInput:
		return ExitInvalidInput
	case domain.ErrorTypeDocumentRead:
		return ExitDocumentRead
	case domain.ErrorTypeOCREngine:
		return ExitOCREngine
	case domain.ErrorTypeConfig:
		return ExitConfig
	case domain.ErrorTypeIO:
		return ExitOutput
	case domain.ErrorTypeCanceled:
		return ExitCanceled
	default:
		return ExitFailure
	}
}

func run(cmd *cobra.Command, o *rootOptions, stdout, stderr io.Writer) error {
	ctx := cmd.Context()

	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg, o)
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := cfg.Log.Level
	if o.verbose {
		level = "debug"
	}
	zl := observability.NewZerolog(observability.LogConfig{
		Level:  level,
		Format: cfg.Log.Format,
		Output: stderr,
		RunID:  uuid.NewString(),
	})
	logger := observability.Wrap(zl)

	term := ui.New(stdout, stderr, o.noColor)
	progress := ui.NewPageProgress(stderr, !o.noProgress && !o.verbose)

	progress.Start("Opening " + cfg.Conversion.Input)
	res, err := pdf2text.Convert(ctx, pdf2text.Options{
		Input:         cfg.Conversion.Input,
		Language:      cfg.Conversion.Language,
		Workers:       cfg.Conversion.Workers,
		Order:         domain.Order(cfg.Conversion.Order),
		Engine:        cfg.Conversion.Engine,
		Counter:       cfg.Conversion.Counter,
		DPI:           cfg.Conversion.DPI,
		PageSegMode:   cfg.Tesseract.PageSegMode,
		VisionAPIKey:  cfg.Vision.APIKey,
		VisionModel:   cfg.Vision.Model,
		VisionBaseURL: cfg.Vision.BaseURL,
		VisionTimeout: cfg.Vision.Timeout,
		Cache:         cfg.Cache.Driver,
		CacheTTL:      cfg.Cache.TTL,
		RedisAddr:     cfg.Cache.Redis.Addr,
		RedisPassword: cfg.Cache.Redis.Password,
		RedisDB:       cfg.Cache.Redis.DB,
		RedisPrefix:   cfg.Cache.Redis.Prefix,
		Progress:      progress.Update,
		Logger:        &zl,
	})
	if err != nil {
		progress.Abort()
		return err
	}
	progress.Finish()

	if err := output.WriteFile(cfg.Conversion.Output, res.Text); err != nil {
		return err
	}

	if cfg.Upload.URI != "" {
		if err := upload(ctx, cfg.Upload, res.Text, logger); err != nil {
			term.Warning("result kept in %s", cfg.Conversion.Output)
			return err
		}
	}

	if res.EmptyPages > 0 || res.CachedPages > 0 {
		term.Info("%d empty pages, %d pages from cache", res.EmptyPages, res.CachedPages)
	}
	term.Success("Wrote %d pages to %s in %s", res.Pages, cfg.Conversion.Output, res.Duration.Round(time.Millisecond))
	return nil
}

func upload(ctx context.Context, cfg config.UploadConfig, text string, logger *observability.Logger) error {
	uploader, err := output.NewGCSUploader(ctx, cfg.SkipExisting, logger)
	if err != nil {
		return err
	}
	defer uploader.Close()

	return uploader.Upload(ctx, cfg.URI, text)
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config, o *rootOptions) {
	flags := cmd.Flags()
	cfg.Conversion.Input = o.input

	if flags.Changed("language") {
		cfg.Conversion.Language = o.language
	}
	if flags.Changed("workers") {
		cfg.Conversion.Workers = o.workers
	}
	if flags.Changed("output") {
		cfg.Conversion.Output = o.output
	}
	if flags.Changed("order") {
		cfg.Conversion.Order = o.order
	}
	if flags.Changed("engine") {
		cfg.Conversion.Engine = o.engine
	}
	if flags.Changed("counter") {
		cfg.Conversion.Counter = o.counter
	}
	if flags.Changed("dpi") {
		cfg.Conversion.DPI = o.dpi
	}
	if flags.Changed("cache") {
		cfg.Cache.Driver = o.cache
	}
	if flags.Changed("redis-addr") {
		cfg.Cache.Redis.Addr = o.redisAddr
	}
	if flags.Changed("upload") {
		cfg.Upload.URI = o.upload
	}
}
