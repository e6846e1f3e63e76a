// Package pdf2text converts scanned PDF documents to plain text by rendering
// every page and running it through OCR on a bounded pool of workers.
//
// Usage:
//
//	res, err := pdf2text.Convert(ctx, pdf2text.Options{
//		Input:    "scan.pdf",
//		Language: "eng+rus",
//		Workers:  4,
//	})
package pdf2text

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/spherical/pdf2text/internal/cache"
	"github.com/spherical/pdf2text/internal/config"
	"github.com/spherical/pdf2text/internal/convert"
	"github.com/spherical/pdf2text/internal/domain"
	"github.com/spherical/pdf2text/internal/llm"
	"github.com/spherical/pdf2text/internal/observability"
	"github.com/spherical/pdf2text/internal/ocr"
	"github.com/spherical/pdf2text/internal/pdf"
)

// Re-export domain types for the public API
type (
	Result         = domain.Result
	Order          = domain.Order
	Progress       = domain.Progress
	ErrorType      = domain.ErrorType
	DomainError    = domain.DomainError
	TextRecognizer = domain.TextRecognizer
)

const (
	OrderCompletion = domain.OrderCompletion
	OrderPage       = domain.OrderPage

	ErrorTypeInvalidInput = domain.ErrorTypeInvalidInput
	ErrorTypeDocumentRead = domain.ErrorTypeDocumentRead
	ErrorTypeOCREngine    = domain.ErrorTypeOCREngine
	ErrorTypeConfig       = domain.ErrorTypeConfig
	ErrorTypeIO           = domain.ErrorTypeIO
	ErrorTypeCanceled     = domain.ErrorTypeCanceled
)

// IsType reports whether err carries a DomainError of the given type.
func IsType(err error, t ErrorType) bool { return domain.IsType(err, t) }

// Options configures a Converter. Zero values select defaults.
type Options struct {
	Input    string // used by Convert only
	Language string
	Workers  int
	Order    Order

	Engine      string // tesseract (default) or vision
	Counter     string // fitz (default) or pdfcpu
	DPI         int
	PageSegMode int

	VisionAPIKey  string
	VisionModel   string
	VisionBaseURL string
	VisionTimeout time.Duration

	Cache         string // none (default), memory or redis
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	// Recognizer replaces the engine selected by Engine.
	Recognizer TextRecognizer
	// Progress is called once the page count is known and after every page.
	Progress func(Progress)
	Logger   *zerolog.Logger
}

// Converter is the main entry point for the library. It can convert several
// documents and shares its page cache between them.
type Converter struct {
	service *convert.Service
	cache   cache.Client
	opts    Options
}

// New builds a Converter from opts.
func New(ctx context.Context, opts Options) (*Converter, error) {
	logger := observability.Nop()
	if opts.Logger != nil {
		logger = observability.Wrap(*opts.Logger)
	}

	counter, err := newCounter(opts.Counter)
	if err != nil {
		return nil, err
	}

	recognizer := opts.Recognizer
	if recognizer == nil {
		recognizer, err = newRecognizer(opts, logger)
		if err != nil {
			return nil, err
		}
	}

	serviceOpts := []convert.Option{convert.WithLogger(logger)}
	if opts.Progress != nil {
		serviceOpts = append(serviceOpts, convert.WithProgress(opts.Progress))
	}

	pageCache := newCache(ctx, opts, logger)
	if pageCache != nil {
		serviceOpts = append(serviceOpts, convert.WithCache(pageCache, opts.CacheTTL))
	}

	return &Converter{
		service: convert.NewService(counter, pdf.NewFitzRasterizer(opts.DPI, logger), recognizer, serviceOpts...),
		cache:   pageCache,
		opts:    opts,
	}, nil
}

// Convert converts the document at path.
func (c *Converter) Convert(ctx context.Context, path string) (*Result, error) {
	return c.service.ConvertDocument(ctx, convert.Request{
		Path:     path,
		Language: c.opts.Language,
		Workers:  c.opts.Workers,
		Order:    c.opts.Order,
	})
}

// Close cleans up resources
func (c *Converter) Close() error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Close()
}

// Convert converts opts.Input with a one-off Converter.
func Convert(ctx context.Context, opts Options) (*Result, error) {
	c, err := New(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	return c.Convert(ctx, opts.Input)
}

func newCounter(name string) (domain.PageCounter, error) {
	switch name {
	case "", config.CounterFitz:
		return pdf.NewFitzCounter(), nil
	case config.CounterPDFCPU:
		return pdf.NewPDFCPUCounter(), nil
	default:
		return nil, domain.ConfigError(fmt.Sprintf("unknown page counter %q", name), nil)
	}
}

func newRecognizer(opts Options, logger *observability.Logger) (domain.TextRecognizer, error) {
	switch opts.Engine {
	case "", config.EngineTesseract:
		dpi := opts.DPI
		if dpi <= 0 {
			dpi = pdf.DefaultDPI
		}
		return ocr.NewTesseractRecognizer(ocr.WithDPI(dpi), ocr.WithPageSegMode(opts.PageSegMode)), nil
	case config.EngineVision:
		if opts.VisionAPIKey == "" {
			return nil, domain.ConfigError("an OpenRouter API key is required for the vision engine", nil)
		}
		return llm.NewClient(llm.Config{
			APIKey:  opts.VisionAPIKey,
			Model:   opts.VisionModel,
			BaseURL: opts.VisionBaseURL,
			Timeout: opts.VisionTimeout,
			Logger:  logger,
		}), nil
	default:
		return nil, domain.ConfigError(fmt.Sprintf("unknown OCR engine %q", opts.Engine), nil)
	}
}

// newCache returns nil when caching is off. An unreachable Redis disables the
// cache for the run instead of failing it.
func newCache(ctx context.Context, opts Options, logger *observability.Logger) cache.Client {
	switch opts.Cache {
	case config.CacheMemory:
		return cache.NewMemoryClient(0)
	case config.CacheRedis:
		c, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
			Prefix:   opts.RedisPrefix,
		})
		if err != nil {
			logger.Warn().Err(err).Str("addr", opts.RedisAddr).Msg("page cache unavailable, continuing without it")
			return nil
		}
		return c
	default:
		return nil
	}
}
