// Package convert orchestrates page-parallel PDF to text conversion: it counts
// the pages of a document, runs one rasterize+recognize task per page on a
// bounded worker pool and assembles the page texts into one buffer.
package convert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spherical/pdf2text/internal/cache"
	"github.com/spherical/pdf2text/internal/domain"
	"github.com/spherical/pdf2text/internal/observability"
	"github.com/spherical/pdf2text/internal/pdf"
)

// Request describes one document conversion.
type Request struct {
	Path     string
	Language string       // "+"-joined Tesseract profiles; empty means eng
	Workers  int          // values <= 0 are clamped to 1
	Order    domain.Order // empty means completion order
}

// Service orchestrates the PDF conversion process
type Service struct {
	counter    domain.PageCounter
	rasterizer domain.PageRasterizer
	recognizer domain.TextRecognizer
	validator  domain.DocumentValidator

	cache    cache.Client
	cacheTTL time.Duration
	progress domain.ProgressFunc
	logger   *observability.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables the page cache. Entries are stored with ttl.
func WithCache(c cache.Client, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithProgress registers a callback invoked once the page count is known and
// after every collected page.
func WithProgress(fn domain.ProgressFunc) Option {
	return func(s *Service) { s.progress = fn }
}

// WithLogger sets the service logger.
func WithLogger(l *observability.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithValidator replaces the default input path validator.
func WithValidator(v domain.DocumentValidator) Option {
	return func(s *Service) { s.validator = v }
}

// NewService creates a new conversion service
func NewService(counter domain.PageCounter, rasterizer domain.PageRasterizer, recognizer domain.TextRecognizer, opts ...Option) *Service {
	s := &Service{
		counter:    counter,
		rasterizer: rasterizer,
		recognizer: recognizer,
		logger:     observability.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.validator == nil {
		s.validator = pdf.NewValidator(s.logger)
	}
	s.logger = s.logger.WithComponent("convert")
	return s
}

// ConvertDocument converts every page of the document and returns the
// assembled text. Nothing is returned on failure: the first OCR error stops
// dispatch of further pages and is reported once all running tasks have
// returned.
func (s *Service) ConvertDocument(ctx context.Context, req Request) (*domain.Result, error) {
	startTime := time.Now()

	if err := s.validator.ValidatePDFPath(req.Path); err != nil {
		return nil, err
	}

	order, err := domain.ParseOrder(string(req.Order))
	if err != nil {
		return nil, domain.InvalidInputError("invalid result order", err)
	}

	language := domain.NormalizeLanguage(req.Language)
	workers := domain.ClampWorkers(req.Workers)
	if workers != req.Workers {
		s.logger.Debug().Int("requested", req.Workers).Int("workers", workers).Msg("worker count clamped")
	}

	if err := ctx.Err(); err != nil {
		return nil, domain.CanceledError("conversion canceled", err)
	}

	total, err := s.counter.PageCount(ctx, req.Path)
	if err != nil {
		if ctx.Err() != nil {
			return nil, domain.CanceledError("conversion canceled", ctx.Err())
		}
		var de *domain.DomainError
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, domain.DocumentReadError(fmt.Sprintf("failed to count pages of %s", req.Path), err)
	}

	s.logger.Info().
		Str("path", req.Path).
		Int("pages", total).
		Int("workers", workers).
		Str("language", language).
		Str("engine", s.recognizer.Name()).
		Str("order", string(order)).
		Msg("starting conversion")

	if s.progress != nil {
		s.progress(domain.Progress{Completed: 0, Total: total})
	}

	docHash := s.documentHash(req.Path)

	asm := newAssembler(order, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	results := make(chan domain.PageResult, workers)
	collected := make(chan struct{})

	go func() {
		defer close(collected)
		for r := range results {
			asm.add(r)
			if s.progress != nil {
				s.progress(domain.Progress{Completed: asm.count, Total: total})
			}
		}
	}()

	for page := 0; page < total; page++ {
		if gctx.Err() != nil {
			break
		}

		task := domain.Task{Path: req.Path, Language: language, Page: page, State: domain.TaskPending}
		g.Go(func() error {
			r, err := s.runTask(gctx, &task, docHash)
			if err != nil {
				return err
			}
			results <- r
			return nil
		})
	}

	err = g.Wait()
	close(results)
	<-collected

	if ctx.Err() != nil && (err != nil || asm.count < total) {
		s.logger.Warn().Int("completed", asm.count).Int("pages", total).Msg("conversion canceled")
		return nil, domain.CanceledError("conversion canceled", ctx.Err())
	}
	if err != nil {
		s.logger.Error().Err(err).Int("completed", asm.count).Int("pages", total).Msg("conversion failed")
		return nil, err
	}

	result := &domain.Result{
		Text:        asm.text(),
		Pages:       total,
		EmptyPages:  asm.empty,
		CachedPages: asm.cached,
		Order:       order,
		Duration:    time.Since(startTime),
	}

	s.logger.Info().
		Int("pages", result.Pages).
		Int("empty_pages", result.EmptyPages).
		Int("cached_pages", result.CachedPages).
		Dur("duration", result.Duration).
		Msg("conversion complete")

	return result, nil
}

// runTask converts a single page. It checks for cancellation before
// rasterizing and before recognizing.
func (s *Service) runTask(ctx context.Context, task *domain.Task, docHash string) (domain.PageResult, error) {
	startTime := time.Now()
	logger := s.logger.WithPage(task.Page)
	task.State = domain.TaskRunning

	fail := func(err error) (domain.PageResult, error) {
		task.State = domain.TaskFailed
		return domain.PageResult{}, err
	}
	done := func(r domain.PageResult) (domain.PageResult, error) {
		task.State = domain.TaskCompleted
		r.Page = task.Page
		r.Duration = time.Since(startTime)
		logger.Debug().Bool("empty", r.Empty).Bool("cached", r.Cached).Dur("duration", r.Duration).Msg("page done")
		return r, nil
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	key := ""
	if docHash != "" {
		key = cache.PageKey(docHash, s.recognizer.Name(), task.Language, task.Page)
		if text, ok := s.lookup(ctx, logger, key); ok {
			return done(domain.PageResult{Text: text, Cached: true})
		}
	}

	img, ok, err := s.rasterizer.Rasterize(ctx, task.Path, task.Page)
	if err != nil {
		return fail(err)
	}
	if !ok {
		logger.Debug().Msg("page produced no image, contributing empty text")
		return done(domain.PageResult{Empty: true})
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	text, err := s.recognizer.Recognize(ctx, img, task.Language)
	if err != nil {
		if ctx.Err() != nil {
			return fail(ctx.Err())
		}
		logger.Error().Err(err).Msg("text recognition failed")
		return fail(domain.OCREngineError(task.Page, fmt.Sprintf("%s recognition failed", s.recognizer.Name()), err))
	}

	if key != "" {
		if err := s.cache.Set(ctx, key, []byte(text), s.cacheTTL); err != nil {
			logger.Warn().Err(err).Msg("failed to store page in cache")
		}
	}

	return done(domain.PageResult{Text: text})
}

func (s *Service) lookup(ctx context.Context, logger *observability.Logger, key string) (string, bool) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Warn().Err(err).Msg("page cache lookup failed")
		}
		return "", false
	}
	return string(data), true
}

// documentHash returns the cache scope for the document, or "" when caching
// is off or the document cannot be hashed.
func (s *Service) documentHash(path string) string {
	if s.cache == nil {
		return ""
	}
	h, err := cache.DocumentHash(path)
	if err != nil {
		s.logger.Warn().Err(err).Msg("cannot hash document, page cache disabled for this run")
		return ""
	}
	return h
}
