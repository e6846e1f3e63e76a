package pdf

import (
	"context"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"

	"github.com/spherical/pdf2text/internal/domain"
	"github.com/spherical/pdf2text/internal/observability"
)

// DefaultDPI is the render resolution used when none is configured.
const DefaultDPI = 300

// FitzRasterizer renders single pages with MuPDF. Every call opens its own
// document, so concurrent calls never share a fitz.Document.
type FitzRasterizer struct {
	dpi    float64
	logger *observability.Logger
}

// NewFitzRasterizer creates a rasterizer rendering at dpi (DefaultDPI when
// dpi is not positive).
func NewFitzRasterizer(dpi int, logger *observability.Logger) *FitzRasterizer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	if logger == nil {
		logger = observability.Nop()
	}
	return &FitzRasterizer{
		dpi:    float64(dpi),
		logger: logger.WithComponent("rasterizer"),
	}
}

// Rasterize renders the zero-based page. Pages that are out of range or fail
// to render yield ok=false.
func (r *FitzRasterizer) Rasterize(ctx context.Context, path string, page int) (image.Image, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, false, domain.DocumentReadError(fmt.Sprintf("failed to open PDF %s", path), err)
	}
	defer doc.Close()

	if page < 0 || page >= doc.NumPage() {
		r.logger.Warn().Int("page", page).Int("pages", doc.NumPage()).Msg("page out of range, no image")
		return nil, false, nil
	}

	img, err := doc.ImageDPI(page, r.dpi)
	if err != nil {
		r.logger.Warn().Int("page", page).Err(err).Msg("failed to render page, treating as empty")
		return nil, false, nil
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, false, nil
	}

	r.logger.Debug().Int("page", page).Int("width", bounds.Dx()).Int("height", bounds.Dy()).Msg("page rendered")
	return img, true, nil
}
