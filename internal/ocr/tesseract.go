// Package ocr recognizes text in rendered page images with Tesseract.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/spherical/pdf2text/internal/domain"
)

// Name is the engine identifier used in cache keys and logs.
const Name = "tesseract"

// Option configures a TesseractRecognizer.
type Option func(*TesseractRecognizer)

// WithDPI tells Tesseract the resolution the page was rendered at.
func WithDPI(dpi int) Option {
	return func(r *TesseractRecognizer) { r.dpi = dpi }
}

// WithPageSegMode sets the Tesseract page segmentation mode. Zero keeps the
// engine default.
func WithPageSegMode(mode int) Option {
	return func(r *TesseractRecognizer) { r.psm = mode }
}

// TesseractRecognizer implements domain.TextRecognizer with gosseract. A new
// client is created for every call; gosseract clients are not safe for
// concurrent use.
type TesseractRecognizer struct {
	clientFactory func() *gosseract.Client
	dpi           int
	psm           int
}

// NewTesseractRecognizer constructs a Tesseract-backed recognizer.
func NewTesseractRecognizer(opts ...Option) *TesseractRecognizer {
	r := &TesseractRecognizer{clientFactory: gosseract.NewClient}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *TesseractRecognizer) Name() string { return Name }

// Recognize runs OCR on img with the given "+"-joined language profile.
func (r *TesseractRecognizer) Recognize(ctx context.Context, img image.Image, language string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := encodePNG(img)
	if err != nil {
		return "", err
	}

	c := r.clientFactory()
	defer c.Close()

	if err := c.SetLanguage(domain.SplitLanguages(language)...); err != nil {
		return "", fmt.Errorf("set languages %q: %w", language, err)
	}
	if r.dpi > 0 {
		if err := c.SetVariable("user_defined_dpi", strconv.Itoa(r.dpi)); err != nil {
			return "", fmt.Errorf("set dpi: %w", err)
		}
	}
	if r.psm > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(r.psm)); err != nil {
			return "", fmt.Errorf("set page segmentation mode: %w", err)
		}
	}
	if err := c.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode page image: %w", err)
	}
	return buf.Bytes(), nil
}
