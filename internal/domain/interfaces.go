package domain

import (
	"context"
	"image"
)

// PageCounter reports how many pages a document has.
type PageCounter interface {
	// PageCount opens the document once and returns its page count. It fails
	// with a DocumentReadError when the document cannot be opened or parsed.
	PageCount(ctx context.Context, path string) (int, error)
}

// PageRasterizer renders a single page of a document to an image.
type PageRasterizer interface {
	// Rasterize returns the rendered page. ok is false when the page produced
	// no image (out of range, corrupt page); that is not an error.
	Rasterize(ctx context.Context, path string, page int) (img image.Image, ok bool, err error)
}

// TextRecognizer runs OCR over a page image.
type TextRecognizer interface {
	// Name identifies the engine; it is part of page cache keys.
	Name() string

	// Recognize returns the text found in img using the given language
	// profile (for example "eng" or "eng+rus").
	Recognize(ctx context.Context, img image.Image, language string) (string, error)
}

// DocumentValidator checks an input path before any work is done.
type DocumentValidator interface {
	// ValidatePDFPath fails with an InvalidInputError when path is not a
	// readable PDF file.
	ValidatePDFPath(path string) error
}
