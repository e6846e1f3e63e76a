package pdf

import (
	"context"
	"fmt"
	"os"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/spherical/pdf2text/internal/domain"
)

// FitzCounter counts pages with MuPDF.
type FitzCounter struct{}

// NewFitzCounter creates a MuPDF-backed page counter.
func NewFitzCounter() *FitzCounter {
	return &FitzCounter{}
}

// PageCount opens the document and returns its page count.
func (c *FitzCounter) PageCount(ctx context.Context, path string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	doc, err := fitz.New(path)
	if err != nil {
		return 0, domain.DocumentReadError(fmt.Sprintf("failed to open PDF %s", path), err)
	}
	defer doc.Close()

	return doc.NumPage(), nil
}

// PDFCPUCounter counts pages by parsing the document structure with pdfcpu.
type PDFCPUCounter struct {
	conf *model.Configuration
}

// NewPDFCPUCounter creates a pdfcpu-backed page counter with relaxed
// validation, which accepts the malformed files scanners often produce.
func NewPDFCPUCounter() *PDFCPUCounter {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFCPUCounter{conf: conf}
}

// PageCount reads the document and returns its page count.
func (c *PDFCPUCounter) PageCount(ctx context.Context, path string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, domain.DocumentReadError(fmt.Sprintf("failed to open PDF %s", path), err)
	}
	defer f.Close()

	n, err := api.PageCount(f, c.conf)
	if err != nil {
		return 0, domain.DocumentReadError(fmt.Sprintf("failed to get page count of %s", path), err)
	}
	return n, nil
}
