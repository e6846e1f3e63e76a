// Package testutil builds PDF and image fixtures for tests.
package testutil

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// TextImage draws text in black on a white canvas large enough for OCR.
func TextImage(text string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 400, 120))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(20, 60),
	}
	d.DrawString(text)
	return img
}

// WritePDF creates a PDF in dir with one page per text, each page an image of
// that text, and returns its path.
func WritePDF(t testing.TB, dir string, pages ...string) string {
	t.Helper()

	imgFiles := make([]string, 0, len(pages))
	for i, text := range pages {
		p := filepath.Join(dir, fmt.Sprintf("page_%03d.png", i))
		f, err := os.Create(p)
		if err != nil {
			t.Fatalf("create fixture image: %v", err)
		}
		if err := png.Encode(f, TextImage(text)); err != nil {
			f.Close()
			t.Fatalf("encode fixture image: %v", err)
		}
		f.Close()
		imgFiles = append(imgFiles, p)
	}

	out := filepath.Join(dir, "fixture.pdf")
	if err := api.ImportImagesFile(imgFiles, out, nil, model.NewDefaultConfiguration()); err != nil {
		t.Fatalf("build fixture PDF: %v", err)
	}
	return out
}
