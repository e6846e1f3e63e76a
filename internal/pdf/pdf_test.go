package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/pdf2text/internal/domain"
	"github.com/spherical/pdf2text/internal/testutil"
)

func TestValidatePDFPath(t *testing.T) {
	dir := t.TempDir()

	textFile := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(textFile, []byte("hello"), 0o644))

	upper := filepath.Join(dir, "SCAN.PDF")
	require.NoError(t, os.WriteFile(upper, []byte("%PDF-1.4"), 0o644))

	pdfFile := filepath.Join(dir, "scan.pdf")
	require.NoError(t, os.WriteFile(pdfFile, []byte("%PDF-1.4"), 0o644))

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "empty path", path: "", wantErr: true},
		{name: "non-existent file", path: filepath.Join(dir, "missing.pdf"), wantErr: true},
		{name: "directory instead of file", path: dir, wantErr: true},
		{name: "wrong extension", path: textFile, wantErr: true},
		{name: "upper-case extension", path: upper},
		{name: "pdf file", path: pdfFile},
	}

	v := NewValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePDFPath(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, domain.IsType(err, domain.ErrorTypeInvalidInput), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCounters(t *testing.T) {
	path := testutil.WritePDF(t, t.TempDir(), "A", "B", "C")

	counters := map[string]domain.PageCounter{
		"fitz":   NewFitzCounter(),
		"pdfcpu": NewPDFCPUCounter(),
	}
	for name, c := range counters {
		t.Run(name, func(t *testing.T) {
			n, err := c.PageCount(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, 3, n)
		})
	}
}

func TestCounters_UnreadableDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0o644))

	for name, c := range map[string]domain.PageCounter{
		"fitz":   NewFitzCounter(),
		"pdfcpu": NewPDFCPUCounter(),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := c.PageCount(context.Background(), path)
			require.Error(t, err)
			assert.True(t, domain.IsType(err, domain.ErrorTypeDocumentRead), "got %v", err)
		})
	}
}

func TestFitzRasterizer(t *testing.T) {
	path := testutil.WritePDF(t, t.TempDir(), "A", "B")
	r := NewFitzRasterizer(150, nil)
	ctx := context.Background()

	img, ok, err := r.Rasterize(ctx, path, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, img.Bounds().Empty())

	img, ok, err = r.Rasterize(ctx, path, 2)
	require.NoError(t, err, "out-of-range page is not an error")
	assert.False(t, ok)
	assert.Nil(t, img)

	_, ok, err = r.Rasterize(ctx, path, -1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFitzRasterizer_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err := NewFitzRasterizer(0, nil).Rasterize(ctx, "unused.pdf", 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
}

func TestFitzRasterizer_MissingDocument(t *testing.T) {
	_, _, err := NewFitzRasterizer(0, nil).Rasterize(context.Background(), filepath.Join(t.TempDir(), "gone.pdf"), 0)
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeDocumentRead))
}
