package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/pdf2text/internal/domain"
	"github.com/spherical/pdf2text/internal/testutil"
)

func execute(t *testing.T, ctx context.Context, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(ctx, "1.2.3", append(args, "--no-progress", "--no-color"), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: ExitOK},
		{name: "invalid input", err: domain.InvalidInputError("x", nil), want: ExitInvalidInput},
		{name: "document read", err: domain.DocumentReadError("x", nil), want: ExitDocumentRead},
		{name: "ocr engine", err: domain.OCREngineError(3, "x", nil), want: ExitOCREngine},
		{name: "config", err: domain.ConfigError("x", nil), want: ExitConfig},
		{name: "io", err: domain.IOError("x", nil), want: ExitOutput},
		{name: "canceled", err: domain.CanceledError("x", context.Canceled), want: ExitCanceled},
		{name: "wrapped", err: fmt.Errorf("run: %w", domain.ConfigError("x", nil)), want: ExitConfig},
		{name: "bare context canceled", err: context.Canceled, want: ExitCanceled},
		{name: "other", err: errors.New("x"), want: ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestExecute_InvalidInputWritesNothing(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "result.txt")

	textFile := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(textFile, []byte("hello"), 0o644))

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "no input", args: []string{"-o", out}, wantErr: "no input file given"},
		{name: "missing file", args: []string{"-i", filepath.Join(dir, "missing.pdf"), "-o", out}, wantErr: "no PDF file found"},
		{name: "not a pdf", args: []string{"-i", textFile, "-o", out}, wantErr: "is not a PDF file"},
		{name: "bad flag value", args: []string{"-w", "many", "-o", out}, wantErr: "invalid argument"},
		{name: "positional argument", args: []string{"scan.pdf", "-o", out}, wantErr: "pass the PDF with -i"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := execute(t, context.Background(), tt.args...)
			assert.Equal(t, ExitInvalidInput, code)
			assert.Contains(t, stderr, tt.wantErr)

			_, err := os.Stat(out)
			assert.True(t, os.IsNotExist(err), "result file must not be created")
		})
	}
}

func TestExecute_ConfigError(t *testing.T) {
	out := filepath.Join(t.TempDir(), "result.txt")

	code, _, stderr := execute(t, context.Background(), "-i", "scan.pdf", "--order", "random", "-o", out)
	assert.Equal(t, ExitConfig, code)
	assert.Contains(t, stderr, "invalid order")

	code, _, _ = execute(t, context.Background(), "-i", "scan.pdf", "-c", filepath.Join(t.TempDir(), "none.yaml"))
	assert.Equal(t, ExitConfig, code)
}

func TestExecute_Version(t *testing.T) {
	code, stdout, _ := execute(t, context.Background(), "--version")
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "1.2.3")
}

func TestExecute_Canceled(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WritePDF(t, dir, "A")
	out := filepath.Join(dir, "result.txt")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code, _, _ := execute(t, ctx, "-i", path, "-o", out)
	assert.Equal(t, ExitCanceled, code)

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestExecute_Converts(t *testing.T) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}

	dir := t.TempDir()
	path := testutil.WritePDF(t, dir, "Hello PDF", "Second page")
	out := filepath.Join(dir, "result.txt")

	code, stdout, stderr := execute(t, context.Background(), "-i", path, "-w", "2", "--order", "page", "-o", out)
	require.Equal(t, ExitOK, code, stderr)
	assert.Contains(t, stdout, "Wrote 2 pages")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "\n"))
	assert.Contains(t, strings.ToLower(string(data)), "hello")
}
