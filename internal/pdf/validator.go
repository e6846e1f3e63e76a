package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spherical/pdf2text/internal/domain"
	"github.com/spherical/pdf2text/internal/observability"
)

// largeFileSize is the size above which a warning is logged.
const largeFileSize = 100 * 1024 * 1024

// Validator provides input validation for PDF files
type Validator struct {
	logger *observability.Logger
}

// NewValidator creates a new validator instance
func NewValidator(logger *observability.Logger) *Validator {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Validator{logger: logger}
}

// ValidatePDFPath validates that a file path is valid and points to a PDF.
// Every failure is an InvalidInputError.
func (v *Validator) ValidatePDFPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return domain.InvalidInputError("no input file given; see --help for details", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.InvalidInputError(fmt.Sprintf("no PDF file found at %s", path), err)
		}
		return domain.InvalidInputError(fmt.Sprintf("cannot access file: %s", path), err)
	}

	if info.IsDir() {
		return domain.InvalidInputError(fmt.Sprintf("path is a directory, not a file: %s", path), nil)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != domain.DocumentExtension {
		return domain.InvalidInputError(
			fmt.Sprintf("%s is not a PDF file (extension %q); give the path to a *.pdf file", path, ext), nil)
	}

	if info.Size() > largeFileSize {
		v.logger.Warn().
			Int64("size_mb", info.Size()/(1024*1024)).
			Msg("PDF file is very large, processing may take a while")
	}

	file, err := os.Open(path)
	if err != nil {
		return domain.InvalidInputError(fmt.Sprintf("cannot open file: %s", path), err)
	}
	file.Close()

	return nil
}
