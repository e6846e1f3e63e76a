// Package output persists conversion results: the local result file and an
// optional copy in Google Cloud Storage.
package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spherical/pdf2text/internal/domain"
)

// WriteFile writes text to path, replacing any existing file. The text is
// written to a temporary file in the same directory first and renamed into
// place, so a failed write never leaves a truncated result behind.
func WriteFile(path, text string) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return domain.IOError(fmt.Sprintf("failed to create temporary file in %s", dir), err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		cleanup()
		return domain.IOError(fmt.Sprintf("failed to write %s", path), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return domain.IOError(fmt.Sprintf("failed to flush %s", path), err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return domain.IOError(fmt.Sprintf("failed to close %s", path), err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return domain.IOError(fmt.Sprintf("failed to set permissions on %s", path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return domain.IOError(fmt.Sprintf("failed to replace %s", path), err)
	}
	return nil
}
