package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spherical/pdf2text/internal/domain"
)

func TestUI_Streams(t *testing.T) {
	var out, errOut bytes.Buffer
	u := New(&out, &errOut, true)

	u.Success("wrote %d pages", 3)
	u.Error("boom")
	u.Warning("careful")
	u.Info("fyi")

	assert.Equal(t, "✓ wrote 3 pages\n", out.String())
	assert.Equal(t, "✗ boom\n⚠ careful\nℹ fyi\n", errOut.String())
}

func TestPageProgress(t *testing.T) {
	var w bytes.Buffer
	p := NewPageProgress(&w, true)

	p.Update(domain.Progress{Completed: 0, Total: 2})
	p.Update(domain.Progress{Completed: 1, Total: 2})
	p.Update(domain.Progress{Completed: 2, Total: 2})
	p.Finish()

	assert.Contains(t, w.String(), "Recognizing pages")
	assert.Contains(t, w.String(), "2/2")
}

func TestPageProgress_Disabled(t *testing.T) {
	var w bytes.Buffer
	p := NewPageProgress(&w, false)

	p.Start("Opening document")
	p.Update(domain.Progress{Completed: 1, Total: 1})
	p.Finish()
	p.Abort()

	assert.Empty(t, w.String())
}
