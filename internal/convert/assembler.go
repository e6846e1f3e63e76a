package convert

import (
	"strings"

	"github.com/spherical/pdf2text/internal/domain"
)

// assembler builds the output buffer. It is owned by the single collector
// goroutine and is never accessed concurrently.
type assembler struct {
	order  domain.Order
	buf    strings.Builder
	pages  []string
	filled []bool

	count  int
	empty  int
	cached int
}

func newAssembler(order domain.Order, total int) *assembler {
	a := &assembler{order: order}
	if order == domain.OrderPage {
		a.pages = make([]string, total)
		a.filled = make([]bool, total)
	}
	return a
}

func (a *assembler) add(r domain.PageResult) {
	a.count++
	if r.Empty {
		a.empty++
	}
	if r.Cached {
		a.cached++
	}

	if a.order == domain.OrderPage {
		a.pages[r.Page] = r.Text
		a.filled[r.Page] = true
		return
	}
	a.buf.WriteString(r.Text)
	a.buf.WriteString("\n")
}

func (a *assembler) text() string {
	if a.order != domain.OrderPage {
		return a.buf.String()
	}
	var b strings.Builder
	for i, text := range a.pages {
		if !a.filled[i] {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String()
}
