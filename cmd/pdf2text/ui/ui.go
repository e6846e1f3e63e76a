// Package ui provides terminal output for the pdf2text CLI.
package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/spherical/pdf2text/internal/domain"
)

// UI writes status lines and progress. Everything except the final summary
// goes to the error stream so stdout stays clean for pipes.
type UI struct {
	out     io.Writer
	errOut  io.Writer
	noColor bool
}

// New creates a UI writing to out and errOut.
func New(out, errOut io.Writer, noColor bool) *UI {
	return &UI{out: out, errOut: errOut, noColor: noColor}
}

// Default creates a UI on the process streams.
func Default(noColor bool) *UI {
	return New(os.Stdout, os.Stderr, noColor)
}

// Success prints a success message.
func (ui *UI) Success(format string, args ...interface{}) {
	ui.print(ui.out, color.FgGreen, "✓", format, args...)
}

// Error prints an error message.
func (ui *UI) Error(format string, args ...interface{}) {
	ui.print(ui.errOut, color.FgRed, "✗", format, args...)
}

// Warning prints a warning message.
func (ui *UI) Warning(format string, args ...interface{}) {
	ui.print(ui.errOut, color.FgYellow, "⚠", format, args...)
}

// Info prints an informational message.
func (ui *UI) Info(format string, args ...interface{}) {
	ui.print(ui.errOut, color.FgCyan, "ℹ", format, args...)
}

func (ui *UI) print(w io.Writer, attr color.Attribute, symbol, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if ui.noColor {
		fmt.Fprintf(w, "%s %s\n", symbol, msg)
		return
	}
	color.New(attr).Fprintf(w, "%s %s\n", symbol, msg)
}

// PageProgress shows a spinner until the page count is known, then a
// progress bar over the pages. A disabled PageProgress does nothing.
type PageProgress struct {
	enabled bool
	w       io.Writer
	spinner *spinner.Spinner
	bar     *progressbar.ProgressBar
}

// NewPageProgress creates page progress output on w.
func NewPageProgress(w io.Writer, enabled bool) *PageProgress {
	return &PageProgress{enabled: enabled, w: w}
}

// Start shows the spinner while the document is opened.
func (p *PageProgress) Start(message string) {
	if !p.enabled {
		return
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = p.w
	s.Start()
	p.spinner = s
}

// Update is a domain.ProgressFunc. The first call carries the page count.
func (p *PageProgress) Update(pr domain.Progress) {
	if !p.enabled {
		return
	}
	if p.bar == nil {
		p.stopSpinner()
		p.bar = newProgressBar(p.w, int64(pr.Total))
	}
	_ = p.bar.Set(pr.Completed)
}

// Finish completes the progress bar.
func (p *PageProgress) Finish() {
	p.stopSpinner()
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// Abort stops all progress output without completing the bar.
func (p *PageProgress) Abort() {
	p.stopSpinner()
	if p.bar != nil {
		_ = p.bar.Exit()
		fmt.Fprintln(p.w)
	}
}

func (p *PageProgress) stopSpinner() {
	if p.spinner != nil {
		p.spinner.Stop()
		p.spinner = nil
	}
}

func newProgressBar(w io.Writer, total int64) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		total,
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Recognizing pages"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("pages"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}
