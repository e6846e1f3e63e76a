package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultLanguage is the OCR language profile used when none is given.
const DefaultLanguage = "eng"

// DocumentExtension is the only accepted input extension (compared
// case-insensitively).
const DocumentExtension = ".pdf"

// Order selects how page results are assembled into the output.
type Order string

const (
	// OrderCompletion appends pages in the order their tasks finish.
	OrderCompletion Order = "completion"
	// OrderPage appends pages by ascending page index.
	OrderPage Order = "page"
)

// ParseOrder converts a flag or config value into an Order. Empty means
// OrderCompletion.
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case "", OrderCompletion:
		return OrderCompletion, nil
	case OrderPage:
		return OrderPage, nil
	default:
		return "", fmt.Errorf("unknown order %q (want %q or %q)", s, OrderCompletion, OrderPage)
	}
}

// TaskState models the lifecycle of a page conversion task.
type TaskState string

const (
	TaskPending   TaskState = "pending"
	TaskRunning   TaskState = "running"
	TaskCompleted TaskState = "completed"
	TaskFailed    TaskState = "failed"
)

// Task binds one page of a document to the settings it is converted with.
type Task struct {
	Path     string
	Language string
	Page     int
	State    TaskState
}

// PageResult is what a completed task hands to the collector.
type PageResult struct {
	Page     int
	Text     string
	Empty    bool // no image was produced for the page
	Cached   bool
	Duration time.Duration
}

// Progress is a snapshot of how many pages have been collected.
type Progress struct {
	Completed int
	Total     int
}

// ProgressFunc is called by the collector after every appended page.
type ProgressFunc func(Progress)

// Result is the outcome of a successful document conversion.
type Result struct {
	Text        string
	Pages       int
	EmptyPages  int
	CachedPages int
	Order       Order
	Duration    time.Duration
}

// ClampWorkers returns n, or 1 when n is not positive.
func ClampWorkers(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

// NormalizeLanguage trims the tag and falls back to DefaultLanguage.
func NormalizeLanguage(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return DefaultLanguage
	}
	return lang
}

// SplitLanguages splits a "+"-joined language tag ("eng+rus") into its parts.
func SplitLanguages(lang string) []string {
	parts := strings.Split(NormalizeLanguage(lang), "+")
	langs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			langs = append(langs, p)
		}
	}
	if len(langs) == 0 {
		return []string{DefaultLanguage}
	}
	return langs
}
