package domain

import (
	"errors"
	"fmt"
)

// Error types for domain-specific errors
type ErrorType string

const (
	ErrorTypeInvalidInput ErrorType = "invalid_input"
	ErrorTypeDocumentRead ErrorType = "document_read"
	ErrorTypeOCREngine    ErrorType = "ocr_engine"
	ErrorTypeConfig       ErrorType = "config"
	ErrorTypeIO           ErrorType = "io"
	ErrorTypeCanceled     ErrorType = "canceled"
)

// NoPage marks an error that is not tied to a single page.
const NoPage = -1

// DomainError represents a domain-specific error with context
type DomainError struct {
	Type    ErrorType
	Message string
	Page    int
	Err     error
}

func (e *DomainError) Error() string {
	msg := e.Message
	if e.Page >= 0 {
		msg = fmt.Sprintf("page %d: %s", e.Page, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, msg)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewError creates a new domain error
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Page:    NoPage,
		Err:     err,
	}
}

// Common error constructors
func InvalidInputError(message string, err error) *DomainError {
	return NewError(ErrorTypeInvalidInput, message, err)
}

func DocumentReadError(message string, err error) *DomainError {
	return NewError(ErrorTypeDocumentRead, message, err)
}

// OCREngineError reports a recognition failure on a specific page.
func OCREngineError(page int, message string, err error) *DomainError {
	e := NewError(ErrorTypeOCREngine, message, err)
	e.Page = page
	return e
}

func ConfigError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfig, message, err)
}

func IOError(message string, err error) *DomainError {
	return NewError(ErrorTypeIO, message, err)
}

func CanceledError(message string, err error) *DomainError {
	return NewError(ErrorTypeCanceled, message, err)
}

// TypeOf returns the ErrorType of the first DomainError in err's chain, or ""
// when there is none.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type
	}
	return ""
}

// IsType reports whether err carries a DomainError of the given type.
func IsType(err error, errType ErrorType) bool {
	return err != nil && TypeOf(err) == errType
}
