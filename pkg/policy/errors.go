package policy

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a top-level report error.
type ErrorKind string

const (
	// KindConfigMissing is reported when a policy, status, or corpus
	// location does not exist.
	KindConfigMissing ErrorKind = "config_missing"

	// KindDocumentParse is reported when a single required document (such as
	// the enforcement status document) cannot be parsed.
	KindDocumentParse ErrorKind = "document_parse"
)

// ReportError is a top-level failure carried on a report as data.
// Analyzers never return it as a Go error; callers branch on report.Error.
type ReportError struct {
	// Kind classifies the failure.
	Kind ErrorKind `json:"kind"`

	// Path is the file or directory involved.
	Path string `json:"path"`

	// Message describes the failure.
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ReportError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Path)
}

// IsConfigMissing reports whether the error is a missing-location error.
func (e *ReportError) IsConfigMissing() bool {
	return e != nil && e.Kind == KindConfigMissing
}

// ConfigMissing builds a KindConfigMissing error for the described location.
func ConfigMissing(what, path string) *ReportError {
	return &ReportError{
		Kind:    KindConfigMissing,
		Path:    path,
		Message: fmt.Sprintf("%s not found", what),
	}
}

// DocumentParse builds a KindDocumentParse error.
func DocumentParse(path string, cause error) *ReportError {
	return &ReportError{
		Kind:    KindDocumentParse,
		Path:    path,
		Message: fmt.Sprintf("failed to parse document: %v", cause),
	}
}

// AsReportError extracts a ReportError from an error chain.
func AsReportError(err error) (*ReportError, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// LoadError represents a failure to read a single policy document.
type LoadError struct {
	// FilePath is the path to the file that failed to load
	FilePath string

	// Message describes the error
	Message string

	// Cause is the underlying error that caused this load error
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load %q: %s: %v", e.FilePath, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load %q: %s", e.FilePath, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ParseError represents a YAML parse failure in a single document.
type ParseError struct {
	// FilePath is the path to the file that failed to parse
	FilePath string

	// Line is the line number where the error occurred (1-indexed, 0 if unknown)
	Line int

	// Message describes the parsing error
	Message string

	// Cause is the underlying parser error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %q at line %d: %s", e.FilePath, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %q: %s", e.FilePath, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}
