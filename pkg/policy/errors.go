package policy

import "fmt"

// ParseError represents a malformed line in the allow file.
// A single ParseError invalidates the whole candidate rule set: the loader
// rejects the file atomically and the previously active rules stay in force.
type ParseError struct {
	// FilePath is the path to the allow file that failed to parse
	FilePath string

	// Line is the line number of the offending pattern (1-indexed)
	Line int

	// Pattern is the raw pattern text that failed to compile
	Pattern string

	// Message describes the parse error
	Message string

	// Cause is the underlying error, if any
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("parse error in %q at line %d: pattern %q: %s", e.FilePath, e.Line, e.Pattern, e.Message)
	}
	return fmt.Sprintf("invalid pattern %q: %s", e.Pattern, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// LoadError represents a file system failure while reading the allow file.
// Like a ParseError it leaves the active rule set untouched; the same file is
// retried on the next reload check.
type LoadError struct {
	// FilePath is the path to the allow file
	FilePath string

	// Message describes the failure
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load allow file %q: %s: %v", e.FilePath, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load allow file %q: %s", e.FilePath, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}
