// Package errors provides error aggregation for the build orchestrator.
//
// A build never aborts because one page failed: per-page failures are recorded
// as PageError values in an ErrorCollector and surfaced to the caller as an
// aggregate count after the whole source tree has been processed.
package errors

import (
	"fmt"
	"sync"
	"time"
)

// PageError represents a failure while building a single page
type PageError struct {
	Campaign  string
	File      string
	Message   string
	Severity  ErrorSeverity
	Timestamp time.Time
}

// ErrorSeverity represents the severity of an error
type ErrorSeverity int

const (
	SeverityWarning ErrorSeverity = iota
	SeverityError
)

// String returns the string representation of the severity
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Error implements the error interface
func (pe *PageError) Error() string {
	return fmt.Sprintf("%s: %s: %s", pe.File, pe.Severity, pe.Message)
}

// ErrorCollector collects page errors and warnings during a build
type ErrorCollector struct {
	pageErrors []PageError
	mutex      sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		pageErrors: make([]PageError, 0),
	}
}

// Add adds a page error to the collector
func (ec *ErrorCollector) Add(err PageError) {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	err.Timestamp = time.Now()
	ec.pageErrors = append(ec.pageErrors, err)
}

// Errors returns all collected entries with error severity
func (ec *ErrorCollector) Errors() []PageError {
	return ec.bySeverity(SeverityError)
}

// Warnings returns all collected entries with warning severity
func (ec *ErrorCollector) Warnings() []PageError {
	return ec.bySeverity(SeverityWarning)
}

func (ec *ErrorCollector) bySeverity(sev ErrorSeverity) []PageError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	var out []PageError
	for _, err := range ec.pageErrors {
		if err.Severity == sev {
			out = append(out, err)
		}
	}
	return out
}

// ErrorCount returns the number of error-severity entries
func (ec *ErrorCollector) ErrorCount() int {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	count := 0
	for _, err := range ec.pageErrors {
		if err.Severity == SeverityError {
			count++
		}
	}
	return count
}

// HasErrors returns true if there are any error-severity entries
func (ec *ErrorCollector) HasErrors() bool {
	return ec.ErrorCount() > 0
}

// Clear clears all collected entries
func (ec *ErrorCollector) Clear() {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.pageErrors = ec.pageErrors[:0]
}

// ByFile returns all entries recorded for a specific file
func (ec *ErrorCollector) ByFile(file string) []PageError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	var out []PageError
	for _, err := range ec.pageErrors {
		if err.File == file {
			out = append(out, err)
		}
	}
	return out
}
