package errors

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
)

// LintError represents a content-integrity finding in an index page
type LintError struct {
	Rule      string
	File      string
	Line      int
	Message   string
	Severity  ErrorSeverity
	Timestamp time.Time
}

// ErrorSeverity represents the severity of an error
type ErrorSeverity int

const (
	ErrorSeverityInfo ErrorSeverity = iota
	ErrorSeverityWarning
	ErrorSeverityError
)

// String returns the string representation of the severity
func (s ErrorSeverity) String() string {
	switch s {
	case ErrorSeverityInfo:
		return "info"
	case ErrorSeverityWarning:
		return "warning"
	case ErrorSeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Error implements the error interface
func (le *LintError) Error() string {
	return fmt.Sprintf("%s:%d: %s: %s (%s)", le.File, le.Line, le.Severity, le.Message, le.Rule)
}

// Collector collects lint findings and general errors from concurrent checks
type Collector struct {
	lintErrors []LintError
	errors     []error
	mutex      sync.RWMutex
}

// NewCollector creates a new error collector
func NewCollector() *Collector {
	return &Collector{
		lintErrors: make([]LintError, 0),
		errors:     make([]error, 0),
	}
}

// Add adds a lint finding to the collector
func (c *Collector) Add(err LintError) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	err.Timestamp = time.Now()
	c.lintErrors = append(c.lintErrors, err)
}

// AddError adds a general error to the collector
func (c *Collector) AddError(err error) {
	if err == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errors = append(c.errors, err)
}

// Findings returns all collected lint findings
func (c *Collector) Findings() []LintError {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	// Return a copy to avoid race conditions
	result := make([]LintError, len(c.lintErrors))
	copy(result, c.lintErrors)
	return result
}

// FindingsByFile returns findings for a specific file
func (c *Collector) FindingsByFile(file string) []LintError {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	var fileErrors []LintError
	for _, err := range c.lintErrors {
		if err.File == file {
			fileErrors = append(fileErrors, err)
		}
	}
	return fileErrors
}

// HasErrors returns true if any finding has error severity or a general
// error was collected
func (c *Collector) HasErrors() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if len(c.errors) > 0 {
		return true
	}
	for _, err := range c.lintErrors {
		if err.Severity == ErrorSeverityError {
			return true
		}
	}
	return false
}

// HasWarnings returns true if any finding has warning severity
func (c *Collector) HasWarnings() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	for _, err := range c.lintErrors {
		if err.Severity == ErrorSeverityWarning {
			return true
		}
	}
	return false
}

// Clear clears all findings and errors
func (c *Collector) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.lintErrors = c.lintErrors[:0]
	c.errors = c.errors[:0]
}

// Err folds every finding and error into a single multierror, nil when the
// collector holds nothing of error severity.
func (c *Collector) Err() error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var result *multierror.Error
	for i := range c.lintErrors {
		if c.lintErrors[i].Severity == ErrorSeverityError {
			le := c.lintErrors[i]
			result = multierror.Append(result, &le)
		}
	}
	for _, err := range c.errors {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
