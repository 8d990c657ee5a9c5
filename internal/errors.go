package internal

import (
	"fmt"
	"strings"
)

// ErrorCategory names the pipeline stage a failure belongs to.
type ErrorCategory string

const (
	ErrorCategoryIO          ErrorCategory = "io_error"        // filesystem, permissions, disk space
	ErrorCategorySidecar     ErrorCategory = "sidecar_parse"   // Takeout JSON sidecar unreadable
	ErrorCategoryMetadata    ErrorCategory = "metadata_embed"  // EXIF/XMP write failed
	ErrorCategoryMotionPhoto ErrorCategory = "motion_photo"    // embedded video carve failed
	ErrorCategoryDuplicate   ErrorCategory = "duplicate_check" // identity key computation failed
	ErrorCategoryUnknown     ErrorCategory = "unknown_error"
)

type ErrorSeverity string

const (
	ErrorSeverityCritical ErrorSeverity = "critical" // system-level, affects the whole run
	ErrorSeverityError    ErrorSeverity = "error"    // the file was not placed
	ErrorSeverityWarning  ErrorSeverity = "warning"  // degraded, but the file was placed
)

// ProcessError is one categorized failure from a run.
type ProcessError struct {
	FilePath    string
	Category    ErrorCategory
	Severity    ErrorSeverity
	OriginalErr error
	Suggestion  string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("[%s/%s] %s: %v", e.Severity, e.Category, e.FilePath, e.OriginalErr)
}

// categoryRule maps an error-message substring to a classification. Rules
// are checked in order and the first hit wins, so the critical system
// conditions come first.
type categoryRule struct {
	substr     string
	category   ErrorCategory
	severity   ErrorSeverity
	suggestion string
}

var categoryRules = []categoryRule{
	{"no space left", ErrorCategoryIO, ErrorSeverityCritical,
		"Free up disk space on the output drive and re-run"},
	{"permission denied", ErrorCategoryIO, ErrorSeverityCritical,
		"Check permissions on the takeout and output directories"},
	{"read-only file system", ErrorCategoryIO, ErrorSeverityCritical,
		"Output filesystem is read-only, check mount options"},
	{"too many open files", ErrorCategoryIO, ErrorSeverityCritical,
		"File descriptor limit reached, increase ulimit"},

	// The metadata rules come before "sidecar": an XMP sidecar write failure
	// ("failed to write xmp sidecar ...") is an embed failure, not a parse one.
	{"motion photo", ErrorCategoryMotionPhoto, ErrorSeverityWarning,
		"Embedded video was skipped, the photo itself is unaffected"},
	{"trailer", ErrorCategoryMotionPhoto, ErrorSeverityWarning,
		"Embedded video was skipped, the photo itself is unaffected"},
	{"exif", ErrorCategoryMetadata, ErrorSeverityWarning,
		"File was copied without embedded metadata, try --exiftool"},
	{"xmp", ErrorCategoryMetadata, ErrorSeverityWarning,
		"File was copied without embedded metadata, try --exiftool"},
	{"metadata", ErrorCategoryMetadata, ErrorSeverityWarning,
		"File was copied without embedded metadata, try --exiftool"},
	{"sidecar", ErrorCategorySidecar, ErrorSeverityWarning,
		"File is processed without metadata, inspect the JSON sidecar"},
	{"duplicate", ErrorCategoryDuplicate, ErrorSeverityWarning,
		"Duplicate check failed for this file, it was processed normally"},

	{"input/output error", ErrorCategoryIO, ErrorSeverityError,
		"I/O error, check disk health"},
	{"no such file", ErrorCategoryIO, ErrorSeverityError,
		"Source file disappeared during the run, check if a drive disconnected"},
}

// CategorizeError classifies an error by matching its message against the
// rule table. Unmatched errors land in the unknown category.
func CategorizeError(filePath string, err error) *ProcessError {
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())
	for _, rule := range categoryRules {
		if strings.Contains(msg, rule.substr) {
			return &ProcessError{
				FilePath:    filePath,
				Category:    rule.category,
				Severity:    rule.severity,
				OriginalErr: err,
				Suggestion:  rule.suggestion,
			}
		}
	}

	return &ProcessError{
		FilePath:    filePath,
		Category:    ErrorCategoryUnknown,
		Severity:    ErrorSeverityError,
		OriginalErr: err,
		Suggestion:  "Unexpected error, check the run log for details",
	}
}

// ErrorStats aggregates the categorized failures of one run. There is no
// abort threshold: a run always continues past failures, the stats exist for
// the end-of-run report.
type ErrorStats struct {
	Total      int
	Critical   int
	Errors     int
	Warnings   int
	ByCategory map[ErrorCategory]int
	LastErrors []*ProcessError
}

const keepLastErrors = 5

func NewErrorStats() *ErrorStats {
	return &ErrorStats{
		ByCategory: make(map[ErrorCategory]int),
	}
}

func (s *ErrorStats) Add(err *ProcessError) {
	s.Total++
	s.ByCategory[err.Category]++

	switch err.Severity {
	case ErrorSeverityCritical:
		s.Critical++
	case ErrorSeverityError:
		s.Errors++
	case ErrorSeverityWarning:
		s.Warnings++
	}

	if len(s.LastErrors) >= keepLastErrors {
		s.LastErrors = s.LastErrors[1:]
	}
	s.LastErrors = append(s.LastErrors, err)
}

// GenerateReport renders the stats for the end-of-run summary.
func (s *ErrorStats) GenerateReport() string {
	var b strings.Builder

	fmt.Fprintf(&b, "\nProcessing encountered %d errors:\n\n", s.Total)
	if s.Critical > 0 {
		fmt.Fprintf(&b, "  Critical: %d (system-level issues)\n", s.Critical)
	}
	if s.Errors > 0 {
		fmt.Fprintf(&b, "  Errors:   %d (files not placed)\n", s.Errors)
	}
	if s.Warnings > 0 {
		fmt.Fprintf(&b, "  Warnings: %d (placed with degraded metadata)\n", s.Warnings)
	}

	b.WriteString("\nBy category:\n")
	for cat, count := range s.ByCategory {
		fmt.Fprintf(&b, "  - %s: %d\n", cat, count)
	}

	b.WriteString("\nRecent errors:\n")
	for i, err := range s.LastErrors {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, err.FilePath)
		fmt.Fprintf(&b, "   Category: %s | Severity: %s\n", err.Category, err.Severity)
		fmt.Fprintf(&b, "   Error: %v\n", err.OriginalErr)
		if err.Suggestion != "" {
			fmt.Fprintf(&b, "   Suggestion: %s\n", err.Suggestion)
		}
	}

	return b.String()
}
