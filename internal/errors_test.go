package internal

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCategorizeError(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		category ErrorCategory
		severity ErrorSeverity
	}{
		{"disk full", errors.New("write /out/x.jpg: no space left on device"), ErrorCategoryIO, ErrorSeverityCritical},
		{"permission denied", errors.New("open /out: permission denied"), ErrorCategoryIO, ErrorSeverityCritical},
		{"read-only fs", errors.New("mkdir /out: read-only file system"), ErrorCategoryIO, ErrorSeverityCritical},
		{"fd limit", errors.New("open x.jpg: too many open files"), ErrorCategoryIO, ErrorSeverityCritical},
		{"sidecar parse", errors.New("failed to parse sidecar photo.jpg.json: unexpected EOF"), ErrorCategorySidecar, ErrorSeverityWarning},
		{"motion photo", errors.New("invalid motion photo trailer"), ErrorCategoryMotionPhoto, ErrorSeverityWarning},
		{"exif write", errors.New("failed to set exif segment: short write"), ErrorCategoryMetadata, ErrorSeverityWarning},
		{"xmp write", errors.New("failed to write xmp sidecar clip.mp4.xmp"), ErrorCategoryMetadata, ErrorSeverityWarning},
		{"duplicate check", errors.New("duplicate check failed"), ErrorCategoryDuplicate, ErrorSeverityWarning},
		{"io error", errors.New("read x.jpg: input/output error"), ErrorCategoryIO, ErrorSeverityError},
		{"vanished file", errors.New("open x.jpg: no such file or directory"), ErrorCategoryIO, ErrorSeverityError},
		{"unknown", errors.New("something odd happened"), ErrorCategoryUnknown, ErrorSeverityError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			procErr := CategorizeError("/takeout/x.jpg", tc.err)
			if procErr.Category != tc.category {
				t.Errorf("Category = %s, want %s", procErr.Category, tc.category)
			}
			if procErr.Severity != tc.severity {
				t.Errorf("Severity = %s, want %s", procErr.Severity, tc.severity)
			}
			if procErr.Suggestion == "" {
				t.Error("Every categorized error should carry a suggestion")
			}
		})
	}
}

func TestCategorizeError_Nil(t *testing.T) {
	if CategorizeError("x.jpg", nil) != nil {
		t.Error("Nil error should categorize to nil")
	}
}

func TestErrorStats(t *testing.T) {
	stats := NewErrorStats()

	stats.Add(CategorizeError("a.jpg", errors.New("no space left on device")))
	stats.Add(CategorizeError("b.jpg", errors.New("failed to parse sidecar b.jpg.json")))
	stats.Add(CategorizeError("c.jpg", errors.New("input/output error")))

	if stats.Total != 3 {
		t.Errorf("Total = %d, want 3", stats.Total)
	}
	if stats.Critical != 1 || stats.Errors != 1 || stats.Warnings != 1 {
		t.Errorf("Severity counts = %d/%d/%d, want 1/1/1", stats.Critical, stats.Errors, stats.Warnings)
	}
	if stats.ByCategory[ErrorCategoryIO] != 2 {
		t.Errorf("IO category count = %d, want 2", stats.ByCategory[ErrorCategoryIO])
	}
}

func TestErrorStats_KeepsLastFive(t *testing.T) {
	stats := NewErrorStats()
	for i := 0; i < 8; i++ {
		stats.Add(CategorizeError(fmt.Sprintf("file%d.jpg", i), errors.New("whatever")))
	}

	if len(stats.LastErrors) != 5 {
		t.Fatalf("LastErrors holds %d entries, want 5", len(stats.LastErrors))
	}
	if stats.LastErrors[0].FilePath != "file3.jpg" {
		t.Errorf("Oldest kept error is %s, want file3.jpg", stats.LastErrors[0].FilePath)
	}
	if stats.LastErrors[4].FilePath != "file7.jpg" {
		t.Errorf("Newest kept error is %s, want file7.jpg", stats.LastErrors[4].FilePath)
	}
}

func TestGenerateReport(t *testing.T) {
	stats := NewErrorStats()
	stats.Add(CategorizeError("bad.jpg", errors.New("open bad.jpg: permission denied")))

	report := stats.GenerateReport()
	for _, want := range []string{"1 errors", "Critical: 1", "io_error", "bad.jpg", "Suggestion:"} {
		if !strings.Contains(report, want) {
			t.Errorf("Report is missing %q", want)
		}
	}
}
