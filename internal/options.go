package internal

import "fmt"

// OrganizationMode is the policy for grouping output files into folders.
type OrganizationMode int

const (
	ByMonth OrganizationMode = iota // root/YYYY/MM
	ByAlbum                         // root/YYYY/MM/Album
	Flat                            // everything in root
)

func (m OrganizationMode) String() string {
	switch m {
	case ByMonth:
		return "by-month"
	case ByAlbum:
		return "by-album"
	case Flat:
		return "flat"
	}
	return fmt.Sprintf("OrganizationMode(%d)", int(m))
}

// ParseOrganizationMode maps a config/flag string to a mode.
func ParseOrganizationMode(s string) (OrganizationMode, error) {
	switch s {
	case "by-month", "by_month", "month":
		return ByMonth, nil
	case "by-album", "by_album", "album":
		return ByAlbum, nil
	case "flat", "":
		return Flat, nil
	}
	return Flat, fmt.Errorf("unknown organization mode: %q", s)
}

// DuplicateDetectionMode is the identity function used to decide whether two
// files are "the same" for skip purposes.
type DuplicateDetectionMode int

const (
	DetectByHash DuplicateDetectionMode = iota
	DetectByNameAndSize
	DetectByNameOnly
)

func (m DuplicateDetectionMode) String() string {
	switch m {
	case DetectByHash:
		return "hash"
	case DetectByNameAndSize:
		return "name-size"
	case DetectByNameOnly:
		return "name"
	}
	return fmt.Sprintf("DuplicateDetectionMode(%d)", int(m))
}

// ParseDuplicateMode maps a config/flag string to a detection mode.
func ParseDuplicateMode(s string) (DuplicateDetectionMode, error) {
	switch s {
	case "hash", "":
		return DetectByHash, nil
	case "name-size", "name_and_size", "namesize":
		return DetectByNameAndSize, nil
	case "name", "name-only", "name_only":
		return DetectByNameOnly, nil
	}
	return DetectByHash, fmt.Errorf("unknown duplicate detection mode: %q", s)
}

// ProcessingOptions configures one processing run. Immutable for the
// duration of the run.
type ProcessingOptions struct {
	OutputDirectory  string
	CopyFiles        bool // true = copy, false = move
	AddMetadata      bool
	OrganizationMode OrganizationMode
	SkipDuplicates   bool
	DuplicateMode    DuplicateDetectionMode
	UseExifTool      bool // embed via the exiftool binary instead of the built-in writer
}

// RunCounters aggregates the outcome of one run. Returned by value from
// Processor.Run; never shared between runs.
type RunCounters struct {
	Success int
	Errors  int
	Skipped int
}
