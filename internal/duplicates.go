package internal

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DuplicateDetector classifies files as already-seen within one run. One
// instance per run; the cache is never shared across concurrent runs.
type DuplicateDetector struct {
	mode DuplicateDetectionMode
	seen map[string]string // identity key -> first-seen path
	log  *Logger

	// Filename index of the destination tree, used by DetectByNameOnly to
	// catch files left over from a prior run. Built once, on first use,
	// instead of re-walking the destination per file.
	destNames   map[string]bool
	destIndexed bool
}

// NewDuplicateDetector creates a detector for a single run.
func NewDuplicateDetector(mode DuplicateDetectionMode, log *Logger) *DuplicateDetector {
	return &DuplicateDetector{
		mode: mode,
		seen: make(map[string]string),
		log:  log,
	}
}

// IsDuplicate reports whether the file has been seen before in this run, or,
// in name-only mode, already exists under destRoot. Any I/O error during key
// computation is fail-open: the file is treated as not duplicate so a
// detector malfunction never blocks processing.
func (d *DuplicateDetector) IsDuplicate(path, destRoot string) bool {
	key, err := d.identityKey(path)
	if err != nil {
		if d.log != nil {
			d.log.Log("duplicate check failed for %s: %v", filepath.Base(path), err)
		}
		return false
	}

	if _, ok := d.seen[key]; ok {
		return true
	}

	if d.mode == DetectByNameOnly && d.existsInDestination(filepath.Base(path), destRoot) {
		d.seen[key] = path
		return true
	}

	d.seen[key] = path
	return false
}

// SeenCount returns the number of distinct identity keys recorded so far.
func (d *DuplicateDetector) SeenCount() int {
	return len(d.seen)
}

func (d *DuplicateDetector) identityKey(path string) (string, error) {
	switch d.mode {
	case DetectByHash:
		return fileHash(path)
	case DetectByNameAndSize:
		info, err := os.Stat(path)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s_%d", filepath.Base(path), info.Size()), nil
	default:
		return filepath.Base(path), nil
	}
}

func (d *DuplicateDetector) existsInDestination(name, destRoot string) bool {
	if !d.destIndexed {
		d.destNames = indexFilenames(destRoot)
		d.destIndexed = true
	}
	return d.destNames[name]
}

// indexFilenames walks a tree once and collects the basenames of all regular
// files. Walk errors just leave names out of the index.
func indexFilenames(root string) map[string]bool {
	names := make(map[string]bool)
	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			names[info.Name()] = true
		}
		return nil
	})
	return names
}

// fileHash computes the SHA256 hash of a file's content.
func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
