package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	imageExtensions = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
		".bmp": true, ".webp": true, ".heic": true, ".heif": true,
	}

	videoExtensions = map[string]bool{
		".mp4": true, ".mov": true, ".avi": true, ".mkv": true,
		".wmv": true, ".flv": true, ".webm": true, ".m4v": true, ".3gp": true,
	}

	yearFolder = regexp.MustCompile(`^\d{4}$`)
	dateFolder = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// MediaRecord pairs one media file with its sidecar. Records are built by
// ScanTakeoutDirectory and never mutated afterwards. A record with a sidecar
// that failed to parse keeps Metadata nil but is still produced.
type MediaRecord struct {
	MediaPath   string
	SidecarPath string           // empty when no sidecar was found
	Metadata    *TakeoutMetadata // nil when absent or unparseable
	AlbumName   string           // empty when no album could be inferred
}

// IsImage reports whether the media file is an image by extension.
func (r *MediaRecord) IsImage() bool {
	return imageExtensions[strings.ToLower(filepath.Ext(r.MediaPath))]
}

// IsVideo reports whether the media file is a video by extension.
func (r *MediaRecord) IsVideo() bool {
	return videoExtensions[strings.ToLower(filepath.Ext(r.MediaPath))]
}

// IsJpeg reports whether the media file is a JPEG. Only JPEGs get metadata
// embedded in-place.
func (r *MediaRecord) IsJpeg() bool {
	ext := strings.ToLower(filepath.Ext(r.MediaPath))
	return ext == ".jpg" || ext == ".jpeg"
}

func isMediaFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".json" {
		return false
	}
	return imageExtensions[ext] || videoExtensions[ext]
}

// ScanTakeoutDirectory walks a Takeout export and produces one MediaRecord
// per media file. Sidecar parse failures degrade that record to "no metadata"
// instead of aborting the scan.
func ScanTakeoutDirectory(root string, log *Logger) ([]*MediaRecord, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("invalid takeout directory: %s", root)
	}

	var records []*MediaRecord
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isMediaFile(info.Name()) {
			return nil
		}

		rec := &MediaRecord{
			MediaPath: path,
			AlbumName: inferAlbumName(root, path),
		}
		if sidecar := findSidecar(path); sidecar != "" {
			rec.SidecarPath = sidecar
			meta, perr := ParseMetadataFile(sidecar)
			if perr != nil {
				if log != nil {
					log.Log("sidecar parse failed for %s: %v", filepath.Base(path), perr)
				}
			} else {
				rec.Metadata = meta
			}
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning takeout directory: %w", err)
	}
	return records, nil
}

// findSidecar locates the JSON sidecar for a media file. The common layout is
// "photo.jpg" + "photo.jpg.json". Provider-renamed duplicates break that
// ("photo(1).jpg" next to "photo.jpg.json"), so when the exact name misses we
// fall back to a case-insensitive prefix match against the .json files in the
// same directory. First match wins; the tie-break is os.ReadDir order, which
// sorts entries by name.
func findSidecar(mediaPath string) string {
	exact := mediaPath + ".json"
	if _, err := os.Stat(exact); err == nil {
		return exact
	}

	dir := filepath.Dir(mediaPath)
	base := strings.ToLower(baseWithoutExt(filepath.Base(mediaPath)))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		name := strings.ToLower(e.Name())
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		// Either direction: "photo.jpg(1).json" starts with "photo", and
		// "photo(1)" starts with the "photo" stem of "photo.jpg.json".
		stem := baseWithoutExt(strings.TrimSuffix(name, ".json"))
		if strings.HasPrefix(name, base) || strings.HasPrefix(base, stem) {
			return filepath.Join(dir, e.Name())
		}
	}
	return ""
}

func baseWithoutExt(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}

// inferAlbumName derives an album from the folder structure. Takeout wraps
// albums in folders that are not albums themselves (the Takeout root, year
// folders, date folders, "Photos from ..."), so the immediate parent is tried
// first and the grandparent second, both under the same exclusion rules.
func inferAlbumName(root, mediaPath string) string {
	parent := filepath.Dir(mediaPath)
	if sameDir(parent, root) {
		return ""
	}

	name := filepath.Base(parent)
	if !isWrapperFolder(name) {
		return name
	}

	grand := filepath.Dir(parent)
	if sameDir(grand, root) {
		return ""
	}
	if gname := filepath.Base(grand); !isWrapperFolder(gname) {
		return gname
	}
	return ""
}

func isWrapperFolder(name string) bool {
	return name == "Google Photos" ||
		name == "Takeout" ||
		strings.HasPrefix(name, "Photos from") ||
		yearFolder.MatchString(name) ||
		dateFolder.MatchString(name)
}

func sameDir(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}

// ScanStatistics summarizes a scan result independent of any processing run.
type ScanStatistics struct {
	TotalFiles           int
	ImagesWithMetadata   int
	VideosWithMetadata   int
	FilesWithoutMetadata int
	FilesWithGeoData     int
	TotalBytes           int64
}

func (s ScanStatistics) String() string {
	return fmt.Sprintf("Total: %d, Images: %d, Videos: %d, Without metadata: %d, With GPS: %d",
		s.TotalFiles, s.ImagesWithMetadata, s.VideosWithMetadata, s.FilesWithoutMetadata, s.FilesWithGeoData)
}

// CalculateStatistics computes aggregate statistics for a scan result.
func CalculateStatistics(records []*MediaRecord) ScanStatistics {
	stats := ScanStatistics{TotalFiles: len(records)}

	for _, rec := range records {
		if info, err := os.Stat(rec.MediaPath); err == nil {
			stats.TotalBytes += info.Size()
		}
		if rec.Metadata == nil {
			stats.FilesWithoutMetadata++
			continue
		}
		if rec.IsImage() {
			stats.ImagesWithMetadata++
		} else if rec.IsVideo() {
			stats.VideosWithMetadata++
		}
		if rec.Metadata.GeoData.HasValidCoordinates() {
			stats.FilesWithGeoData++
		}
	}
	return stats
}
