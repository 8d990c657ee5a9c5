package internal

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

const sidecarJSON = `{
  "title": "beach.jpg",
  "description": "A day at the beach",
  "photoTakenTime": {"timestamp": "1609459200", "formatted": "Jan 1, 2021"},
  "creationTime": {"timestamp": "1609459300", "formatted": "Jan 1, 2021"},
  "geoData": {"latitude": 48.1, "longitude": 11.5, "altitude": 520.0},
  "people": [{"name": "Alice"}, {"name": "Bob"}]
}`

func TestScanTakeoutDirectory_PairsSidecars(t *testing.T) {
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "beach.jpg"), "jpegdata")
	writeFile(t, filepath.Join(root, "beach.jpg.json"), sidecarJSON)
	writeFile(t, filepath.Join(root, "video.mp4"), "mp4data")
	writeFile(t, filepath.Join(root, "notes.txt"), "not media")

	records, err := ScanTakeoutDirectory(root, nil)
	if err != nil {
		t.Fatalf("ScanTakeoutDirectory failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	var jpeg *MediaRecord
	for _, rec := range records {
		if filepath.Base(rec.MediaPath) == "beach.jpg" {
			jpeg = rec
		}
	}
	if jpeg == nil {
		t.Fatal("beach.jpg record missing")
	}
	if jpeg.Metadata == nil {
		t.Fatal("Expected parsed metadata for beach.jpg")
	}
	if jpeg.Metadata.Description != "A day at the beach" {
		t.Errorf("Wrong description: %q", jpeg.Metadata.Description)
	}
	if got := jpeg.Metadata.PhotoTakenTime.Unix(); got != 1609459200 {
		t.Errorf("Expected timestamp 1609459200, got %d", got)
	}
	if names := jpeg.Metadata.PeopleNames(); len(names) != 2 || names[0] != "Alice" {
		t.Errorf("Wrong people: %v", names)
	}
}

func TestScanTakeoutDirectory_PrefixSidecarMatch(t *testing.T) {
	root := t.TempDir()

	// Provider-renamed duplicate: photo(1).jpg has no exact sidecar, but
	// photo.jpg.json shares the prefix.
	writeFile(t, filepath.Join(root, "photo(1).jpg"), "jpegdata")
	writeFile(t, filepath.Join(root, "photo.jpg.json"), sidecarJSON)

	records, err := ScanTakeoutDirectory(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].SidecarPath == "" || records[0].Metadata == nil {
		t.Error("Expected prefix-matched sidecar with parsed metadata")
	}
}

func TestScanTakeoutDirectory_BadSidecarKeepsRecord(t *testing.T) {
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "broken.jpg"), "jpegdata")
	writeFile(t, filepath.Join(root, "broken.jpg.json"), "{not valid json")

	records, err := ScanTakeoutDirectory(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected the record to survive a parse failure, got %d records", len(records))
	}
	if records[0].Metadata != nil {
		t.Error("Expected nil metadata after parse failure")
	}
	if records[0].SidecarPath == "" {
		t.Error("Sidecar path should still be recorded")
	}
}

func TestScanTakeoutDirectory_InvalidRoot(t *testing.T) {
	if _, err := ScanTakeoutDirectory("/does/not/exist", nil); err == nil {
		t.Error("Expected error for missing directory")
	}

	file := filepath.Join(t.TempDir(), "afile.txt")
	writeFile(t, file, "x")
	if _, err := ScanTakeoutDirectory(file, nil); err == nil {
		t.Error("Expected error for non-directory root")
	}
}

func TestInferAlbumName(t *testing.T) {
	root := "/takeout"

	testCases := []struct {
		name     string
		path     string
		expected string
	}{
		{"file in root", "/takeout/img.jpg", ""},
		{"album folder", "/takeout/Summer 2023/img.jpg", "Summer 2023"},
		{"google photos wrapper", "/takeout/Google Photos/img.jpg", ""},
		{"year folder", "/takeout/2023/img.jpg", ""},
		{"date folder", "/takeout/2023-06-15/img.jpg", ""},
		{"photos from wrapper", "/takeout/Photos from 2023/img.jpg", ""},
		{"album above year folder", "/takeout/Vacation/2023/img.jpg", "Vacation"},
		{"album above date folder", "/takeout/Wedding/2023-06-15/img.jpg", "Wedding"},
		{"wrapper above wrapper", "/takeout/Google Photos/2023/img.jpg", ""},
		{"year above year", "/takeout/2022/2023/img.jpg", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := inferAlbumName(root, tc.path)
			if got != tc.expected {
				t.Errorf("Expected album %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestCalculateStatistics(t *testing.T) {
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "a.jpg"), "img")
	writeFile(t, filepath.Join(root, "a.jpg.json"), sidecarJSON)
	writeFile(t, filepath.Join(root, "b.mp4"), "vid")
	writeFile(t, filepath.Join(root, "b.mp4.json"), `{"title": "b.mp4"}`)
	writeFile(t, filepath.Join(root, "c.png"), "img")

	records, err := ScanTakeoutDirectory(root, nil)
	if err != nil {
		t.Fatal(err)
	}

	stats := CalculateStatistics(records)
	if stats.TotalFiles != 3 {
		t.Errorf("TotalFiles = %d, want 3", stats.TotalFiles)
	}
	if stats.ImagesWithMetadata != 1 {
		t.Errorf("ImagesWithMetadata = %d, want 1", stats.ImagesWithMetadata)
	}
	if stats.VideosWithMetadata != 1 {
		t.Errorf("VideosWithMetadata = %d, want 1", stats.VideosWithMetadata)
	}
	if stats.FilesWithoutMetadata != 1 {
		t.Errorf("FilesWithoutMetadata = %d, want 1", stats.FilesWithoutMetadata)
	}
	if stats.FilesWithGeoData != 1 {
		t.Errorf("FilesWithGeoData = %d, want 1", stats.FilesWithGeoData)
	}
	if stats.TotalBytes == 0 {
		t.Error("TotalBytes should be non-zero")
	}
}

func TestGeoDataValidCoordinates(t *testing.T) {
	testCases := []struct {
		name  string
		geo   *GeoData
		valid bool
	}{
		{"nil", nil, false},
		{"zero zero", &GeoData{Latitude: 0, Longitude: 0}, false},
		{"munich", &GeoData{Latitude: 48.1, Longitude: 11.5}, true},
		{"on the equator", &GeoData{Latitude: 0, Longitude: 11.5}, true},
		{"on the prime meridian", &GeoData{Latitude: 48.1, Longitude: 0}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.geo.HasValidCoordinates(); got != tc.valid {
				t.Errorf("HasValidCoordinates() = %v, want %v", got, tc.valid)
			}
		})
	}
}
