package internal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// DestinationDir maps (resolved date, album, organization mode) to the
// directory a record lands in.
//
//	flat:     root
//	by-month: root/YYYY/MM, or root/Unknown_Date without a date
//	by-album: root/YYYY/MM/<album>, with "No_Album" standing in for a
//	          missing album and Unknown_Date for a missing date
func DestinationDir(meta *TakeoutMetadata, album string, opts *ProcessingOptions) string {
	root := opts.OutputDirectory

	switch opts.OrganizationMode {
	case ByMonth:
		when, ok := meta.ResolveTime()
		if !ok {
			return filepath.Join(root, "Unknown_Date")
		}
		return filepath.Join(root,
			fmt.Sprintf("%04d", when.Year()),
			fmt.Sprintf("%02d", when.Month()))

	case ByAlbum:
		if album == "" {
			album = "No_Album"
		}
		when, ok := meta.ResolveTime()
		if !ok {
			return filepath.Join(root, "Unknown_Date", album)
		}
		return filepath.Join(root,
			fmt.Sprintf("%04d", when.Year()),
			fmt.Sprintf("%02d", when.Month()),
			album)

	default:
		return root
	}
}

// maxSuffixAttempts bounds the collision loop so it provably terminates.
const maxSuffixAttempts = 10000

// UniqueDestPath returns dest if it is free, otherwise the first free
// name_<n>.ext variant. Past the attempt bound it falls back to a
// millisecond-timestamp suffix.
func UniqueDestPath(dest string) string {
	if _, err := os.Stat(dest); os.IsNotExist(err) {
		return dest
	}

	ext := filepath.Ext(dest)
	base := dest[:len(dest)-len(ext)]

	for i := 1; i <= maxSuffixAttempts; i++ {
		try := fmt.Sprintf("%s_%d%s", base, i, ext)
		if _, err := os.Stat(try); os.IsNotExist(err) {
			return try
		}
	}
	return fmt.Sprintf("%s_%d%s", base, time.Now().UnixMilli(), ext)
}

// copyFileAtomic copies a file via a temp name and renames it into place.
func copyFileAtomic(src, dest string) error {
	tmp := dest + ".tmp"
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	out.Close()

	return os.Rename(tmp, dest)
}

// moveFile renames, falling back to copy+delete when source and destination
// are on different filesystems.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	if err := copyFileAtomic(src, dest); err != nil {
		return err
	}
	return os.Remove(src)
}
