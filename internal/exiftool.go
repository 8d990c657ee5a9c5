package internal

import (
	"path/filepath"
	"strings"

	"github.com/barasher/go-exiftool"
)

// EmbedMetadataWithExifTool is the exiftool-binary alternative to
// EmbedMetadata, for installs where the built-in writer chokes on a file the
// exiftool binary handles. The file is copied first and the tags are written
// in place on the copy, so a tagging failure still leaves a correct plain
// copy at dest.
func EmbedMetadataWithExifTool(src, dest string, meta *TakeoutMetadata, album string, log *Logger) error {
	if err := copyFileAtomic(src, dest); err != nil {
		return err
	}

	et, err := exiftool.NewExiftool()
	if err != nil {
		if log != nil {
			log.Log("exiftool unavailable for %s: %v, keeping plain copy", filepath.Base(src), err)
		}
		return nil
	}
	defer et.Close()

	fm := exiftool.FileMetadata{
		File:   dest,
		Fields: map[string]interface{}{},
	}

	if when, ok := meta.ResolveTime(); ok {
		stamp := when.Format(exifTimeLayout)
		fm.SetString("DateTimeOriginal", stamp)
		fm.SetString("CreateDate", stamp)
	}
	if meta != nil {
		if strings.TrimSpace(meta.Description) != "" {
			fm.SetString("ImageDescription", meta.Description)
			fm.SetString("Description", meta.Description)
		}
		if title := strings.TrimSpace(meta.Title); title != "" && meta.Title != filepath.Base(src) {
			fm.SetString("DocumentName", meta.Title)
			fm.SetString("Title", meta.Title)
		}
		if people := meta.PeopleNames(); len(people) > 0 {
			fm.SetString("Software", "People: "+strings.Join(people, ", "))
			fm.SetStrings("Subject", people)
		}
	}
	if strings.TrimSpace(album) != "" {
		fm.SetString("Artist", "Album: "+album)
		fm.SetString("HierarchicalSubject", album)
	}

	if len(fm.Fields) == 0 {
		return nil
	}

	fms := []exiftool.FileMetadata{fm}
	et.WriteMetadata(fms)
	if fms[0].Err != nil {
		if log != nil {
			log.Log("exiftool write failed for %s: %v, keeping plain copy", filepath.Base(src), fms[0].Err)
		}
		return nil
	}

	return nil
}
