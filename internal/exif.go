package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
)

const exifTimeLayout = "2006:01:02 15:04:05"

// EmbedMetadata produces dest from a JPEG src with the sidecar metadata
// embedded. The write happens in two steps:
//
//	(a) rewrite the EXIF segment losslessly into a temp file (pixel data
//	    untouched), then
//	(b) splice the XMP packet into the temp file, producing dest.
//
// If (b) fails the EXIF-only temp is promoted to dest; if (a) fails the
// source is copied unmodified. Either fallback is logged and the record still
// counts as processed, so the error return only reports that even the plain
// copy failed.
func EmbedMetadata(src, dest string, meta *TakeoutMetadata, album string, log *Logger) error {
	tmp := dest + ".exif.tmp"

	if err := writeExifCopy(src, tmp, meta, album); err != nil {
		if log != nil {
			log.Log("exif write failed for %s: %v, copying without metadata", filepath.Base(src), err)
		}
		os.Remove(tmp)
		return copyFileAtomic(src, dest)
	}

	packet := BuildXmpPacket(meta, album)
	if err := spliceXmpIntoJpeg(tmp, dest, packet); err != nil {
		if log != nil {
			log.Log("xmp write failed for %s: %v, keeping exif-only version", filepath.Base(src), err)
		}
		os.Remove(dest)
		return os.Rename(tmp, dest)
	}

	os.Remove(tmp)
	return nil
}

// writeExifCopy rewrites src into dest with the synthesized EXIF fields.
// Only metadata segments are rewritten; the image stream passes through
// untouched.
func writeExifCopy(src, dest string, meta *TakeoutMetadata, album string) error {
	jmp := jpegstructure.NewJpegMediaParser()
	intfc, err := jmp.ParseFile(src)
	if err != nil {
		return fmt.Errorf("failed to parse jpeg %s: %w", src, err)
	}
	sl := intfc.(*jpegstructure.SegmentList)

	// Start from the existing EXIF block when there is one; absent is fine.
	rootIb, err := sl.ConstructExifBuilder()
	if err != nil {
		im, mErr := exifcommon.NewIfdMappingWithStandard()
		if mErr != nil {
			return mErr
		}
		ti := exif.NewTagIndex()
		rootIb = exif.NewIfdBuilder(im, ti, exifcommon.IfdStandardIfdIdentity, exifcommon.EncodeDefaultByteOrder)
	}

	if err := synthesizeExifFields(rootIb, meta, album, filepath.Base(src)); err != nil {
		return err
	}

	if err := sl.SetExif(rootIb); err != nil {
		return fmt.Errorf("failed to set exif segment: %w", err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	return sl.Write(out)
}

// synthesizeExifFields merges the sidecar metadata and album context into the
// EXIF builder. GPS coordinates are deliberately not written even when the
// sidecar has a valid fix; only the fields below are populated.
func synthesizeExifFields(rootIb *exif.IfdBuilder, meta *TakeoutMetadata, album, filename string) error {
	rootDir, err := exif.GetOrCreateIbFromRootIb(rootIb, "IFD0")
	if err != nil {
		return err
	}

	if when, ok := meta.ResolveTime(); ok {
		exifDir, err := exif.GetOrCreateIbFromRootIb(rootIb, "IFD0/Exif0")
		if err != nil {
			return err
		}
		stamp := when.Format(exifTimeLayout)
		if err := exifDir.SetStandardWithName("DateTimeOriginal", stamp); err != nil {
			return err
		}
		if err := exifDir.SetStandardWithName("DateTimeDigitized", stamp); err != nil {
			return err
		}
	}

	if meta != nil {
		if desc := strings.TrimSpace(meta.Description); desc != "" {
			if err := rootDir.SetStandardWithName("ImageDescription", meta.Description); err != nil {
				return err
			}
		}

		// Title goes into DocumentName, but only when it says something the
		// filename does not already.
		if title := strings.TrimSpace(meta.Title); title != "" && meta.Title != filename {
			// Best effort, not every reader knows the tag.
			rootDir.SetStandardWithName("DocumentName", meta.Title)
		}

		// EXIF has no people field. The names are preserved in Software as a
		// flat "People: ..." list; the XMP packet carries them properly.
		if people := meta.PeopleNames(); len(people) > 0 {
			if err := rootDir.SetStandardWithName("Software", "People: "+strings.Join(people, ", ")); err != nil {
				return err
			}
		}
	}

	// Same workaround for the album: Artist is widely surfaced by photo
	// managers, and EXIF has no album field.
	if strings.TrimSpace(album) != "" {
		if err := rootDir.SetStandardWithName("Artist", "Album: "+album); err != nil {
			return err
		}
	}

	return nil
}
