package internal

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Motion Photos carry an embedded MP4 in one of two layouts:
//
//	v1: [jpeg][mp4]["MotionPhoto_Data"][offset uint32][length uint32]
//	v2: the XMP packet records a GCamera:MicroVideoOffset counted backward
//	    from end-of-file; the video runs from there to EOF.
var (
	motionPhotoTrailer = []byte("MotionPhoto_Data")
	microVideoOffset   = regexp.MustCompile(`GCamera:MicroVideoOffset(?:="|>)(\d+)`)
	motionPhotoTokens  = [][]byte{
		[]byte("GCamera:MicroVideo"),
		[]byte("GCamera:MotionPhoto"),
	}
)

const trailerFieldsSize = 8 // offset (4 bytes) + length (4 bytes)

// MotionPhotoExtractor detects and carves embedded videos out of JPEGs.
type MotionPhotoExtractor struct {
	log *Logger
}

func NewMotionPhotoExtractor(log *Logger) *MotionPhotoExtractor {
	return &MotionPhotoExtractor{log: log}
}

// IsMotionPhoto is a cheap pre-check: a JPEG that either mentions the GCamera
// markers in its metadata or carries the v1 trailer at the tail.
func (e *MotionPhotoExtractor) IsMotionPhoto(path string) bool {
	if !isJpegName(path) {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	for _, token := range motionPhotoTokens {
		if bytes.Contains(data, token) {
			return true
		}
	}
	return hasTrailer(data)
}

// ExtractVideo carves the embedded video into destPath. It tries the XMP
// offset first (v2), then the trailer (v1). Failures are logged and reported
// as false; they never abort the photo's own processing.
func (e *MotionPhotoExtractor) ExtractVideo(path, destPath string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		e.logf("could not read motion photo %s: %v", filepath.Base(path), err)
		return false
	}

	if video, ok := e.carveFromXmpOffset(data); ok {
		return e.writeVideo(destPath, video)
	}
	if video, ok := e.carveFromTrailer(data); ok {
		return e.writeVideo(destPath, video)
	}
	return false
}

// carveFromXmpOffset handles v2: the offset counts backward from EOF, so the
// video starts at fileLength-offset and runs to the end.
func (e *MotionPhotoExtractor) carveFromXmpOffset(data []byte) ([]byte, bool) {
	m := microVideoOffset.FindSubmatch(data)
	if m == nil {
		return nil, false
	}
	offset, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return nil, false
	}

	videoStart := len(data) - offset
	if videoStart < 0 || videoStart >= len(data) {
		e.logf("invalid micro video offset %d for %d byte file", offset, len(data))
		return nil, false
	}
	return data[videoStart:], true
}

// carveFromTrailer handles v1: two big-endian uint32s in the final 8 bytes
// give the absolute offset and length of the video region.
func (e *MotionPhotoExtractor) carveFromTrailer(data []byte) ([]byte, bool) {
	if !hasTrailer(data) {
		return nil, false
	}
	tail := data[len(data)-trailerFieldsSize:]
	offset := int64(binary.BigEndian.Uint32(tail[0:4]))
	length := int64(binary.BigEndian.Uint32(tail[4:8]))

	if offset <= 0 || length <= 0 || offset+length > int64(len(data)) {
		e.logf("invalid motion photo trailer (offset=%d length=%d size=%d)", offset, length, len(data))
		return nil, false
	}
	return data[offset : offset+length], true
}

func (e *MotionPhotoExtractor) writeVideo(destPath string, video []byte) bool {
	if err := os.WriteFile(destPath, video, 0644); err != nil {
		e.logf("could not write extracted video %s: %v", filepath.Base(destPath), err)
		return false
	}
	return true
}

func (e *MotionPhotoExtractor) logf(format string, args ...interface{}) {
	if e.log != nil {
		e.log.Log(format, args...)
	}
}

func hasTrailer(data []byte) bool {
	min := len(motionPhotoTrailer) + trailerFieldsSize
	if len(data) < min {
		return false
	}
	start := len(data) - min
	return bytes.Equal(data[start:start+len(motionPhotoTrailer)], motionPhotoTrailer)
}

// VideoFileName maps a photo name to its extracted video companion
// (IMG_1234.jpg -> IMG_1234.mp4).
func VideoFileName(photoName string) string {
	ext := filepath.Ext(photoName)
	return strings.TrimSuffix(photoName, ext) + ".mp4"
}

func isJpegName(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".jpg" || ext == ".jpeg"
}
