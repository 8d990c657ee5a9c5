package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// TakeoutMetadata mirrors the JSON sidecar Google Takeout writes next to each
// media file (photo.jpg -> photo.jpg.json).
type TakeoutMetadata struct {
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	ImageViews         string        `json:"imageViews"`
	CreationTime       *TimeInfo     `json:"creationTime"`
	PhotoTakenTime     *TimeInfo     `json:"photoTakenTime"`
	GeoData            *GeoData      `json:"geoData"`
	GeoDataExif        *GeoData      `json:"geoDataExif"`
	People             []Person      `json:"people"`
	URL                string        `json:"url"`
	GooglePhotosOrigin *PhotosOrigin `json:"googlePhotosOrigin"`
}

// TimeInfo holds one of the two timestamp groups in a sidecar. Timestamp is
// Unix epoch seconds encoded as a string.
type TimeInfo struct {
	Timestamp string `json:"timestamp"`
	Formatted string `json:"formatted"`
}

// Unix returns the timestamp as epoch seconds, or 0 if it does not parse.
func (t *TimeInfo) Unix() int64 {
	if t == nil {
		return 0
	}
	ts, err := strconv.ParseInt(t.Timestamp, 10, 64)
	if err != nil {
		return 0
	}
	return ts
}

// GeoData holds a GPS fix from the sidecar, either the GPS-sourced variant
// (geoData) or the EXIF-sourced one (geoDataExif).
type GeoData struct {
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Altitude      float64 `json:"altitude"`
	LatitudeSpan  float64 `json:"latitudeSpan"`
	LongitudeSpan float64 `json:"longitudeSpan"`
}

// HasValidCoordinates reports whether the fix looks real. (0, 0) is a valid
// spot in the Gulf of Guinea, but in a Takeout export it means "no GPS data",
// so we treat it as absent.
func (g *GeoData) HasValidCoordinates() bool {
	if g == nil {
		return false
	}
	return g.Latitude != 0 || g.Longitude != 0
}

// Person is a named person tagged on a photo. The sidecar carries names only,
// no bounding boxes.
type Person struct {
	Name string `json:"name"`
}

// PhotosOrigin describes where the upload came from. Informational only, the
// pipeline never uses it.
type PhotosOrigin struct {
	MobileUpload *MobileUpload `json:"mobileUpload"`
}

type MobileUpload struct {
	DeviceFolder *DeviceFolder `json:"deviceFolder"`
	DeviceType   string        `json:"deviceType"`
}

type DeviceFolder struct {
	LocalFolderName string `json:"localFolderName"`
}

// ResolveTime picks the capture time for a record: photoTakenTime wins, then
// creationTime, and anything non-positive means no resolvable date. The epoch
// is converted with the process-local timezone, same convention as the
// formatted strings Google writes.
func (m *TakeoutMetadata) ResolveTime() (time.Time, bool) {
	if m == nil {
		return time.Time{}, false
	}
	if ts := m.PhotoTakenTime.Unix(); ts > 0 {
		return time.Unix(ts, 0), true
	}
	if ts := m.CreationTime.Unix(); ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// PeopleNames returns the non-empty person names in sidecar order.
func (m *TakeoutMetadata) PeopleNames() []string {
	if m == nil {
		return nil
	}
	var names []string
	for _, p := range m.People {
		if strings.TrimSpace(p.Name) != "" {
			names = append(names, p.Name)
		}
	}
	return names
}

// ParseMetadataFile reads and decodes one sidecar. Sidecars are UTF-8 JSON;
// Go's decoder handles that natively.
func ParseMetadataFile(path string) (*TakeoutMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sidecar %s: %w", path, err)
	}
	defer f.Close()

	var meta TakeoutMetadata
	if err := json.NewDecoder(f).Decode(&meta); err != nil {
		return nil, fmt.Errorf("failed to parse sidecar %s: %w", path, err)
	}
	return &meta, nil
}
