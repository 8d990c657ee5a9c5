package internal

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestBuildXmpPacket(t *testing.T) {
	taken := time.Date(2020, 12, 24, 18, 0, 0, 0, time.Local)
	meta := &TakeoutMetadata{
		Title:          "Christmas <Eve>",
		Description:    "Dinner & carols",
		PhotoTakenTime: &TimeInfo{Timestamp: strconv.FormatInt(taken.Unix(), 10)},
		People:         []Person{{Name: "Alice"}, {Name: ""}, {Name: "Bob"}},
	}

	packet := BuildXmpPacket(meta, "Familie/Weihnachten")

	for _, want := range []string{
		`<rdf:li xml:lang="x-default">Christmas &lt;Eve&gt;</rdf:li>`,
		`<rdf:li xml:lang="x-default">Dinner &amp; carols</rdf:li>`,
		"<rdf:li>Alice</rdf:li>",
		"<rdf:li>Bob</rdf:li>",
		"<xmp:CreateDate>" + taken.Format("2006-01-02T15:04:05") + "</xmp:CreateDate>",
		"<lr:hierarchicalSubject>Familie/Weihnachten</lr:hierarchicalSubject>",
	} {
		if !strings.Contains(packet, want) {
			t.Errorf("Packet is missing %q", want)
		}
	}

	// The empty person name must not produce an empty list item.
	if strings.Contains(packet, "<rdf:li></rdf:li>") {
		t.Error("Packet contains an empty subject entry")
	}
}

func TestBuildXmpPacket_Sparse(t *testing.T) {
	packet := BuildXmpPacket(nil, "")

	if strings.Contains(packet, "dc:title") || strings.Contains(packet, "dc:subject") {
		t.Error("Empty metadata should produce no property elements")
	}
	if !strings.Contains(packet, "<x:xmpmeta") {
		t.Error("Packet envelope missing")
	}
}

func TestWriteVideoSidecar(t *testing.T) {
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "clip.mp4")
	writeFile(t, videoPath, "video")

	meta := &TakeoutMetadata{Title: "Birthday clip"}
	if err := WriteVideoSidecar(videoPath, meta, "Party"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(videoPath + ".xmp")
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "<?xpacket begin=") {
		t.Error("Sidecar is missing the xpacket wrapper")
	}
	if !strings.Contains(content, "Birthday clip") {
		t.Error("Sidecar is missing the title")
	}
	if !strings.Contains(content, "<lr:hierarchicalSubject>Party</lr:hierarchicalSubject>") {
		t.Error("Sidecar is missing the album")
	}
}
