package internal

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
)

// XMP namespaces used in the packet. Dublin Core carries title, description
// and the people ("subject") keywords; the Lightroom namespace carries the
// album as a hierarchical subject; xmp carries the creation date.
const (
	xmpHeaderPrefix = "http://ns.adobe.com/xap/1.0/\x00"

	nsDC  = "http://purl.org/dc/elements/1.1/"
	nsXMP = "http://ns.adobe.com/xap/1.0/"
	nsLR  = "http://ns.adobe.com/lightroom/1.0/"
)

// BuildXmpPacket serializes the sidecar metadata plus album context into an
// XMP (RDF/XML) packet, without the xpacket wrapper.
func BuildXmpPacket(meta *TakeoutMetadata, album string) string {
	var b strings.Builder

	b.WriteString(`<x:xmpmeta xmlns:x="adobe:ns:meta/">` + "\n")
	b.WriteString(` <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">` + "\n")
	fmt.Fprintf(&b, `  <rdf:Description rdf:about="" xmlns:dc=%q xmlns:xmp=%q xmlns:lr=%q>`+"\n",
		nsDC, nsXMP, nsLR)

	if meta != nil {
		if title := strings.TrimSpace(meta.Title); title != "" {
			writeAltProperty(&b, "dc:title", meta.Title)
		}
		if desc := strings.TrimSpace(meta.Description); desc != "" {
			writeAltProperty(&b, "dc:description", meta.Description)
		}
		if people := meta.PeopleNames(); len(people) > 0 {
			b.WriteString("   <dc:subject>\n    <rdf:Bag>\n")
			for _, name := range people {
				fmt.Fprintf(&b, "     <rdf:li>%s</rdf:li>\n", xmlEscape(name))
			}
			b.WriteString("    </rdf:Bag>\n   </dc:subject>\n")
		}
		if when, ok := meta.ResolveTime(); ok {
			fmt.Fprintf(&b, "   <xmp:CreateDate>%s</xmp:CreateDate>\n",
				when.Format("2006-01-02T15:04:05"))
		}
	}
	if strings.TrimSpace(album) != "" {
		fmt.Fprintf(&b, "   <lr:hierarchicalSubject>%s</lr:hierarchicalSubject>\n", xmlEscape(album))
	}

	b.WriteString("  </rdf:Description>\n")
	b.WriteString(" </rdf:RDF>\n")
	b.WriteString("</x:xmpmeta>")
	return b.String()
}

// writeAltProperty writes a language-alternative property the way XMP
// expects for title and description.
func writeAltProperty(b *strings.Builder, name, value string) {
	fmt.Fprintf(b, "   <%s>\n    <rdf:Alt>\n     <rdf:li xml:lang=\"x-default\">%s</rdf:li>\n    </rdf:Alt>\n   </%s>\n",
		name, xmlEscape(value), name)
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// spliceXmpIntoJpeg rewrites src into dest with the XMP packet added as its
// own APP1 segment. The packet goes right after the EXIF APP1 (or after SOI
// when there is none) so EXIF readers that stop at the first APP1 still find
// their segment.
func spliceXmpIntoJpeg(src, dest, xmpPacket string) error {
	jmp := jpegstructure.NewJpegMediaParser()
	intfc, err := jmp.ParseFile(src)
	if err != nil {
		return fmt.Errorf("failed to parse jpeg %s: %w", src, err)
	}
	sl := intfc.(*jpegstructure.SegmentList)

	xmpSegment := &jpegstructure.Segment{
		MarkerId: jpegstructure.MARKER_APP1,
		Data:     append([]byte(xmpHeaderPrefix), xmpPacket...),
	}

	segments := sl.Segments()
	at := xmpInsertIndex(segments)

	spliced := make([]*jpegstructure.Segment, 0, len(segments)+1)
	spliced = append(spliced, segments[:at]...)
	spliced = append(spliced, xmpSegment)
	spliced = append(spliced, segments[at:]...)

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	return jpegstructure.NewSegmentList(spliced).Write(out)
}

// xmpInsertIndex finds the slot after the EXIF APP1 segment, falling back to
// right after SOI.
func xmpInsertIndex(segments []*jpegstructure.Segment) int {
	for i, s := range segments {
		if s.MarkerId == jpegstructure.MARKER_APP1 && bytes.HasPrefix(s.Data, []byte("Exif\x00\x00")) {
			return i + 1
		}
	}
	return 1
}

// WriteVideoSidecar writes the XMP packet beside an already-placed video as
// <name>.<ext>.xmp, wrapped as a standalone xpacket.
func WriteVideoSidecar(videoPath string, meta *TakeoutMetadata, album string) error {
	packet := BuildXmpPacket(meta, album)

	var b strings.Builder
	b.WriteString("<?xpacket begin=\"\uFEFF\" id=\"W5M0MpCehiHzreSzNTczkc9d\"?>\n")
	b.WriteString(packet)
	b.WriteString("\n<?xpacket end=\"w\"?>\n")

	sidecarPath := videoPath + ".xmp"
	if err := os.WriteFile(sidecarPath, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write xmp sidecar %s: %w", sidecarPath, err)
	}
	return nil
}
