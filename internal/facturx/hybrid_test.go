package facturx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFacturXMP_RoundTrip(t *testing.T) {
	xmp := facturXMP(ProfileBasicWL, time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC))

	if !strings.Contains(xmp, "<xmp:ModifyDate>2026-10-19T08:00:00Z</xmp:ModifyDate>") {
		t.Errorf("missing modify date in %s", xmp)
	}
	docType, level := parseFacturXMP([]byte(xmp))
	if docType != "INVOICE" || level != "BASIC WL" {
		t.Errorf("got %q %q, want INVOICE BASIC WL", docType, level)
	}
}

func TestFacturXMP_UnknownProfile(t *testing.T) {
	xmp := facturXMP(ProfileUnknown, time.Now())
	if strings.Contains(xmp, "<fx:ConformanceLevel>") {
		t.Error("unknown profile must not declare a conformance level")
	}
}

func TestParseFacturXMP_Attributes(t *testing.T) {
	xmp := `<x:xmpmeta xmlns:x="adobe:ns:meta/"><rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
<rdf:Description rdf:about="" xmlns:fx="` + NamespaceFacturXMP + `" fx:DocumentType="INVOICE" fx:ConformanceLevel="EN 16931"/>
</rdf:RDF></x:xmpmeta>`

	docType, level := parseFacturXMP([]byte(xmp))
	if docType != "INVOICE" || level != "EN 16931" {
		t.Errorf("got %q %q", docType, level)
	}

	if docType, level := parseFacturXMP([]byte("not xml")); docType != "" || level != "" {
		t.Errorf("garbage parsed as %q %q", docType, level)
	}
}

func TestMediaType(t *testing.T) {
	tests := map[string]struct {
		data []byte
		want string
	}{
		"text":  {data: []byte("Payment within 30 days"), want: "text/plain"},
		"pdf":   {data: []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n"), want: "application/pdf"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := mediaType(tt.data); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMaterializeSchemas(t *testing.T) {
	base := t.TempDir()

	dir, err := materializeSchemas(base)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"minimum.xsd", "minimum_ram.xsd", "minimum_udt.xsd", ".complete"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}

	again, err := materializeSchemas(base)
	if err != nil {
		t.Fatal(err)
	}
	if again != dir {
		t.Errorf("second call wrote %s, want %s", again, dir)
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("staging dirs left behind: %d entries", len(entries))
	}
}

func TestHasBundledSchema(t *testing.T) {
	if !hasBundledSchema(ProfileMinimum) {
		t.Error("minimum schema must be bundled")
	}
	for _, p := range []Profile{ProfileUnknown, ProfileEN16931, ProfileXRechnung} {
		if hasBundledSchema(p) {
			t.Errorf("unexpected bundled schema for %q", p)
		}
	}
}
