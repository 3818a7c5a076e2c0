package facturx

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// NamespaceFacturXMP is the XMP namespace of the Factur-X extension schema
const NamespaceFacturXMP = "urn:factur-x:pdfa:CrossIndustryDocument:invoice:1p0#"

// Associated file relationships
const (
	RelationshipData       = "Data"
	RelationshipSupplement = "Supplement"
)

const (
	invoiceMediaType   = "text/xml"
	invoiceDescription = "Factur-X invoice"
	producerName       = "facturx-fusion"
)

// AssociatedFile is one entry of the catalog /AF array
type AssociatedFile struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	MediaType    string `json:"media_type,omitempty"`
}

// HybridInfo describes the Factur-X markers of a PDF
type HybridInfo struct {
	DocumentType     string           `json:"document_type,omitempty"`
	ConformanceLevel string           `json:"conformance_level,omitempty"`
	AssociatedFiles  []AssociatedFile `json:"associated_files,omitempty"`
}

type embeddedFile struct {
	name         string
	desc         string
	mediaType    string
	relationship string
	data         []byte
}

// writeHybrid embeds files into the PDF at inputPDF as associated files,
// records them in the catalog /AF array, attaches Factur-X XMP metadata for
// profile and writes the result to outputPDF
func writeHybrid(inputPDF, outputPDF string, profile Profile, files []embeddedFile) error {
	f, err := os.Open(inputPDF)
	if err != nil {
		return fmt.Errorf("open PDF: %w", err)
	}
	defer f.Close()

	conf := newConf()
	conf.Cmd = model.ADDATTACHMENTS
	pdf, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return fmt.Errorf("read PDF: %w", err)
	}

	xt := pdf.XRefTable
	if err := xt.LocateNameTree("EmbeddedFiles", true); err != nil {
		return fmt.Errorf("locate embedded files: %w", err)
	}

	now := time.Now()
	af := make(types.Array, 0, len(files))
	for _, ef := range files {
		ref, err := addAssociatedFile(xt, ef, now)
		if err != nil {
			return fmt.Errorf("embed %s: %w", ef.name, err)
		}
		af = append(af, *ref)
	}

	catalog, err := xt.Catalog()
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}
	catalog.Update("AF", af)

	meta, err := newMetadataStream(xt, profile, now)
	if err != nil {
		return fmt.Errorf("create XMP metadata: %w", err)
	}
	catalog.Update("Metadata", *meta)

	// /AF is validated as a PDF 2.0 feature; PDF/A-3 carries it at 1.7
	xt.EnsureVersionForWriting()

	out, err := os.Create(outputPDF)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := api.WriteContext(pdf, out); err != nil {
		out.Close()
		os.Remove(outputPDF)
		return fmt.Errorf("write PDF: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(outputPDF)
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

func addAssociatedFile(xt *model.XRefTable, ef embeddedFile, modTime time.Time) (*types.IndirectRef, error) {
	streamRef, err := xt.NewEmbeddedStreamDict(bytes.NewReader(ef.data), modTime)
	if err != nil {
		return nil, err
	}
	sd, _, err := xt.DereferenceStreamDict(*streamRef)
	if err != nil {
		return nil, err
	}
	if sd != nil && ef.mediaType != "" {
		sd.InsertName("Subtype", ef.mediaType)
	}

	filespec, err := xt.NewFileSpecDict(ef.name, ef.name, ef.desc, *streamRef)
	if err != nil {
		return nil, err
	}
	filespec.InsertName("AFRelationship", ef.relationship)

	ref, err := xt.IndRefForNewObject(filespec)
	if err != nil {
		return nil, err
	}

	m := model.NameMap{ef.name: []types.Dict{filespec}}
	if err := xt.Names["EmbeddedFiles"].Add(xt, ef.name, *ref, m, []string{"F", "UF"}); err != nil {
		return nil, err
	}
	return ref, nil
}

// newMetadataStream creates an unfiltered XMP metadata stream
func newMetadataStream(xt *model.XRefTable, profile Profile, now time.Time) (*types.IndirectRef, error) {
	sd := types.StreamDict{
		Dict:    types.NewDict(),
		Content: []byte(facturXMP(profile, now)),
	}
	sd.InsertName("Type", "Metadata")
	sd.InsertName("Subtype", "XML")
	if err := sd.Encode(); err != nil {
		return nil, err
	}
	return xt.IndRefForNewObject(sd)
}

// facturXMP renders the XMP packet declaring the Factur-X invoice. The
// conformance level is omitted when the profile is unknown.
func facturXMP(profile Profile, now time.Time) string {
	level := ""
	if l := profile.ConformanceLevel(); l != "" {
		level = "\n      <fx:ConformanceLevel>" + l + "</fx:ConformanceLevel>"
	}
	stamp := now.UTC().Format("2006-01-02T15:04:05Z")

	return `<?xpacket begin="` + "\ufeff" + `" id="W5M0MpCehiHzreSzNTczkc9d"?>
<x:xmpmeta xmlns:x="adobe:ns:meta/">
  <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
    <rdf:Description rdf:about="" xmlns:xmp="http://ns.adobe.com/xap/1.0/" xmlns:pdf="http://ns.adobe.com/pdf/1.3/">
      <xmp:CreatorTool>` + producerName + `</xmp:CreatorTool>
      <xmp:ModifyDate>` + stamp + `</xmp:ModifyDate>
      <pdf:Producer>` + producerName + `</pdf:Producer>
    </rdf:Description>
    <rdf:Description rdf:about="" xmlns:fx="` + NamespaceFacturXMP + `">
      <fx:DocumentType>INVOICE</fx:DocumentType>
      <fx:DocumentFileName>` + XMLFilename + `</fx:DocumentFileName>
      <fx:Version>1.0</fx:Version>` + level + `
    </rdf:Description>
    <rdf:Description rdf:about="" xmlns:pdfaExtension="http://www.aiim.org/pdfa/ns/extension/" xmlns:pdfaSchema="http://www.aiim.org/pdfa/ns/schema#" xmlns:pdfaProperty="http://www.aiim.org/pdfa/ns/property#">
      <pdfaExtension:schemas>
        <rdf:Bag>
          <rdf:li rdf:parseType="Resource">
            <pdfaSchema:schema>Factur-X PDFA Extension Schema</pdfaSchema:schema>
            <pdfaSchema:namespaceURI>` + NamespaceFacturXMP + `</pdfaSchema:namespaceURI>
            <pdfaSchema:prefix>fx</pdfaSchema:prefix>
            <pdfaSchema:property>
              <rdf:Seq>` +
		xmpProperty("DocumentFileName", "name of the embedded XML invoice file") +
		xmpProperty("DocumentType", "INVOICE") +
		xmpProperty("Version", "version of the Factur-X XML schema") +
		xmpProperty("ConformanceLevel", "conformance level of the embedded XML invoice") + `
              </rdf:Seq>
            </pdfaSchema:property>
          </rdf:li>
        </rdf:Bag>
      </pdfaExtension:schemas>
    </rdf:Description>
  </rdf:RDF>
</x:xmpmeta>
<?xpacket end="w"?>`
}

func xmpProperty(name, desc string) string {
	return `
                <rdf:li rdf:parseType="Resource">
                  <pdfaProperty:name>` + name + `</pdfaProperty:name>
                  <pdfaProperty:valueType>Text</pdfaProperty:valueType>
                  <pdfaProperty:category>external</pdfaProperty:category>
                  <pdfaProperty:description>` + desc + `</pdfaProperty:description>
                </rdf:li>`
}

// mediaType sniffs the MIME type of an attachment without parameters
func mediaType(data []byte) string {
	mt := mimetype.Detect(data).String()
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return strings.TrimSpace(mt)
}

// ReadHybridInfo reads the catalog /AF array and the Factur-X XMP metadata
// of the PDF at pdfPath
func ReadHybridInfo(pdfPath string) (*HybridInfo, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pdf, err := api.ReadContext(f, newConf())
	if err != nil {
		return nil, fmt.Errorf("read PDF: %w", err)
	}
	xt := pdf.XRefTable

	catalog, err := xt.Catalog()
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	info := &HybridInfo{}
	if o, ok := catalog.Find("AF"); ok {
		arr, err := xt.DereferenceArray(o)
		if err != nil {
			return nil, fmt.Errorf("read /AF: %w", err)
		}
		for _, entry := range arr {
			af, err := readAssociatedFile(xt, entry)
			if err != nil {
				return nil, err
			}
			info.AssociatedFiles = append(info.AssociatedFiles, *af)
		}
	}

	if o, ok := catalog.Find("Metadata"); ok {
		sd, _, err := xt.DereferenceStreamDict(o)
		if err != nil {
			return nil, fmt.Errorf("read metadata: %w", err)
		}
		if sd != nil {
			if err := sd.Decode(); err != nil {
				return nil, fmt.Errorf("decode metadata: %w", err)
			}
			info.DocumentType, info.ConformanceLevel = parseFacturXMP(sd.Content)
		}
	}
	return info, nil
}

func readAssociatedFile(xt *model.XRefTable, o types.Object) (*AssociatedFile, error) {
	filespec, err := xt.DereferenceDict(o)
	if err != nil {
		return nil, fmt.Errorf("read associated file: %w", err)
	}
	if filespec == nil {
		return nil, fmt.Errorf("read associated file: missing file specification %v", o)
	}

	af := &AssociatedFile{}
	for _, key := range []string{"UF", "F"} {
		if v, ok := filespec.Find(key); ok {
			if af.Name, err = xt.DereferenceStringOrHexLiteral(v, model.V10, nil); err != nil {
				return nil, fmt.Errorf("read file name: %w", err)
			}
			break
		}
	}
	if rel := filespec.NameEntry("AFRelationship"); rel != nil {
		af.Relationship = *rel
	}

	if v, ok := filespec.Find("EF"); ok {
		ef, err := xt.DereferenceDict(v)
		if err != nil {
			return nil, fmt.Errorf("read EF of %s: %w", af.Name, err)
		}
		if s, ok := ef.Find("F"); ok {
			sd, _, err := xt.DereferenceStreamDict(s)
			if err != nil {
				return nil, fmt.Errorf("read stream of %s: %w", af.Name, err)
			}
			if sd != nil {
				if st := sd.Subtype(); st != nil {
					af.MediaType = *st
				}
			}
		}
	}
	return af, nil
}

// parseFacturXMP returns the fx:DocumentType and fx:ConformanceLevel values.
// Producers write them as elements or as rdf:Description attributes.
func parseFacturXMP(data []byte) (docType, level string) {
	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(data); err != nil {
		return "", ""
	}

	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		for _, a := range e.Attr {
			if a.NamespaceURI() != NamespaceFacturXMP {
				continue
			}
			switch a.Key {
			case "DocumentType":
				docType = strings.TrimSpace(a.Value)
			case "ConformanceLevel":
				level = strings.TrimSpace(a.Value)
			}
		}
		if e.NamespaceURI() == NamespaceFacturXMP {
			switch e.Tag {
			case "DocumentType":
				docType = strings.TrimSpace(e.Text())
			case "ConformanceLevel":
				level = strings.TrimSpace(e.Text())
			}
		}
		for _, c := range e.ChildElements() {
			walk(c)
		}
	}
	if root := tree.Root(); root != nil {
		walk(root)
	}
	return docType, level
}
