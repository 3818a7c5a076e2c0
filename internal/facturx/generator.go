package facturx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// XMLFilename is the embedded file name of the invoice XML
const XMLFilename = "factur-x.xml"

// Legacy names used by ZUGFeRD and XRechnung producers
var invoiceFilenames = []string{XMLFilename, "zugferd-invoice.xml", "ZUGFeRD-invoice.xml", "xrechnung.xml"}

var disableConfigDir sync.Once

// Generator produces hybrid Factur-X PDFs with pdfcpu
type Generator struct {
	validator *Validator
}

// NewGenerator creates a generator. A nil validator performs structural
// checks only.
func NewGenerator(v *Validator) *Generator {
	// pdfcpu would otherwise create a config dir under the user's home
	disableConfigDir.Do(api.DisableConfigDir)
	if v == nil {
		v = NewValidator()
	}
	return &Generator{validator: v}
}

// Validator returns the XML validator used by the generator
func (g *Generator) Validator() *Validator {
	return g.validator
}

// newConf returns a fresh configuration; pdfcpu mutates it per command
func newConf() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// GenerateFromFile embeds xmlData and attachments into the PDF at inputPDF
// and writes the hybrid document to outputPDF. With checkXSD the XML must
// pass structural and XSD validation first, and validation that cannot run
// is an error. XML problems are returned as *XMLError.
func (g *Generator) GenerateFromFile(ctx context.Context, inputPDF string, xmlData []byte, outputPDF string, attachments map[string][]byte, checkXSD bool) error {
	doc, err := ParseInvoice(xmlData)
	if err != nil {
		return err
	}

	if checkXSD {
		report, err := g.validator.CheckDocument(ctx, doc)
		if err != nil {
			return fmt.Errorf("validate XML: %w", err)
		}
		if !report.Valid() {
			return &XMLError{Profile: doc.Profile, Problems: report.Errors}
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	names := make([]string, 0, len(attachments))
	for name := range attachments {
		if name != filepath.Base(name) || strings.EqualFold(name, XMLFilename) {
			return fmt.Errorf("invalid attachment name %q", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	files := make([]embeddedFile, 0, len(names)+1)
	files = append(files, embeddedFile{
		name:         XMLFilename,
		desc:         invoiceDescription,
		mediaType:    invoiceMediaType,
		relationship: RelationshipData,
		data:         xmlData,
	})
	for _, name := range names {
		files = append(files, embeddedFile{
			name:         name,
			mediaType:    mediaType(attachments[name]),
			relationship: RelationshipSupplement,
			data:         attachments[name],
		})
	}

	if err := writeHybrid(inputPDF, outputPDF, doc.Profile, files); err != nil {
		return fmt.Errorf("embed attachments: %w", err)
	}
	return nil
}

// Embedded describes the files found inside a hybrid PDF
type Embedded struct {
	XML         []byte
	XMLFilename string
	Attachments []string
	PageCount   int
	Hybrid      *HybridInfo
}

// Extract reads the embedded invoice XML and attachment names from the PDF
// at pdfPath. Scratch files are created under scratchDir and removed before
// returning.
func (g *Generator) Extract(ctx context.Context, pdfPath, scratchDir string) (*Embedded, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pages, err := api.PageCountFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("read PDF: %w", err)
	}

	outDir, err := os.MkdirTemp(scratchDir, "fx-api-extract-")
	if err != nil {
		return nil, fmt.Errorf("create extract dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	emb := &Embedded{PageCount: pages}

	// pdfcpu reports a readable PDF without an EmbeddedFiles tree as an error
	if err := api.ExtractAttachmentsFile(pdfPath, outDir, nil, newConf()); err != nil {
		return emb, fmt.Errorf("%w: %v", ErrNoInvoice, err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("list extracted attachments: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if emb.XMLFilename == "" && isInvoiceFilename(e.Name()) {
			data, err := os.ReadFile(filepath.Join(outDir, e.Name()))
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", e.Name(), err)
			}
			emb.XML = data
			emb.XMLFilename = e.Name()
			continue
		}
		emb.Attachments = append(emb.Attachments, e.Name())
	}

	if emb.XMLFilename == "" {
		return emb, ErrNoInvoice
	}

	// legacy ZUGFeRD files may carry malformed /AF entries
	if info, err := ReadHybridInfo(pdfPath); err == nil {
		emb.Hybrid = info
	}
	return emb, nil
}

func isInvoiceFilename(name string) bool {
	for _, n := range invoiceFilenames {
		if strings.EqualFold(name, n) {
			return true
		}
	}
	return false
}

// IsXMLError reports whether err was caused by the invoice XML
func IsXMLError(err error) bool {
	var xmlErr *XMLError
	return errors.As(err, &xmlErr)
}
