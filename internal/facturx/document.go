package facturx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/beevik/etree"
)

// CII namespaces
const (
	NamespaceRSM = "urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"
	NamespaceRAM = "urn:un:unece:uncefact:data:standard:ReusableAggregateBusinessInformationEntity:100"
)

// Document is a parsed invoice XML
type Document struct {
	Raw       []byte
	Tree      *etree.Document
	Root      *etree.Element
	Guideline string
	Profile   Profile
}

// ParseInvoice parses invoice XML and detects its profile. Malformed XML
// returns an *XMLError.
func ParseInvoice(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &XMLError{Problems: []string{"XML content is empty"}}
	}
	if err := checkWellFormed(data); err != nil {
		return nil, &XMLError{Problems: []string{"XML is not well-formed"}, Cause: err}
	}

	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(data); err != nil {
		return nil, &XMLError{Problems: []string{"XML is not well-formed"}, Cause: err}
	}
	root := tree.Root()
	if root == nil {
		return nil, &XMLError{Problems: []string{"XML has no root element"}}
	}

	doc := &Document{
		Raw:  data,
		Tree: tree,
		Root: root,
	}
	doc.Guideline = text(root, "ExchangedDocumentContext", "GuidelineSpecifiedDocumentContextParameter", "ID")
	doc.Profile = ProfileFromGuideline(doc.Guideline)
	return doc, nil
}

// IsCrossIndustryInvoice reports whether the root is rsm:CrossIndustryInvoice
func (d *Document) IsCrossIndustryInvoice() bool {
	return d.Root.Tag == "CrossIndustryInvoice" && d.Root.NamespaceURI() == NamespaceRSM
}

// checkWellFormed walks every token so mismatched or unclosed elements are
// reported, which etree's raw tokenizer tolerates.
func checkWellFormed(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	sawRoot := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			if !sawRoot {
				return errors.New("no root element")
			}
			return nil
		}
		if err != nil {
			return err
		}
		if _, ok := tok.(xml.StartElement); ok {
			sawRoot = true
		}
	}
}

// find walks child elements by local name
func find(e *etree.Element, path ...string) *etree.Element {
	cur := e
	for _, tag := range path {
		if cur == nil {
			return nil
		}
		var next *etree.Element
		for _, c := range cur.ChildElements() {
			if c.Tag == tag {
				next = c
				break
			}
		}
		cur = next
	}
	return cur
}

func text(e *etree.Element, path ...string) string {
	el := find(e, path...)
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

// DetectProfile returns the profile declared by data, or ProfileUnknown when
// it cannot be parsed
func DetectProfile(data []byte) Profile {
	doc, err := ParseInvoice(data)
	if err != nil {
		return ProfileUnknown
	}
	return doc.Profile
}
