package model

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FacturXFilename is the name under which the invoice XML is embedded.
// Attachments may not use it.
const FacturXFilename = "factur-x.xml"

// DefaultMaxAttachments is the attachment bound used when none is configured
const DefaultMaxAttachments = 3

// Attachment is an auxiliary file embedded next to the invoice XML
type Attachment struct {
	Name string
	Data []byte
}

// GenerationRequest is the normalized input of one hybrid PDF generation
type GenerationRequest struct {
	PDF         []byte
	XML         []byte
	Attachments []Attachment
	ValidateXML bool
}

// AttachmentNames returns the attachment names in request order
func (r *GenerationRequest) AttachmentNames() []string {
	names := make([]string, 0, len(r.Attachments))
	for _, a := range r.Attachments {
		names = append(names, a.Name)
	}
	return names
}

// AttachmentMap returns the attachments keyed by name
func (r *GenerationRequest) AttachmentMap() map[string][]byte {
	m := make(map[string][]byte, len(r.Attachments))
	for _, a := range r.Attachments {
		m[a.Name] = a.Data
	}
	return m
}

// Validate checks the request invariants. A negative maxAttachments disables
// the attachment bound.
func (r *GenerationRequest) Validate(maxAttachments int) error {
	if len(r.PDF) == 0 {
		return NewDecodeError("pdf", "PDF content is empty", nil)
	}
	if len(r.XML) == 0 {
		return NewDecodeError("xml", "XML content is empty", nil)
	}
	if maxAttachments >= 0 && len(r.Attachments) > maxAttachments {
		return NewDecodeError("attachments",
			fmt.Sprintf("too many attachments: %d (max %d)", len(r.Attachments), maxAttachments), nil)
	}

	seen := make(map[string]struct{}, len(r.Attachments))
	for i, a := range r.Attachments {
		field := fmt.Sprintf("attachments[%d]", i)
		if err := ValidateAttachmentName(a.Name); err != nil {
			return NewDecodeError(field, err.Error(), nil)
		}
		if _, dup := seen[a.Name]; dup {
			return NewDecodeError(field, fmt.Sprintf("duplicate attachment name %q", a.Name), nil)
		}
		seen[a.Name] = struct{}{}
	}
	return nil
}

// ValidateAttachmentName checks that name can be used as an embedded file name
func ValidateAttachmentName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("attachment name is empty")
	case name == "." || name == "..":
		return fmt.Errorf("invalid attachment name %q", name)
	case strings.ContainsAny(name, `/\`) || filepath.Base(name) != name:
		return fmt.Errorf("attachment name %q must not contain a path", name)
	case strings.EqualFold(name, FacturXFilename):
		return fmt.Errorf("attachment name %q is reserved for the invoice XML", name)
	}
	return nil
}
