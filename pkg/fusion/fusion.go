// Package fusion provides a public API for embedding Factur-X invoices into
// PDF documents.
//
// Example usage:
//
//	proc := fusion.NewDefaultProcessor()
//	pdf, err := proc.Generate(ctx, fusion.Input{
//	    PDF: pdfReader,
//	    XML: xmlReader,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("hybrid.pdf", pdf, 0o644)
package fusion

import (
	"github.com/rezonia/facturx-fusion/internal/facturx"
	"github.com/rezonia/facturx-fusion/internal/model"
)

// Re-export core types for public API
type (
	Attachment      = model.Attachment
	Summary         = facturx.Summary
	HybridInfo      = facturx.HybridInfo
	Report          = facturx.Report
	Profile         = facturx.Profile
	DecodeError     = model.DecodeError
	ValidationError = model.ValidationError
	GenerationError = model.GenerationError
	FileSystemError = model.FileSystemError
)

// Re-export profile constants
const (
	ProfileMinimum   = facturx.ProfileMinimum
	ProfileBasicWL   = facturx.ProfileBasicWL
	ProfileBasic     = facturx.ProfileBasic
	ProfileEN16931   = facturx.ProfileEN16931
	ProfileExtended  = facturx.ProfileExtended
	ProfileXRechnung = facturx.ProfileXRechnung
)

// ErrNoInvoice is returned by Inspect when the PDF carries no invoice XML
var ErrNoInvoice = facturx.ErrNoInvoice
