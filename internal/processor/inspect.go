package processor

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/rezonia/facturx-fusion/internal/facturx"
	"github.com/rezonia/facturx-fusion/internal/logging"
	"github.com/rezonia/facturx-fusion/internal/model"
)

// Inspection describes the Factur-X content of a hybrid PDF
type Inspection struct {
	PageCount   int                 `json:"page_count"`
	XMLFilename string              `json:"xml_filename"`
	Attachments []string            `json:"attachments"`
	Hybrid      *facturx.HybridInfo `json:"hybrid,omitempty"`
	Summary     *facturx.Summary    `json:"summary,omitempty"`
	Report      *facturx.Report     `json:"validation"`
	XML         []byte              `json:"-"`
}

// Inspect extracts and validates the invoice embedded in pdf. A PDF without
// an embedded invoice is reported as a ValidationError.
func (p *Pipeline) Inspect(ctx context.Context, pdf []byte) (*Inspection, error) {
	if len(pdf) == 0 {
		return nil, model.NewDecodeError("pdf", "PDF content is empty", nil)
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	if err := p.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("wait for generation slot: %w", err)
	}
	defer p.slots.Release(1)

	ws, err := p.newWorkspace()
	if err != nil {
		return nil, err
	}
	defer ws.remove()

	in := ws.path(inputPDFName)
	if err := os.WriteFile(in, pdf, 0o600); err != nil {
		return nil, model.NewFileSystemError("write", in, err)
	}

	emb, err := p.generator.Extract(ctx, in, ws.dir)
	switch {
	case errors.Is(err, facturx.ErrNoInvoice):
		return nil, model.NewValidationError("", []string{facturx.ErrNoInvoice.Error()}, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	case err != nil:
		return nil, model.NewGenerationError("extract", "failed to read PDF", err)
	}

	report, doc, err := p.generator.Validator().Validate(ctx, emb.XML)
	if err != nil {
		return nil, model.NewGenerationError("validate", "failed to validate embedded XML", err)
	}

	result := &Inspection{
		PageCount:   emb.PageCount,
		XMLFilename: emb.XMLFilename,
		Attachments: emb.Attachments,
		Hybrid:      emb.Hybrid,
		Report:      report,
		XML:         emb.XML,
	}
	if result.Attachments == nil {
		result.Attachments = []string{}
	}
	if doc != nil {
		result.Summary = facturx.Summarize(doc)
	}

	logging.Info("Factur-X PDF inspected",
		"request_id", logging.RequestID(ctx),
		"pdf_size", humanize.Bytes(uint64(len(pdf))),
		"xml_filename", emb.XMLFilename,
		"profile", report.Profile.String(),
		"valid", report.Valid(),
	)
	return result, nil
}
