package fusion

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rezonia/facturx-fusion/internal/facturx"
	"github.com/rezonia/facturx-fusion/internal/model"
	"github.com/rezonia/facturx-fusion/internal/processor"
)

// Options configures a Processor
type Options struct {
	// TempDir is the root for per-call workspaces. Empty uses os.TempDir.
	TempDir string
	// MaxAttachments bounds attachments per call. Negative disables the bound.
	MaxAttachments int
	// MaxConcurrent bounds simultaneous generations
	MaxConcurrent int
	// Timeout bounds a single call. Zero disables it.
	Timeout time.Duration
	// SchemaDir holds <profile>.xsd files for XSD validation via xmllint.
	// They take precedence over the bundled schemas.
	SchemaDir string
	// XMLLintPath overrides xmllint discovery
	XMLLintPath string
}

// DefaultOptions returns the options used by NewDefaultProcessor
func DefaultOptions() Options {
	return Options{
		TempDir:        os.TempDir(),
		MaxAttachments: model.DefaultMaxAttachments,
		MaxConcurrent:  2,
		Timeout:        2 * time.Minute,
	}
}

// Input is one generation call
type Input struct {
	PDF         io.Reader
	XML         io.Reader
	Attachments []Attachment
	// ValidateXML runs structural and XSD checks before embedding
	ValidateXML bool
}

// Inspection describes the invoice embedded in a hybrid PDF
type Inspection struct {
	PageCount   int
	XMLFilename string
	XML         []byte
	Attachments []string
	Hybrid      *HybridInfo
	Summary     *Summary
	Report      *Report
}

// Processor generates and inspects Factur-X PDFs
type Processor struct {
	pipeline *processor.Pipeline
}

// NewProcessor creates a processor with the given options
func NewProcessor(opts Options) *Processor {
	validator := facturx.NewValidator(
		facturx.WithSchemaDir(opts.SchemaDir),
		facturx.WithXMLLint(facturx.NewXMLLint(opts.XMLLintPath)),
	)

	pipelineOpts := []processor.Option{
		processor.WithGenerator(facturx.NewGenerator(validator)),
		processor.WithMaxAttachments(opts.MaxAttachments),
		processor.WithConcurrency(opts.MaxConcurrent),
		processor.WithTimeout(opts.Timeout),
	}
	if opts.TempDir != "" {
		pipelineOpts = append(pipelineOpts, processor.WithTempDir(opts.TempDir))
	}

	return &Processor{pipeline: processor.NewPipeline(pipelineOpts...)}
}

// NewDefaultProcessor creates a processor with default options
func NewDefaultProcessor() *Processor {
	return NewProcessor(DefaultOptions())
}

// Generate returns the hybrid PDF built from in
func (p *Processor) Generate(ctx context.Context, in Input) ([]byte, error) {
	req := &model.GenerationRequest{
		Attachments: in.Attachments,
		ValidateXML: in.ValidateXML,
	}

	var err error
	if req.PDF, err = readAll("pdf", in.PDF); err != nil {
		return nil, err
	}
	if req.XML, err = readAll("xml", in.XML); err != nil {
		return nil, err
	}

	res, err := p.pipeline.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return res.Bytes()
}

// Inspect extracts and validates the invoice embedded in the PDF read from r
func (p *Processor) Inspect(ctx context.Context, r io.Reader) (*Inspection, error) {
	pdf, err := readAll("pdf", r)
	if err != nil {
		return nil, err
	}

	insp, err := p.pipeline.Inspect(ctx, pdf)
	if err != nil {
		return nil, err
	}
	return &Inspection{
		PageCount:   insp.PageCount,
		XMLFilename: insp.XMLFilename,
		XML:         insp.XML,
		Attachments: insp.Attachments,
		Hybrid:      insp.Hybrid,
		Summary:     insp.Summary,
		Report:      insp.Report,
	}, nil
}

func readAll(field string, r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, model.NewDecodeError(field, "input is missing", nil)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, model.NewDecodeError(field, "failed to read input", err)
	}
	return data, nil
}
