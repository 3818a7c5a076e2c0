// Package processor runs Factur-X generation and inspection inside
// request-scoped temporary workspaces.
package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/semaphore"

	"github.com/rezonia/facturx-fusion/internal/facturx"
	"github.com/rezonia/facturx-fusion/internal/logging"
	"github.com/rezonia/facturx-fusion/internal/model"
)

// Workspace file names
const (
	workspacePrefix = "fx-api-"
	inputPDFName    = "fx-api-inpdf.pdf"
	outputPDFName   = "fx-api-outpdf.pdf"
)

// Pipeline orchestrates hybrid PDF generation
type Pipeline struct {
	generator      *facturx.Generator
	tempDir        string
	maxAttachments int
	slots          *semaphore.Weighted
	timeout        time.Duration
}

// Option configures the pipeline
type Option func(*Pipeline)

// WithGenerator sets the hybrid PDF generator
func WithGenerator(g *facturx.Generator) Option {
	return func(p *Pipeline) {
		p.generator = g
	}
}

// WithTempDir sets the root under which request workspaces are created
func WithTempDir(dir string) Option {
	return func(p *Pipeline) {
		p.tempDir = dir
	}
}

// WithMaxAttachments sets the attachment bound. Negative disables it.
func WithMaxAttachments(n int) Option {
	return func(p *Pipeline) {
		p.maxAttachments = n
	}
}

// WithConcurrency bounds the number of simultaneous generations
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.slots = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithTimeout bounds a single generation, including the wait for a slot
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		p.timeout = d
	}
}

// NewPipeline creates a new processing pipeline
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		tempDir:        os.TempDir(),
		maxAttachments: model.DefaultMaxAttachments,
		slots:          semaphore.NewWeighted(int64(max(2, runtime.GOMAXPROCS(0)*2))),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.generator == nil {
		p.generator = facturx.NewGenerator(nil)
	}
	return p
}

// Generator returns the underlying generator
func (p *Pipeline) Generator() *facturx.Generator {
	return p.generator
}

// Generate embeds req.XML and the attachments into req.PDF. The returned
// Result owns the output file and must be closed by the caller.
func (p *Pipeline) Generate(ctx context.Context, req *model.GenerationRequest) (*Result, error) {
	if req == nil {
		return nil, model.NewDecodeError("request", "request is empty", nil)
	}
	if err := req.Validate(p.maxAttachments); err != nil {
		return nil, err
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	reqID := logging.RequestID(ctx)
	logging.Debug("Generating Factur-X PDF",
		"request_id", reqID,
		"pdf_size", humanize.Bytes(uint64(len(req.PDF))),
		"xml_size", humanize.Bytes(uint64(len(req.XML))),
		"attachments", req.AttachmentNames(),
		"xml_check", req.ValidateXML,
		"profile", facturx.DetectProfile(req.XML).String(),
	)

	if err := p.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("wait for generation slot: %w", err)
	}
	defer p.slots.Release(1)

	ws, err := p.newWorkspace()
	if err != nil {
		return nil, err
	}
	keep := false
	defer func() {
		if !keep {
			ws.remove()
		}
	}()

	in := ws.path(inputPDFName)
	if err := os.WriteFile(in, req.PDF, 0o600); err != nil {
		return nil, model.NewFileSystemError("write", in, err)
	}
	out := ws.path(outputPDFName)

	err = p.generator.GenerateFromFile(ctx, in, req.XML, out, req.AttachmentMap(), req.ValidateXML)
	if err != nil {
		err = classify(ctx, err)
		logging.Warn("Factur-X generation failed", "request_id", reqID, "error", err)
		return nil, err
	}

	if err := os.Remove(in); err != nil {
		logging.Warn("Failed to remove input PDF", "request_id", reqID, "path", in, "error", err)
	}

	info, err := os.Stat(out)
	if err != nil {
		return nil, model.NewFileSystemError("stat", out, err)
	}

	keep = true
	logging.Info("Factur-X PDF generated",
		"request_id", reqID,
		"output_size", humanize.Bytes(uint64(info.Size())),
		"attachments", len(req.Attachments),
		"duration", time.Since(start).String(),
	)
	return &Result{dir: ws.dir, path: out, size: info.Size()}, nil
}

// classify maps generator failures onto the API error kinds. Context errors
// pass through unchanged.
func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ctx.Err(), err)
	}

	if facturx.IsXMLError(err) {
		var xmlErr *facturx.XMLError
		errors.As(err, &xmlErr)
		problems := xmlErr.Problems
		if len(problems) == 0 {
			problems = []string{xmlErr.Error()}
		}
		return model.NewValidationError(string(xmlErr.Profile), problems, xmlErr.Cause)
	}
	// validation was requested and must not be skipped
	if errors.Is(err, facturx.ErrNoSchema) || errors.Is(err, facturx.ErrToolUnavailable) {
		return model.NewGenerationError("validate", "XML validation requested but XSD validation cannot run", err)
	}
	return model.NewGenerationError("embed", "failed to generate Factur-X PDF", err)
}

func (p *Pipeline) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout > 0 {
		return context.WithTimeout(ctx, p.timeout)
	}
	return context.WithCancel(ctx)
}

type workspace struct {
	dir string
}

func (p *Pipeline) newWorkspace() (*workspace, error) {
	dir, err := os.MkdirTemp(p.tempDir, workspacePrefix)
	if err != nil {
		return nil, model.NewFileSystemError("create", p.tempDir, err)
	}
	return &workspace{dir: dir}, nil
}

func (w *workspace) path(name string) string {
	return filepath.Join(w.dir, name)
}

func (w *workspace) remove() {
	if err := os.RemoveAll(w.dir); err != nil {
		logging.Error("Failed to remove workspace", "path", w.dir, "error", err)
	}
}
