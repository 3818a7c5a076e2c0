package facturx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// Report is the outcome of validating one invoice XML
type Report struct {
	Profile    Profile  `json:"profile"`
	SchemaUsed string   `json:"schema_used,omitempty"`
	Errors     []string `json:"errors,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// Valid returns true if no error was recorded
func (r *Report) Valid() bool {
	return len(r.Errors) == 0
}

// AddError records a validation error
func (r *Report) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// AddWarning records a validation warning
func (r *Report) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Validator checks invoice XML structure and runs XSD validation through
// xmllint. Schemas come from the configured directory first and from the
// bundled set otherwise.
type Validator struct {
	schemaDir string
	bundled   bool
	lint      *XMLLint
}

// ValidatorOption configures a Validator
type ValidatorOption func(*Validator)

// WithSchemaDir sets the directory holding <profile>.xsd files
func WithSchemaDir(dir string) ValidatorOption {
	return func(v *Validator) {
		v.schemaDir = dir
	}
}

// WithXMLLint sets the xmllint wrapper
func WithXMLLint(x *XMLLint) ValidatorOption {
	return func(v *Validator) {
		v.lint = x
	}
}

// WithoutBundledSchemas restricts schema lookup to the schema directory
func WithoutBundledSchemas() ValidatorOption {
	return func(v *Validator) {
		v.bundled = false
	}
}

// NewValidator creates a validator using xmllint from PATH and the bundled
// schemas unless options say otherwise
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{bundled: true}
	for _, opt := range opts {
		opt(v)
	}
	if v.lint == nil {
		v.lint = NewXMLLint("")
	}
	return v
}

// XSDEnabled reports whether schema validation can run for profile p
func (v *Validator) XSDEnabled(p Profile) bool {
	if !v.lint.IsAvailable() {
		return false
	}
	_, err := v.schemaFor(p)
	return err == nil
}

// SchemaCoverage lists the known profiles that can be XSD validated
func (v *Validator) SchemaCoverage() []Profile {
	var covered []Profile
	for _, p := range Profiles {
		if v.XSDEnabled(p) {
			covered = append(covered, p)
		}
	}
	return covered
}

// schemaFor resolves the entry point schema for p
func (v *Validator) schemaFor(p Profile) (string, error) {
	if p == ProfileUnknown {
		return "", fmt.Errorf("%w: unknown profile", ErrNoSchema)
	}
	if v.schemaDir != "" {
		schema := filepath.Join(v.schemaDir, string(p)+".xsd")
		if _, err := os.Stat(schema); err == nil {
			return schema, nil
		}
	}
	if v.bundled && hasBundledSchema(p) {
		dir, err := bundledSchemaDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, string(p)+".xsd"), nil
	}
	return "", fmt.Errorf("%w %s", ErrNoSchema, p)
}

// Validate parses and validates data. Malformed XML is reported in the
// returned Report; the error is reserved for tool failures.
func (v *Validator) Validate(ctx context.Context, data []byte) (*Report, *Document, error) {
	doc, err := ParseInvoice(data)
	if err != nil {
		var xmlErr *XMLError
		if errors.As(err, &xmlErr) {
			report := &Report{}
			for _, p := range xmlErr.Problems {
				report.AddError(p)
			}
			if xmlErr.Cause != nil {
				report.AddError(xmlErr.Cause.Error())
			}
			return report, nil, nil
		}
		return nil, nil, err
	}

	report, err := v.ValidateDocument(ctx, doc)
	return report, doc, err
}

var issueDatePattern = regexp.MustCompile(`^\d{8}$`)

// ValidateDocument runs structural checks and XSD validation for reporting.
// When XSD validation cannot run the report carries a warning instead.
func (v *Validator) ValidateDocument(ctx context.Context, doc *Document) (*Report, error) {
	report := v.checkStructure(doc)
	if !doc.IsCrossIndustryInvoice() || doc.Profile == ProfileUnknown {
		return report, nil
	}

	err := v.validateSchema(ctx, doc, report)
	switch {
	case errors.Is(err, ErrNoSchema):
		report.AddWarning(fmt.Sprintf("XSD validation skipped: no schema for profile %s", doc.Profile))
	case errors.Is(err, ErrToolUnavailable):
		report.AddWarning("XSD validation skipped: xmllint not available")
	case err != nil:
		return report, err
	}
	return report, nil
}

// CheckDocument validates doc before it is embedded. Structural problems
// are reported first; a structurally sound document must then pass XSD
// validation, and an error wrapping ErrNoSchema or ErrToolUnavailable is
// returned when that cannot run.
func (v *Validator) CheckDocument(ctx context.Context, doc *Document) (*Report, error) {
	report := v.checkStructure(doc)
	if !report.Valid() {
		return report, nil
	}
	if err := v.validateSchema(ctx, doc, report); err != nil {
		return report, fmt.Errorf("XSD validation for profile %s: %w", doc.Profile, err)
	}
	return report, nil
}

func (v *Validator) checkStructure(doc *Document) *Report {
	report := &Report{Profile: doc.Profile}

	if !doc.IsCrossIndustryInvoice() {
		report.AddError(fmt.Sprintf("root element must be rsm:CrossIndustryInvoice in namespace %s, got %s", NamespaceRSM, doc.Root.FullTag()))
		return report
	}

	root := doc.Root
	if doc.Guideline == "" {
		report.AddError("missing ExchangedDocumentContext/GuidelineSpecifiedDocumentContextParameter/ID")
	} else if doc.Profile == ProfileUnknown {
		report.AddError(fmt.Sprintf("unknown Factur-X guideline %q", doc.Guideline))
	}

	if text(root, "ExchangedDocument", "ID") == "" {
		report.AddError("missing ExchangedDocument/ID (invoice number)")
	}
	if text(root, "ExchangedDocument", "TypeCode") == "" {
		report.AddError("missing ExchangedDocument/TypeCode")
	}

	dateEl := find(root, "ExchangedDocument", "IssueDateTime", "DateTimeString")
	switch {
	case dateEl == nil || text(dateEl) == "":
		report.AddError("missing ExchangedDocument/IssueDateTime/DateTimeString")
	case dateEl.SelectAttrValue("format", "") != "102":
		report.AddError("IssueDateTime/DateTimeString format must be 102")
	case !issueDatePattern.MatchString(text(dateEl)):
		report.AddError("IssueDateTime/DateTimeString must be YYYYMMDD")
	}

	if find(root, "SupplyChainTradeTransaction") == nil {
		report.AddError("missing SupplyChainTradeTransaction")
	} else {
		if text(root, under(pathAgreement, "SellerTradeParty", "Name")...) == "" {
			report.AddError("missing seller name")
		}
		if text(root, under(pathAgreement, "BuyerTradeParty", "Name")...) == "" {
			report.AddWarning("missing buyer name")
		}
		if text(root, under(pathSettlement, "InvoiceCurrencyCode")...) == "" {
			report.AddError("missing InvoiceCurrencyCode")
		}
		for _, tag := range []string{"TaxBasisTotalAmount", "GrandTotalAmount", "DuePayableAmount"} {
			if text(root, under(pathTotals, tag)...) == "" {
				report.AddError("missing monetary summation " + tag)
			}
		}
	}

	summary := Summarize(doc)
	report.Warnings = append(report.Warnings, summary.Warnings...)
	return report
}

func (v *Validator) validateSchema(ctx context.Context, doc *Document, report *Report) error {
	schema, err := v.schemaFor(doc.Profile)
	if err != nil {
		return err
	}
	if !v.lint.IsAvailable() {
		return ErrToolUnavailable
	}

	problems, err := v.lint.Validate(ctx, schema, doc.Raw)
	if err != nil {
		return err
	}
	report.SchemaUsed = schema
	for _, p := range problems {
		report.AddError(p)
	}
	return nil
}
