package facturx_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/facturx-fusion/internal/facturx"
	"github.com/rezonia/facturx-fusion/internal/fixture"
)

func TestValidate_ValidMinimum(t *testing.T) {
	v := facturx.NewValidator(facturx.WithXMLLint(&facturx.XMLLint{}))

	report, doc, err := v.Validate(context.Background(), fixture.MinimumInvoiceXML())
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.True(t, report.Valid(), "errors: %v", report.Errors)
	assert.Equal(t, facturx.ProfileMinimum, report.Profile)
	assert.Empty(t, report.SchemaUsed)
}

func TestValidate_BundledSchema(t *testing.T) {
	lint := requireXMLLint(t)
	v := facturx.NewValidator(facturx.WithXMLLint(lint))
	require.True(t, v.XSDEnabled(facturx.ProfileMinimum))

	report, _, err := v.Validate(context.Background(), fixture.MinimumInvoiceXML())
	require.NoError(t, err)
	assert.True(t, report.Valid(), "errors: %v", report.Errors)
	assert.Equal(t, "minimum.xsd", filepath.Base(report.SchemaUsed))
	assert.Empty(t, report.Warnings)
}

func TestValidate_BundledSchemaRejectsUnknownElement(t *testing.T) {
	lint := requireXMLLint(t)
	v := facturx.NewValidator(facturx.WithXMLLint(lint))

	report, _, err := v.Validate(context.Background(), schemaInvalidInvoice())
	require.NoError(t, err)
	require.False(t, report.Valid())
	assert.Contains(t, strings.Join(report.Errors, "\n"), "NotInSchema")
}

func TestCheckDocument_SchemaInvalid(t *testing.T) {
	lint := requireXMLLint(t)
	v := facturx.NewValidator(facturx.WithXMLLint(lint))
	doc, err := facturx.ParseInvoice(schemaInvalidInvoice())
	require.NoError(t, err)

	report, err := v.CheckDocument(context.Background(), doc)
	require.NoError(t, err)
	assert.False(t, report.Valid())
}

func TestCheckDocument_StructuralErrorsSkipSchema(t *testing.T) {
	v := facturx.NewValidator(facturx.WithXMLLint(&facturx.XMLLint{}))
	doc, err := facturx.ParseInvoice(fixture.IncompleteInvoiceXML())
	require.NoError(t, err)

	report, err := v.CheckDocument(context.Background(), doc)
	require.NoError(t, err)
	assert.False(t, report.Valid())
	assert.Empty(t, report.SchemaUsed)
}

func TestCheckDocument_FailsClosed(t *testing.T) {
	tests := []struct {
		name    string
		v       *facturx.Validator
		xml     []byte
		wantErr error
	}{
		{
			name:    "xmllint missing",
			v:       facturx.NewValidator(facturx.WithXMLLint(&facturx.XMLLint{})),
			xml:     fixture.MinimumInvoiceXML(),
			wantErr: facturx.ErrToolUnavailable,
		},
		{
			name:    "no schema for profile",
			v:       facturx.NewValidator(facturx.WithSchemaDir(t.TempDir()), facturx.WithoutBundledSchemas()),
			xml:     fixture.MinimumInvoiceXML(),
			wantErr: facturx.ErrNoSchema,
		},
		{
			name:    "profile without bundled schema",
			v:       facturx.NewValidator(),
			xml:     fixture.InvoiceXML("urn:cen.eu:en16931:2017", "F-1"),
			wantErr: facturx.ErrNoSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := facturx.ParseInvoice(tt.xml)
			require.NoError(t, err)

			_, err = tt.v.CheckDocument(context.Background(), doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidator_SchemaCoverage(t *testing.T) {
	assert.Empty(t, facturx.NewValidator(facturx.WithXMLLint(&facturx.XMLLint{})).SchemaCoverage())

	lint := requireXMLLint(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en16931.xsd"), []byte("<xs:schema xmlns:xs=\"http://www.w3.org/2001/XMLSchema\"/>"), 0o644))

	v := facturx.NewValidator(facturx.WithSchemaDir(dir), facturx.WithXMLLint(lint))
	assert.Equal(t, []facturx.Profile{facturx.ProfileMinimum, facturx.ProfileEN16931}, v.SchemaCoverage())
	assert.False(t, v.XSDEnabled(facturx.ProfileUnknown))
}

func TestValidate_Incomplete(t *testing.T) {
	v := facturx.NewValidator()

	report, _, err := v.Validate(context.Background(), fixture.IncompleteInvoiceXML())
	require.NoError(t, err)

	assert.False(t, report.Valid())
	assert.Contains(t, report.Errors, "missing ExchangedDocument/ID (invoice number)")
	assert.Contains(t, report.Errors, "missing ExchangedDocument/TypeCode")
	assert.Contains(t, report.Errors, "missing SupplyChainTradeTransaction")
}

func TestValidate_Malformed(t *testing.T) {
	v := facturx.NewValidator()

	report, doc, err := v.Validate(context.Background(), fixture.MalformedXML())
	require.NoError(t, err)
	assert.Nil(t, doc)
	assert.False(t, report.Valid())
	assert.Equal(t, "XML is not well-formed", report.Errors[0])
}

func TestValidate_WrongRoot(t *testing.T) {
	v := facturx.NewValidator()

	report, _, err := v.Validate(context.Background(), []byte(`<Invoice><ID>1</ID></Invoice>`))
	require.NoError(t, err)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "root element must be rsm:CrossIndustryInvoice")
}

func TestValidate_UnknownGuideline(t *testing.T) {
	v := facturx.NewValidator()

	report, _, err := v.Validate(context.Background(), fixture.InvoiceXML("urn:example:custom", "X-1"))
	require.NoError(t, err)
	assert.Contains(t, report.Errors, `unknown Factur-X guideline "urn:example:custom"`)
}

func TestValidate_BadIssueDate(t *testing.T) {
	v := facturx.NewValidator()
	xml := replaceOnce(string(fixture.MinimumInvoiceXML()), ">20261019<", ">2026-10-19<")

	report, _, err := v.Validate(context.Background(), []byte(xml))
	require.NoError(t, err)
	assert.Contains(t, report.Errors, "IssueDateTime/DateTimeString must be YYYYMMDD")
}

func TestValidate_SchemaDirWithoutTool(t *testing.T) {
	v := facturx.NewValidator(
		facturx.WithSchemaDir(t.TempDir()),
		facturx.WithXMLLint(&facturx.XMLLint{}),
	)

	report, _, err := v.Validate(context.Background(), fixture.MinimumInvoiceXML())
	require.NoError(t, err)
	assert.True(t, report.Valid())
	assert.Contains(t, report.Warnings, "XSD validation skipped: xmllint not available")
	assert.False(t, v.XSDEnabled(facturx.ProfileMinimum))
}

func TestValidate_XSDWithXMLLint(t *testing.T) {
	lint := requireXMLLint(t)

	dir := t.TempDir()
	// Accepts only an element named Other, so every invoice fails
	xsd := `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100">
  <xs:element name="Other" type="xs:string"/>
</xs:schema>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "minimum.xsd"), []byte(xsd), 0o644))

	v := facturx.NewValidator(facturx.WithSchemaDir(dir), facturx.WithXMLLint(lint))
	require.True(t, v.XSDEnabled(facturx.ProfileMinimum))

	report, _, err := v.Validate(context.Background(), fixture.MinimumInvoiceXML())
	require.NoError(t, err)
	assert.False(t, report.Valid())
	assert.Equal(t, filepath.Join(dir, "minimum.xsd"), report.SchemaUsed)
}

func TestValidate_MissingSchemaForProfile(t *testing.T) {
	lint := requireXMLLint(t)

	v := facturx.NewValidator(facturx.WithSchemaDir(t.TempDir()), facturx.WithXMLLint(lint), facturx.WithoutBundledSchemas())
	report, _, err := v.Validate(context.Background(), fixture.MinimumInvoiceXML())
	require.NoError(t, err)
	assert.True(t, report.Valid())
	assert.Contains(t, report.Warnings, "XSD validation skipped: no schema for profile minimum")
}
