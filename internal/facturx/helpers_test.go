package facturx_test

import (
	"strings"
	"testing"

	"github.com/rezonia/facturx-fusion/internal/facturx"
	"github.com/rezonia/facturx-fusion/internal/fixture"
)

func replaceOnce(s, old, new string) string {
	return strings.Replace(s, old, new, 1)
}

func requireXMLLint(t *testing.T) *facturx.XMLLint {
	t.Helper()
	lint := facturx.NewXMLLint("")
	if !lint.IsAvailable() {
		t.Skip("xmllint not installed")
	}
	return lint
}

// schemaInvalidInvoice passes the structural checks but not the XSD
func schemaInvalidInvoice() []byte {
	return []byte(replaceOnce(string(fixture.MinimumInvoiceXML()),
		"</rsm:CrossIndustryInvoice>",
		"<rsm:NotInSchema>junk</rsm:NotInSchema>\n</rsm:CrossIndustryInvoice>"))
}
