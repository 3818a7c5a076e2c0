package fixture_test

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/facturx-fusion/internal/fixture"
)

func TestMinimalPDF_XrefOffsets(t *testing.T) {
	pdf := fixture.MinimalPDF()

	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-1.7")))
	assert.True(t, bytes.HasSuffix(pdf, []byte("%%EOF\n")))

	entries := regexp.MustCompile(`(\d{10}) 00000 n \n`).FindAllSubmatch(pdf, -1)
	require.Len(t, entries, 5)
	for i, e := range entries {
		off, err := strconv.Atoi(string(e[1]))
		require.NoError(t, err)
		want := []byte(fmt.Sprintf("%d 0 obj", i+1))
		assert.True(t, bytes.HasPrefix(pdf[off:], want), "object %d offset %d", i+1, off)
	}

	m := regexp.MustCompile(`startxref\n(\d+)\n`).FindSubmatch(pdf)
	require.NotNil(t, m)
	off, err := strconv.Atoi(string(m[1]))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf[off:], []byte("xref\n")))
}

func TestInvoiceXML(t *testing.T) {
	xml := fixture.InvoiceXML("urn:cen.eu:en16931:2017", "F-42")
	assert.Contains(t, string(xml), "<ram:ID>F-42</ram:ID>")
	assert.Contains(t, string(xml), "urn:cen.eu:en16931:2017")
}
