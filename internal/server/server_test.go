package server_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/facturx-fusion/internal/config"
	"github.com/rezonia/facturx-fusion/internal/facturx"
	"github.com/rezonia/facturx-fusion/internal/fixture"
	"github.com/rezonia/facturx-fusion/internal/processor"
	"github.com/rezonia/facturx-fusion/internal/server"
)

type testServer struct {
	*server.Server
	tempDir string
}

func newTestServer(t *testing.T, mutate ...func(*server.Config)) *testServer {
	t.Helper()
	dir := t.TempDir()
	cfg := &server.Config{
		Address:         ":0",
		V1Response:      config.ResponseJSON,
		MaxRequestBytes: 8 << 20,
	}
	for _, m := range mutate {
		m(cfg)
	}
	p := processor.NewPipeline(processor.WithTempDir(dir), processor.WithMaxAttachments(3))
	return &testServer{Server: server.NewServer(cfg, server.WithPipeline(p)), tempDir: dir}
}

func newValidatingServer(t *testing.T, v *facturx.Validator) *testServer {
	t.Helper()
	dir := t.TempDir()
	cfg := &server.Config{
		Address:         ":0",
		V1Response:      config.ResponseJSON,
		MaxRequestBytes: 8 << 20,
	}
	p := processor.NewPipeline(
		processor.WithTempDir(dir),
		processor.WithGenerator(facturx.NewGenerator(v)),
	)
	return &testServer{Server: server.NewServer(cfg, server.WithPipeline(p)), tempDir: dir}
}

func requireXMLLint(t *testing.T) *facturx.XMLLint {
	t.Helper()
	lint := facturx.NewXMLLint("")
	if !lint.IsAvailable() {
		t.Skip("xmllint not installed")
	}
	return lint
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func (s *testServer) assertTempClean(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(s.tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary files left behind")
}

func b64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func v1Body(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func v1Request(t *testing.T, body any) *http.Request {
	req := httptest.NewRequest(http.MethodPost, server.V1Generate, v1Body(t, body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func validV1() map[string]any {
	return map[string]any{
		"pdf":      map[string]string{"base64EncodedByteArrayData": b64(fixture.MinimalPDF())},
		"xml":      map[string]string{"base64EncodedByteArrayData": b64(fixture.MinimumInvoiceXML())},
		"checkXml": false,
	}
}

type part struct {
	field, filename string
	data            []byte
}

func multipartRequest(t *testing.T, target string, parts ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.field, p.filename)
		require.NoError(t, err)
		_, err = fw.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) server.ErrorResponse {
	t.Helper()
	var resp server.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func assertPDF(t *testing.T, data []byte) {
	t.Helper()
	require.NotEmpty(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Contains(t, string(data[max(0, len(data)-32):]), "%%EOF")
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(httptest.NewRequest(http.MethodGet, server.HealthPath, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `"Healthy"`, w.Body.String())
}

func TestRequestID(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(httptest.NewRequest(http.MethodGet, server.HealthPath, nil))
	assert.NotEmpty(t, w.Header().Get(server.HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, server.HealthPath, nil)
	req.Header.Set(server.HeaderRequestID, "client-supplied")
	w = srv.do(req)
	assert.Equal(t, "client-supplied", w.Header().Get(server.HeaderRequestID))
}

func TestGenerateV1(t *testing.T) {
	srv := newTestServer(t)

	body := validV1()
	body["licence"] = "ignored"
	body["folderId"] = "42"
	w := srv.do(v1Request(t, body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp server.GenerateV1Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.ReturnCode)
	assert.Equal(t, "factur-x generated", resp.Output)

	pdf, err := base64.StdEncoding.DecodeString(resp.PDFOut.Base64EncodedByteArrayData)
	require.NoError(t, err)
	assertPDF(t, pdf)
	srv.assertTempClean(t)

	// The embedded invoice is recoverable
	w = srv.do(multipartRequest(t, server.V1Inspect, part{"pdfFile", "out.pdf", pdf}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var insp server.InspectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &insp))
	assert.Equal(t, "factur-x.xml", insp.XMLFilename)
	assert.Equal(t, string(fixture.MinimumInvoiceXML()), insp.XML)
	assert.Equal(t, 1, insp.PageCount)
	srv.assertTempClean(t)
}

func TestGenerateV1_WithAttachments(t *testing.T) {
	srv := newTestServer(t)

	body := validV1()
	body["pJDto"] = []map[string]any{
		{"name": "terms.txt", "file": map[string]string{"base64EncodedByteArrayData": b64([]byte("net 30"))}},
		{"name": "po.csv", "file": map[string]string{"base64EncodedByteArrayData": b64([]byte("po,1"))}},
	}
	w := srv.do(v1Request(t, body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp server.GenerateV1Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	pdf, err := base64.StdEncoding.DecodeString(resp.PDFOut.Base64EncodedByteArrayData)
	require.NoError(t, err)

	w = srv.do(multipartRequest(t, server.V1Inspect, part{"pdfFile", "out.pdf", pdf}))
	require.Equal(t, http.StatusOK, w.Code)
	var insp server.InspectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &insp))
	assert.ElementsMatch(t, []string{"terms.txt", "po.csv"}, insp.Attachments)
	srv.assertTempClean(t)
}

func TestGenerateV1_Idempotent(t *testing.T) {
	srv := newTestServer(t)

	var xmls []string
	for i := 0; i < 2; i++ {
		w := srv.do(v1Request(t, validV1()))
		require.Equal(t, http.StatusOK, w.Code)

		var resp server.GenerateV1Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		pdf, err := base64.StdEncoding.DecodeString(resp.PDFOut.Base64EncodedByteArrayData)
		require.NoError(t, err)

		w = srv.do(multipartRequest(t, server.V1Inspect, part{"pdfFile", "out.pdf", pdf}))
		require.Equal(t, http.StatusOK, w.Code)
		var insp server.InspectResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &insp))
		xmls = append(xmls, insp.XML)
	}
	assert.Equal(t, xmls[0], xmls[1])
	srv.assertTempClean(t)
}

func TestGenerateV1_InvalidXMLWithCheck(t *testing.T) {
	srv := newTestServer(t)

	body := validV1()
	body["xml"] = map[string]string{"base64EncodedByteArrayData": b64(fixture.IncompleteInvoiceXML())}
	body["checkXml"] = true
	w := srv.do(v1Request(t, body))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
	assert.NotEmpty(t, resp.Details)
	assert.NotContains(t, w.Body.String(), "pdfOut")
	srv.assertTempClean(t)
}

func TestGenerateV1_SchemaInvalidXML(t *testing.T) {
	srv := newValidatingServer(t, facturx.NewValidator(facturx.WithXMLLint(requireXMLLint(t))))

	// structurally complete, but NotInSchema is not allowed by the XSD
	xml := strings.Replace(string(fixture.MinimumInvoiceXML()),
		"</rsm:CrossIndustryInvoice>",
		"<rsm:NotInSchema>junk</rsm:NotInSchema>\n</rsm:CrossIndustryInvoice>", 1)
	body := validV1()
	body["xml"] = map[string]string{"base64EncodedByteArrayData": b64([]byte(xml))}
	body["checkXml"] = true
	w := srv.do(v1Request(t, body))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
	assert.Contains(t, strings.Join(resp.Details, "\n"), "NotInSchema")
	srv.assertTempClean(t)

	body["checkXml"] = false
	w = srv.do(v1Request(t, body))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestGenerateV1_CheckedValidXML(t *testing.T) {
	srv := newValidatingServer(t, facturx.NewValidator(facturx.WithXMLLint(requireXMLLint(t))))

	body := validV1()
	body["checkXml"] = true
	w := srv.do(v1Request(t, body))

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	srv.assertTempClean(t)
}

func TestGenerateV1_CheckWithoutXMLLint(t *testing.T) {
	srv := newValidatingServer(t, facturx.NewValidator(facturx.WithXMLLint(&facturx.XMLLint{})))

	body := validV1()
	body["checkXml"] = true
	w := srv.do(v1Request(t, body))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "GENERATION_ERROR", decodeError(t, w).Code)
	assert.NotContains(t, w.Body.String(), "pdfOut")
	srv.assertTempClean(t)
}

func TestGenerateV1_MalformedXML(t *testing.T) {
	srv := newTestServer(t)

	body := validV1()
	body["xml"] = map[string]string{"base64EncodedByteArrayData": b64(fixture.MalformedXML())}
	w := srv.do(v1Request(t, body))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	srv.assertTempClean(t)
}

func TestGenerateV1_CorruptPDF(t *testing.T) {
	srv := newTestServer(t)

	body := validV1()
	body["pdf"] = map[string]string{"base64EncodedByteArrayData": b64([]byte("not a pdf at all"))}
	w := srv.do(v1Request(t, body))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "GENERATION_ERROR", decodeError(t, w).Code)
	srv.assertTempClean(t)
}

func TestGenerateV1_DecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  func() map[string]any
		field string
	}{
		{
			name: "missing pdf",
			body: func() map[string]any {
				b := validV1()
				delete(b, "pdf")
				return b
			},
			field: "pdf.base64EncodedByteArrayData",
		},
		{
			name: "invalid xml base64",
			body: func() map[string]any {
				b := validV1()
				b["xml"] = map[string]string{"base64EncodedByteArrayData": "%%%not-base64"}
				return b
			},
			field: "xml.base64EncodedByteArrayData",
		},
		{
			name: "invalid attachment base64",
			body: func() map[string]any {
				b := validV1()
				b["pJDto"] = []map[string]any{
					{"name": "a.txt", "file": map[string]string{"base64EncodedByteArrayData": b64([]byte("a"))}},
					{"name": "b.txt", "file": map[string]string{"base64EncodedByteArrayData": "!!"}},
				}
				return b
			},
			field: "pJDto[1].file.base64EncodedByteArrayData",
		},
		{
			name: "missing attachment name",
			body: func() map[string]any {
				b := validV1()
				b["pJDto"] = []map[string]any{
					{"file": map[string]string{"base64EncodedByteArrayData": b64([]byte("a"))}},
				}
				return b
			},
			field: "pJDto[0].name",
		},
		{
			name: "unknown field",
			body: func() map[string]any {
				b := validV1()
				b["unexpected"] = true
				return b
			},
			field: "body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			w := srv.do(v1Request(t, tt.body()))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, "DECODE_ERROR", resp.Code)
			assert.Equal(t, tt.field, resp.Field)
			srv.assertTempClean(t)
		})
	}
}

func TestGenerateV1_TooManyAttachments(t *testing.T) {
	srv := newTestServer(t)

	body := validV1()
	var pj []map[string]any
	for _, name := range []string{"a.txt", "b.txt", "c.txt", "d.txt"} {
		pj = append(pj, map[string]any{"name": name, "file": map[string]string{"base64EncodedByteArrayData": b64([]byte(name))}})
	}
	body["pJDto"] = pj
	w := srv.do(v1Request(t, body))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "attachments", resp.Field)
	assert.Contains(t, resp.Error, "too many attachments")
	srv.assertTempClean(t)
}

func TestGenerateV1_FileResponse(t *testing.T) {
	srv := newTestServer(t, func(c *server.Config) { c.V1Response = config.ResponseFile })

	w := srv.do(v1Request(t, validV1()))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="file.pdf"`, w.Header().Get("Content-Disposition"))
	assertPDF(t, w.Body.Bytes())
	srv.assertTempClean(t)
}

func TestGenerateV2(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(multipartRequest(t, server.V2Generate+"?xmlCheck=false",
		part{"pdfFile", "invoice.pdf", fixture.MinimalPDF()},
		part{"xmlFile", "factur-x.xml", fixture.MinimumInvoiceXML()},
		part{"attachments", "terms.txt", []byte("net 30")},
	))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="file.pdf"`, w.Header().Get("Content-Disposition"))
	pdf := w.Body.Bytes()
	assertPDF(t, pdf)
	srv.assertTempClean(t)

	w = srv.do(multipartRequest(t, server.V1Inspect, part{"pdfFile", "file.pdf", pdf}))
	require.Equal(t, http.StatusOK, w.Code)
	var insp server.InspectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &insp))
	assert.Equal(t, []string{"terms.txt"}, insp.Attachments)
	assert.Equal(t, "minimum", string(insp.Validation.Profile))
	require.NotNil(t, insp.Summary)
	assert.Equal(t, "INV-2026-0001", insp.Summary.Number)
	require.NotNil(t, insp.Hybrid)
	assert.Equal(t, "MINIMUM", insp.Hybrid.ConformanceLevel)
	require.Len(t, insp.Hybrid.AssociatedFiles, 2)
	assert.Equal(t, facturx.RelationshipData, insp.Hybrid.AssociatedFiles[0].Relationship)
}

func TestGenerateV2_EmptyXMLFile(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(multipartRequest(t, server.V2Generate,
		part{"pdfFile", "invoice.pdf", fixture.MinimalPDF()},
		part{"xmlFile", "factur-x.xml", nil},
	))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "DECODE_ERROR", resp.Code)
	assert.Equal(t, "xmlFile", resp.Field)
	srv.assertTempClean(t)
}

func TestGenerateV2_MissingPDF(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(multipartRequest(t, server.V2Generate,
		part{"xmlFile", "factur-x.xml", fixture.MinimumInvoiceXML()},
	))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "pdfFile", decodeError(t, w).Field)
}

func TestGenerateV2_BadXMLCheckFlag(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(multipartRequest(t, server.V2Generate+"?xmlCheck=maybe",
		part{"pdfFile", "invoice.pdf", fixture.MinimalPDF()},
		part{"xmlFile", "factur-x.xml", fixture.MinimumInvoiceXML()},
	))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "xmlCheck", decodeError(t, w).Field)
}

func TestGenerateV2_InvalidXMLWithCheck(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(multipartRequest(t, server.V2Generate+"?xmlCheck=true",
		part{"pdfFile", "invoice.pdf", fixture.MinimalPDF()},
		part{"xmlFile", "factur-x.xml", fixture.IncompleteInvoiceXML()},
	))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	srv.assertTempClean(t)
}

func TestGenerateV2_ReservedAttachmentName(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(multipartRequest(t, server.V2Generate,
		part{"pdfFile", "invoice.pdf", fixture.MinimalPDF()},
		part{"xmlFile", "invoice.xml", fixture.MinimumInvoiceXML()},
		part{"attachments", "factur-x.xml", []byte("<x/>")},
	))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Error, "reserved")
}

func TestRequestTooLarge(t *testing.T) {
	srv := newTestServer(t, func(c *server.Config) { c.MaxRequestBytes = 1024 })

	w := srv.do(v1Request(t, validV1()))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "REQUEST_TOO_LARGE", decodeError(t, w).Code)
	srv.assertTempClean(t)
}

func TestInspect_PlainPDF(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(multipartRequest(t, server.V1Inspect, part{"pdfFile", "plain.pdf", fixture.MinimalPDF()}))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	srv.assertTempClean(t)
}

func TestOpenAPIDocument(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(httptest.NewRequest(http.MethodGet, server.OpenAPIPath, nil))

	require.Equal(t, http.StatusOK, w.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/v2/GenerateFacturX")
	assert.Contains(t, paths, "/v1/GenerateFacturX")
	assert.True(t, strings.HasPrefix(doc["basePath"].(string), "/fusion"))
}

// The swag document must describe the JSON the handlers actually return
func TestOpenAPIDocument_MatchesResponseTypes(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(httptest.NewRequest(http.MethodGet, server.OpenAPIPath, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var doc struct {
		Definitions map[string]struct {
			Properties map[string]any `json:"properties"`
		} `json:"definitions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))

	responses := map[string]any{
		"server.InspectResponse": server.InspectResponse{},
		"server.ErrorResponse":   server.ErrorResponse{},
		"facturx.HybridInfo":     facturx.HybridInfo{},
		"facturx.AssociatedFile": facturx.AssociatedFile{},
	}
	for name, v := range responses {
		def, ok := doc.Definitions[name]
		require.True(t, ok, "missing definition %s", name)

		rt := reflect.TypeOf(v)
		for i := 0; i < rt.NumField(); i++ {
			field := strings.Split(rt.Field(i).Tag.Get("json"), ",")[0]
			if field == "" || field == "-" {
				continue
			}
			assert.Contains(t, def.Properties, field, "%s.%s", name, field)
		}
	}
}
