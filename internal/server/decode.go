package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/rezonia/facturx-fusion/internal/model"
)

// Multipart part and query names of the v2 endpoint
const (
	partPDF         = "pdfFile"
	partXML         = "xmlFile"
	partAttachments = "attachments"
	queryXMLCheck   = "xmlCheck"
)

var bindingOnce sync.Once

// setupBinding makes gin reject unknown JSON fields and report validation
// errors by JSON field name
func setupBinding() {
	bindingOnce.Do(func() {
		binding.EnableDecoderDisallowUnknownFields = true
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(jsonFieldName)
		}
	})
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// decodeV1 binds and decodes the JSON/base64 request shape
func decodeV1(c *gin.Context) (*model.GenerationRequest, *GenerateV1Request, error) {
	var body GenerateV1Request
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, nil, bindError(err)
	}

	pdf, err := decodeBase64("pdf.base64EncodedByteArrayData", body.PDF.Base64EncodedByteArrayData)
	if err != nil {
		return nil, nil, err
	}
	xml, err := decodeBase64("xml.base64EncodedByteArrayData", body.XML.Base64EncodedByteArrayData)
	if err != nil {
		return nil, nil, err
	}

	req := &model.GenerationRequest{
		PDF:         pdf,
		XML:         xml,
		ValidateXML: body.CheckXML,
	}
	for i, pj := range body.PJDto {
		data, err := decodeBase64(fmt.Sprintf("pJDto[%d].file.base64EncodedByteArrayData", i), pj.File.Base64EncodedByteArrayData)
		if err != nil {
			return nil, nil, err
		}
		req.Attachments = append(req.Attachments, model.Attachment{Name: pj.Name, Data: data})
	}
	return req, &body, nil
}

func decodeBase64(field, value string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(value))
	if err != nil {
		return nil, model.NewDecodeError(field, "invalid base64 data", err)
	}
	if len(data) == 0 {
		return nil, model.NewDecodeError(field, "decoded content is empty", nil)
	}
	return data, nil
}

// bindError converts gin binding failures into decode errors
func bindError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return err
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return model.NewDecodeError(fieldPath(fe.Namespace()), fmt.Sprintf("failed on the '%s' rule", fe.Tag()), nil)
	}

	if errors.Is(err, io.EOF) {
		return model.NewDecodeError("body", "request body is empty", nil)
	}
	return model.NewDecodeError("body", "invalid JSON body: "+err.Error(), err)
}

// fieldPath drops the struct name from a validator namespace
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// decodeV2 reads the multipart request shape. The returned form must be
// released with RemoveAll.
func decodeV2(c *gin.Context) (*model.GenerationRequest, *multipart.Form, error) {
	check, err := parseBoolQuery(c, queryXMLCheck)
	if err != nil {
		return nil, nil, err
	}

	form, err := multipartForm(c)
	if err != nil {
		return nil, nil, err
	}

	pdf, err := readPart(form, partPDF)
	if err != nil {
		return nil, form, err
	}
	xml, err := readPart(form, partXML)
	if err != nil {
		return nil, form, err
	}

	req := &model.GenerationRequest{
		PDF:         pdf,
		XML:         xml,
		ValidateXML: check,
	}
	for i, fh := range form.File[partAttachments] {
		data, err := readFileHeader(fmt.Sprintf("%s[%d]", partAttachments, i), fh)
		if err != nil {
			return nil, form, err
		}
		req.Attachments = append(req.Attachments, model.Attachment{Name: fh.Filename, Data: data})
	}
	return req, form, nil
}

func multipartForm(c *gin.Context) (*multipart.Form, error) {
	form, err := c.MultipartForm()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, err
		}
		return nil, model.NewDecodeError("body", "invalid multipart form", err)
	}
	return form, nil
}

func parseBoolQuery(c *gin.Context, name string) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, model.NewDecodeError(name, fmt.Sprintf("invalid boolean %q", raw), err)
	}
	return v, nil
}

// readPart reads the single file part name. Missing or empty parts fail.
func readPart(form *multipart.Form, name string) ([]byte, error) {
	files := form.File[name]
	if len(files) == 0 {
		return nil, model.NewDecodeError(name, "file part is missing", nil)
	}
	return readFileHeader(name, files[0])
}

func readFileHeader(field string, fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, model.NewDecodeError(field, "cannot open uploaded file", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, model.NewDecodeError(field, "cannot read uploaded file", err)
	}
	if len(data) == 0 {
		return nil, model.NewDecodeError(field, "uploaded file is empty", nil)
	}
	return data, nil
}
