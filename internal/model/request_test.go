package model_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/facturx-fusion/internal/model"
)

func validRequest() *model.GenerationRequest {
	return &model.GenerationRequest{
		PDF: []byte("%PDF-1.7"),
		XML: []byte("<x/>"),
	}
}

func TestGenerationRequest_Validate(t *testing.T) {
	req := validRequest()
	req.Attachments = []model.Attachment{
		{Name: "terms.txt", Data: []byte("terms")},
		{Name: "timesheet.csv", Data: []byte("a,b")},
	}

	require.NoError(t, req.Validate(model.DefaultMaxAttachments))
	assert.Equal(t, []string{"terms.txt", "timesheet.csv"}, req.AttachmentNames())
	assert.Equal(t, []byte("a,b"), req.AttachmentMap()["timesheet.csv"])
}

func TestGenerationRequest_ValidateEmptyContent(t *testing.T) {
	req := validRequest()
	req.PDF = nil

	err := req.Validate(3)
	var decErr *model.DecodeError
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, "pdf", decErr.Field)

	req = validRequest()
	req.XML = []byte{}
	err = req.Validate(3)
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, "xml", decErr.Field)
}

func TestGenerationRequest_ValidateAttachmentBound(t *testing.T) {
	req := validRequest()
	for _, name := range []string{"a", "b", "c", "d"} {
		req.Attachments = append(req.Attachments, model.Attachment{Name: name, Data: []byte(name)})
	}

	err := req.Validate(3)
	var decErr *model.DecodeError
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, "attachments", decErr.Field)
	assert.Contains(t, decErr.Error(), "too many attachments")

	// Negative bound disables the check
	assert.NoError(t, req.Validate(-1))
}

func TestGenerationRequest_ValidateAttachmentNames(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		wantErr string
	}{
		{name: "empty name", names: []string{" "}, wantErr: "empty"},
		{name: "path traversal", names: []string{"../etc/passwd"}, wantErr: "path"},
		{name: "windows path", names: []string{`dir\file.txt`}, wantErr: "path"},
		{name: "dot dot", names: []string{".."}, wantErr: "invalid"},
		{name: "reserved", names: []string{"Factur-X.xml"}, wantErr: "reserved"},
		{name: "duplicate", names: []string{"a.txt", "a.txt"}, wantErr: "duplicate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			for _, n := range tt.names {
				req.Attachments = append(req.Attachments, model.Attachment{Name: n, Data: []byte("x")})
			}
			err := req.Validate(5)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
		})
	}
}

func TestErrors_UnwrapAndCodes(t *testing.T) {
	cause := errors.New("disk full")

	fsErr := model.NewFileSystemError("write", "/tmp/x.pdf", cause)
	assert.ErrorIs(t, fsErr, cause)
	assert.Equal(t, model.ErrCodeFileSystem, fsErr.Code())
	assert.Equal(t, "filesystem write /tmp/x.pdf: disk full", fsErr.Error())

	genErr := model.NewGenerationError("embed", "pdfcpu failed", cause)
	assert.ErrorIs(t, genErr, cause)
	assert.Equal(t, model.ErrCodeGeneration, genErr.Code())

	valErr := model.NewValidationError("minimum", []string{"missing ID", "missing TypeCode"}, nil)
	assert.Equal(t, "XML validation failed for profile minimum: missing ID (and 1 more)", valErr.Error())
	assert.Equal(t, model.ErrCodeValidation, valErr.Code())

	decErr := model.NewDecodeError("xml.base64EncodedByteArrayData", "invalid base64", cause)
	assert.Equal(t, model.ErrCodeDecode, decErr.Code())
	assert.Contains(t, decErr.Error(), "xml.base64EncodedByteArrayData")
}
