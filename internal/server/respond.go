package server

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rezonia/facturx-fusion/internal/logging"
	"github.com/rezonia/facturx-fusion/internal/model"
	"github.com/rezonia/facturx-fusion/internal/processor"
)

// Error codes not carried by model errors
const (
	ErrCodeTooLarge  = "REQUEST_TOO_LARGE"
	ErrCodeCancelled = "REQUEST_CANCELLED"
	ErrCodeInternal  = "INTERNAL_ERROR"
)

const (
	generatedMessage = "factur-x generated"
	downloadName     = "file.pdf"
)

// errorResponse maps an error onto its HTTP status and body
func errorResponse(err error) (int, ErrorResponse) {
	var (
		decodeErr *model.DecodeError
		validErr  *model.ValidationError
		genErr    *model.GenerationError
		fsErr     *model.FileSystemError
		maxErr    *http.MaxBytesError
	)

	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge, ErrorResponse{Error: "request body too large", Code: ErrCodeTooLarge}
	case errors.As(err, &decodeErr):
		return http.StatusBadRequest, ErrorResponse{Error: decodeErr.Message, Code: decodeErr.Code(), Field: decodeErr.Field}
	case errors.As(err, &validErr):
		return http.StatusUnprocessableEntity, ErrorResponse{Error: validErr.Error(), Code: validErr.Code(), Details: validErr.Errors}
	case errors.As(err, &genErr):
		return http.StatusInternalServerError, ErrorResponse{Error: genErr.Message, Code: genErr.Code()}
	case errors.As(err, &fsErr):
		return http.StatusInternalServerError, ErrorResponse{Error: "temporary file operation failed", Code: fsErr.Code()}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, ErrorResponse{Error: "request cancelled or timed out", Code: ErrCodeCancelled}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: ErrCodeInternal}
	}
}

func (s *Server) writeError(c *gin.Context, err error) {
	status, body := errorResponse(err)
	kv := []any{"request_id", requestIDFrom(c), "status", status, "code", body.Code, "error", err}
	if status >= http.StatusInternalServerError {
		logging.Error("Request failed", kv...)
	} else {
		logging.Warn("Request rejected", kv...)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

// writeEnvelope returns the generated PDF inside the v1 JSON envelope
func (s *Server) writeEnvelope(c *gin.Context, res *processor.Result) {
	defer s.release(c, res)

	data, err := res.Bytes()
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, GenerateV1Response{
		ReturnCode: 0,
		Output:     generatedMessage,
		PDFOut:     FileData{Base64EncodedByteArrayData: base64.StdEncoding.EncodeToString(data)},
	})
}

// streamPDF streams the generated PDF as a file download. The workspace is
// removed once the body has been written.
func (s *Server) streamPDF(c *gin.Context, res *processor.Result) {
	defer s.release(c, res)

	f, err := res.Open()
	if err != nil {
		s.writeError(c, err)
		return
	}
	defer f.Close()

	c.DataFromReader(http.StatusOK, res.Size(), "application/octet-stream", f, map[string]string{
		"Content-Disposition": `attachment; filename="` + downloadName + `"`,
	})
}

// release removes the result workspace. Failures are logged, never surfaced.
func (s *Server) release(c *gin.Context, res *processor.Result) {
	if err := res.Close(); err != nil {
		logging.Error("Failed to remove generated PDF", "request_id", requestIDFrom(c), "error", err)
	}
}
