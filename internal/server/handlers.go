package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rezonia/facturx-fusion/internal/config"
	"github.com/rezonia/facturx-fusion/internal/logging"
)

// handleGenerateV1 godoc
//
// @Summary Generate a Factur-X PDF from base64 content
// @Description Embeds the XML invoice and optional attachments into the PDF. The result is returned base64 encoded in a JSON envelope, or as a file download when the service runs with v1_response: file.
// @Tags facturx
// @Accept json
// @Produce json,octet-stream
// @Param requestBody body GenerateV1Request true "PDF, XML and attachments as base64"
// @Success 200 {object} GenerateV1Response
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /v1/GenerateFacturX [post]
func (s *Server) handleGenerateV1(c *gin.Context) {
	req, body, err := decodeV1(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if body.Licence != "" || body.FolderID != "" || body.ShortName != "" || body.FunctionnalLevel != "" {
		logging.Debug("Ignoring legacy v1 fields",
			"request_id", requestIDFrom(c),
			"licence_set", body.Licence != "",
			"folder_id", body.FolderID,
			"short_name", body.ShortName,
			"functionnal_level", body.FunctionnalLevel,
		)
	}

	res, err := s.pipeline.Generate(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if s.config.V1Response == config.ResponseFile {
		s.streamPDF(c, res)
		return
	}
	s.writeEnvelope(c, res)
}

// handleGenerateV2 godoc
//
// @Summary Generate a Factur-X PDF from uploaded files
// @Description Embeds the uploaded XML invoice and attachments into the uploaded PDF and streams the result as file.pdf.
// @Tags facturx
// @Accept multipart/form-data
// @Produce octet-stream
// @Param xmlCheck query bool false "Validate the XML before embedding"
// @Param pdfFile formData file true "Source PDF"
// @Param xmlFile formData file true "Factur-X XML invoice"
// @Param attachments formData file false "Additional attachments"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /v2/GenerateFacturX [post]
func (s *Server) handleGenerateV2(c *gin.Context) {
	req, form, err := decodeV2(c)
	if form != nil {
		defer form.RemoveAll()
	}
	if err != nil {
		s.writeError(c, err)
		return
	}

	res, err := s.pipeline.Generate(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.streamPDF(c, res)
}

// handleInspect godoc
//
// @Summary Inspect a Factur-X PDF
// @Description Extracts the embedded invoice XML and attachment names, and validates the XML.
// @Tags facturx
// @Accept multipart/form-data
// @Produce json
// @Param pdfFile formData file true "Hybrid PDF"
// @Success 200 {object} InspectResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /v1/InspectFacturX [post]
func (s *Server) handleInspect(c *gin.Context) {
	form, err := multipartForm(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	defer form.RemoveAll()

	pdf, err := readPart(form, partPDF)
	if err != nil {
		s.writeError(c, err)
		return
	}

	insp, err := s.pipeline.Inspect(c.Request.Context(), pdf)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, InspectResponse{
		PageCount:   insp.PageCount,
		XMLFilename: insp.XMLFilename,
		Attachments: insp.Attachments,
		Hybrid:      insp.Hybrid,
		Summary:     insp.Summary,
		Validation:  insp.Report,
		XML:         string(insp.XML),
	})
}
