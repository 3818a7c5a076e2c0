package server

import (
	"github.com/rezonia/facturx-fusion/internal/facturx"
)

// FileData carries a base64 encoded file
type FileData struct {
	Base64EncodedByteArrayData string `json:"base64EncodedByteArrayData" binding:"required" example:"JVBERi0xLjcK..."`
}

// AttachmentDTO is an attachment in the v1 request
type AttachmentDTO struct {
	File FileData `json:"file"`
	Name string   `json:"name" binding:"required" example:"terms.pdf"`
}

// GenerateV1Request is the JSON body of POST /fusion/v1/GenerateFacturX
type GenerateV1Request struct {
	PDF      FileData        `json:"pdf"`
	XML      FileData        `json:"xml"`
	CheckXML bool            `json:"checkXml"`
	PJDto    []AttachmentDTO `json:"pJDto" binding:"omitempty,dive"`

	// Accepted for client compatibility, not used
	Licence          string `json:"licence,omitempty"`
	FolderID         string `json:"folderId,omitempty"`
	ShortName        string `json:"shortName,omitempty"`
	FunctionnalLevel string `json:"functionnalLevel,omitempty"`
}

// GenerateV1Response is the synchronous v1 envelope
type GenerateV1Response struct {
	ReturnCode int      `json:"returnCode" example:"0"`
	Output     string   `json:"output" example:"factur-x generated"`
	PDFOut     FileData `json:"pdfOut"`
}

// InspectResponse is the response for the inspect endpoint
type InspectResponse struct {
	PageCount   int                 `json:"page_count"`
	XMLFilename string              `json:"xml_filename"`
	Attachments []string            `json:"attachments"`
	Hybrid      *facturx.HybridInfo `json:"hybrid,omitempty"`
	Summary     *facturx.Summary    `json:"summary,omitempty"`
	Validation  *facturx.Report     `json:"validation"`
	XML         string              `json:"xml"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Field   string   `json:"field,omitempty"`
	Details []string `json:"details,omitempty"`
}
