package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/ordonezjosue/wheeltracker/internal/api/response"
	"github.com/ordonezjosue/wheeltracker/internal/apperrors"
	"github.com/ordonezjosue/wheeltracker/internal/service"
)

// maxImportSize caps an uploaded broker export at 10MB.
const maxImportSize = 10 << 20

// ImportHandler handles HTTP requests for broker CSV imports.
type ImportHandler struct {
	importService *service.ImportService
}

// NewImportHandler creates a new ImportHandler with the provided service dependency.
func NewImportHandler(importService *service.ImportService) *ImportHandler {
	return &ImportHandler{
		importService: importService,
	}
}

// Import handles POST requests uploading a broker transaction export.
// Accepts either a multipart form with a "file" part or a raw CSV body.
//
// Endpoint: POST /api/import
// Response: 200 OK with ImportReport
// Error: 400 Bad Request if the upload matches no known column profile
// Error: 500 Internal Server Error if the import fails
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	body, err := h.importBody(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid upload", err.Error())
		return
	}
	defer body.Close()

	report, err := h.importService.Import(r.Context(), body)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCSVHeaders) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidCSVHeaders.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToImportTrades.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, report)
}

// importBody extracts the CSV payload from either upload shape.
func (h *ImportHandler) importBody(r *http.Request) (io.ReadCloser, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImportSize); err != nil {
			return nil, err
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, err
		}
		return file, nil
	}
	return http.MaxBytesReader(nil, r.Body, maxImportSize), nil
}
