package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/pkg/response"
)

// ExportHandler serves any registered dataset by report type.
type ExportHandler struct {
	exports exporter
	types   []models.ReportType
}

// NewExportHandler constructs ExportHandler; types lists what GET /exports advertises.
func NewExportHandler(exports exporter, types []models.ReportType) *ExportHandler {
	return &ExportHandler{exports: exports, types: types}
}

// Types godoc
// @Summary List exportable datasets
// @Tags Exports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /exports [get]
func (h *ExportHandler) Types(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.types, nil)
}

// Download godoc
// @Summary Download a dataset with the same filters as its list endpoint
// @Tags Exports
// @Produce text/csv
// @Param type path string true "Report type"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /exports/{type} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	download(c, h.exports, models.ReportType(c.Param("type")))
}
