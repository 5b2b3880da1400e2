package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campusconnect-api/internal/dto"
	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/pkg/listing"
	"github.com/noah-isme/campusconnect-api/pkg/response"
)

type performanceService interface {
	List(ctx context.Context, scope models.Scope, filter models.PerformanceFilter, q listing.Query) (listing.Result[models.TeacherPerformance], error)
	Rankings(ctx context.Context, scope models.Scope, filter models.PerformanceFilter) ([]models.TeacherRanking, error)
	Compare(ctx context.Context, scope models.Scope, ids []string) ([]models.TeacherPerformance, error)
}

// PerformanceHandler exposes teacher performance analytics.
type PerformanceHandler struct {
	performance performanceService
	exports     exporter
}

// NewPerformanceHandler constructs PerformanceHandler.
func NewPerformanceHandler(performance performanceService, exports exporter) *PerformanceHandler {
	return &PerformanceHandler{performance: performance, exports: exports}
}

// List godoc
// @Summary List teacher performance
// @Tags Performance
// @Produce json
// @Param search query string false "Search teacher name or ID"
// @Param subject query string false "Filter by subject"
// @Param term query string false "Filter by term"
// @Param sort query string false "rating, passRate, attendanceRate or name"
// @Success 200 {object} response.Envelope
// @Router /performance [get]
func (h *PerformanceHandler) List(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	q, ok := listQuery(c)
	if !ok {
		return
	}
	page, err := h.performance.List(c.Request.Context(), scope, dto.PerformanceFilterFromQuery(c.Request.URL.Query()), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, page)
}

// Rankings godoc
// @Summary Rank teachers by rating and pass rate
// @Tags Performance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /performance/rankings [get]
func (h *PerformanceHandler) Rankings(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	rankings, err := h.performance.Rankings(c.Request.Context(), scope, dto.PerformanceFilterFromQuery(c.Request.URL.Query()))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rankings, nil)
}

// Compare godoc
// @Summary Compare two or more teachers
// @Tags Performance
// @Produce json
// @Param ids query string true "Comma separated teacher IDs"
// @Success 200 {object} response.Envelope
// @Router /performance/compare [get]
func (h *PerformanceHandler) Compare(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	rows, err := h.performance.Compare(c.Request.Context(), scope, dto.IDsFromQuery(c.Request.URL.Query()))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ExportGrowth godoc
// @Summary Download the teacher growth report
// @Tags Performance
// @Produce text/csv
// @Success 200 {file} file
// @Router /performance/export [get]
func (h *PerformanceHandler) ExportGrowth(c *gin.Context) {
	download(c, h.exports, models.ReportTypeTeacherGrowth)
}

// ExportComparison godoc
// @Summary Download a teacher comparison
// @Tags Performance
// @Produce text/csv
// @Param ids query string true "Comma separated teacher IDs"
// @Success 200 {file} file
// @Router /performance/compare/export [get]
func (h *PerformanceHandler) ExportComparison(c *gin.Context) {
	download(c, h.exports, models.ReportTypeTeacherComparison)
}
