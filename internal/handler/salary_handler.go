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

type salaryService interface {
	List(ctx context.Context, scope models.Scope, filter models.SalaryFilter, q listing.Query) (listing.Result[models.StaffSalaryRecord], error)
	Pay(ctx context.Context, scope models.Scope, id string) (*models.StaffSalaryRecord, error)
}

// SalaryHandler exposes payroll endpoints.
type SalaryHandler struct {
	salaries salaryService
	exports  exporter
}

// NewSalaryHandler constructs SalaryHandler.
func NewSalaryHandler(salaries salaryService, exports exporter) *SalaryHandler {
	return &SalaryHandler{salaries: salaries, exports: exports}
}

// List godoc
// @Summary List staff salaries
// @Tags Salaries
// @Produce json
// @Param search query string false "Search by name or ID"
// @Param role query string false "Filter by staff role"
// @Param month query string false "Filter by month (YYYY-MM)"
// @Param status query string false "Paid, Pending or all"
// @Success 200 {object} response.Envelope
// @Router /salaries [get]
func (h *SalaryHandler) List(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	q, ok := listQuery(c)
	if !ok {
		return
	}
	page, err := h.salaries.List(c.Request.Context(), scope, dto.SalaryFilterFromQuery(c.Request.URL.Query()), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, page)
}

// Export godoc
// @Summary Download the salary report
// @Tags Salaries
// @Produce text/csv
// @Success 200 {file} file
// @Router /salaries/export [get]
func (h *SalaryHandler) Export(c *gin.Context) {
	download(c, h.exports, models.ReportTypeSalary)
}

// Pay godoc
// @Summary Mark a salary as paid
// @Tags Salaries
// @Produce json
// @Param id path string true "Salary record ID"
// @Success 200 {object} response.Envelope
// @Router /salaries/{id}/pay [post]
func (h *SalaryHandler) Pay(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	record, err := h.salaries.Pay(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}
