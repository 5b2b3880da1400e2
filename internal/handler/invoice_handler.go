package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campusconnect-api/internal/dto"
	"github.com/noah-isme/campusconnect-api/internal/middleware"
	"github.com/noah-isme/campusconnect-api/internal/models"
	appErrors "github.com/noah-isme/campusconnect-api/pkg/errors"
	"github.com/noah-isme/campusconnect-api/pkg/listing"
	"github.com/noah-isme/campusconnect-api/pkg/response"
)

type invoiceService interface {
	List(ctx context.Context, scope models.Scope, filter models.InvoiceFilter, q listing.Query) (listing.Result[models.Invoice], error)
	Pay(ctx context.Context, scope models.Scope, id string) (*models.Invoice, error)
	Summary(ctx context.Context, scope models.Scope, studentID string) (*models.FeeSummary, bool, error)
}

// InvoiceHandler exposes fee invoice endpoints.
type InvoiceHandler struct {
	invoices invoiceService
	exports  exporter
}

// NewInvoiceHandler constructs InvoiceHandler.
func NewInvoiceHandler(invoices invoiceService, exports exporter) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, exports: exports}
}

// List godoc
// @Summary List fee invoices
// @Tags Fees
// @Produce json
// @Param search query string false "Search invoice ID or description"
// @Param status query string false "Paid, Pending, Overdue, Upcoming or all"
// @Param studentId query string false "Filter by student"
// @Param from query string false "Due on or after (YYYY-MM-DD)"
// @Param to query string false "Due on or before (YYYY-MM-DD)"
// @Param sort query string false "dueDate, amount, status or id"
// @Param order query string false "asc or desc"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	filter, err := dto.InvoiceFilterFromQuery(c.Request.URL.Query())
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error()))
		return
	}
	q, ok := listQuery(c)
	if !ok {
		return
	}
	page, err := h.invoices.List(c.Request.Context(), scope, filter, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, page)
}

// Export godoc
// @Summary Download the filtered invoice list
// @Tags Fees
// @Produce text/csv
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /invoices/export [get]
func (h *InvoiceHandler) Export(c *gin.Context) {
	download(c, h.exports, models.ReportTypeFeeInvoices)
}

// Pay godoc
// @Summary Mark an invoice as paid
// @Tags Fees
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /invoices/{id}/pay [post]
func (h *InvoiceHandler) Pay(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	invoice, err := h.invoices.Pay(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invoice, nil)
}

// Summary godoc
// @Summary Fee totals by status
// @Tags Fees
// @Produce json
// @Param studentId query string false "Limit to one student"
// @Success 200 {object} response.Envelope
// @Router /invoices/summary [get]
func (h *InvoiceHandler) Summary(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	summary, hit, err := h.invoices.Summary(c.Request.Context(), scope, c.Query(dto.ParamStudentID))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}
