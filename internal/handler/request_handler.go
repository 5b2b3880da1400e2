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

type requestService interface {
	List(ctx context.Context, scope models.Scope, filter models.RequestFilter, q listing.Query) (listing.Result[models.ParentRequest], error)
	Submit(ctx context.Context, scope models.Scope, req dto.CreateParentRequest) (*models.ParentRequest, error)
	Act(ctx context.Context, scope models.Scope, id string, req dto.ActOnRequest) (*models.RequestHistoryItem, error)
}

type historyService interface {
	List(ctx context.Context, scope models.Scope, filter models.HistoryFilter, q listing.Query) (listing.Result[models.RequestHistoryItem], error)
	EditNote(ctx context.Context, scope models.Scope, id string, req dto.EditNoteRequest) (*models.RequestHistoryItem, error)
	Unlock(ctx context.Context, scope models.Scope, id string) (*models.RequestHistoryItem, error)
}

// RequestHandler exposes the parent request queue and its history.
type RequestHandler struct {
	requests requestService
	history  historyService
	exports  exporter
}

// NewRequestHandler constructs RequestHandler.
func NewRequestHandler(requests requestService, history historyService, exports exporter) *RequestHandler {
	return &RequestHandler{requests: requests, history: history, exports: exports}
}

// List godoc
// @Summary List pending parent requests
// @Tags Requests
// @Produce json
// @Param search query string false "Search parent, student or details"
// @Param type query string false "Leave, Certificate, FeeWaiver, PaymentProof or all"
// @Param sort query string false "submittedAt, type or parentName"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	q, ok := listQuery(c)
	if !ok {
		return
	}
	page, err := h.requests.List(c.Request.Context(), scope, dto.RequestFilterFromQuery(c.Request.URL.Query()), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, page)
}

// Export godoc
// @Summary Download pending parent requests
// @Tags Requests
// @Produce text/csv
// @Success 200 {file} file
// @Router /requests/export [get]
func (h *RequestHandler) Export(c *gin.Context) {
	download(c, h.exports, models.ReportTypeParentRequests)
}

// Submit godoc
// @Summary Submit a request for one of the caller's children
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body dto.CreateParentRequest true "Request"
// @Success 201 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Submit(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateParentRequest
	if !bindJSON(c, &req) {
		return
	}
	created, err := h.requests.Submit(c.Request.Context(), scope, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Act godoc
// @Summary Approve or reject a pending request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.ActOnRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/act [post]
func (h *RequestHandler) Act(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	var req dto.ActOnRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.requests.Act(c.Request.Context(), scope, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewHistoryItemResponse(*item), nil)
}

// History godoc
// @Summary List decisions taken on parent requests
// @Tags Requests
// @Produce json
// @Param search query string false "Search parent, student or note"
// @Param action query string false "Approved, Rejected or all"
// @Param sort query string false "actedAt, action or type"
// @Success 200 {object} response.Envelope
// @Router /requests/history [get]
func (h *RequestHandler) History(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	q, ok := listQuery(c)
	if !ok {
		return
	}
	page, err := h.history.List(c.Request.Context(), scope, dto.HistoryFilterFromQuery(c.Request.URL.Query()), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	items := make([]dto.HistoryItemResponse, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, dto.NewHistoryItemResponse(item))
	}
	writePage(c, listing.Result[dto.HistoryItemResponse]{
		Items:    items,
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
		Sort:     page.Sort,
		Empty:    page.Empty,
	})
}

// ExportHistory godoc
// @Summary Download request history
// @Tags Requests
// @Produce text/csv
// @Success 200 {file} file
// @Router /requests/history/export [get]
func (h *RequestHandler) ExportHistory(c *gin.Context) {
	download(c, h.exports, models.ReportTypeRequestHistory)
}

// EditNote godoc
// @Summary Edit the note of a decision
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "History item ID"
// @Param payload body dto.EditNoteRequest true "Note"
// @Success 200 {object} response.Envelope
// @Failure 402 {object} response.Envelope
// @Router /requests/history/{id} [patch]
func (h *RequestHandler) EditNote(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	var req dto.EditNoteRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.history.EditNote(c.Request.Context(), scope, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewHistoryItemResponse(*item), nil)
}

// Unlock godoc
// @Summary Pass the edit gate for a decision note
// @Tags Requests
// @Produce json
// @Param id path string true "History item ID"
// @Success 200 {object} response.Envelope
// @Router /requests/history/{id}/unlock [post]
func (h *RequestHandler) Unlock(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	item, err := h.history.Unlock(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewHistoryItemResponse(*item), nil)
}
