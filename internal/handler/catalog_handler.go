package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campusconnect-api/internal/dto"
	"github.com/noah-isme/campusconnect-api/internal/models"
	appErrors "github.com/noah-isme/campusconnect-api/pkg/errors"
	"github.com/noah-isme/campusconnect-api/pkg/listing"
	"github.com/noah-isme/campusconnect-api/pkg/response"
)

type hostelService interface {
	List(ctx context.Context, scope models.Scope, filter models.HostelFilter, q listing.Query) (listing.Result[models.HostelAllocation], error)
}

type homeworkService interface {
	List(ctx context.Context, scope models.Scope, filter models.HomeworkFilter, q listing.Query) (listing.Result[models.Homework], error)
}

// CatalogHandler exposes the read-only hostel and homework listings.
type CatalogHandler struct {
	hostel   hostelService
	homework homeworkService
	exports  exporter
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(hostel hostelService, homework homeworkService, exports exporter) *CatalogHandler {
	return &CatalogHandler{hostel: hostel, homework: homework, exports: exports}
}

// Hostel godoc
// @Summary List hostel allocations
// @Tags Hostel
// @Produce json
// @Param search query string false "Search student or room"
// @Param hostel query string false "Filter by hostel"
// @Param status query string false "Filter by fee status"
// @Param sort query string false "room, hostel or fee"
// @Success 200 {object} response.Envelope
// @Router /hostel [get]
func (h *CatalogHandler) Hostel(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	q, ok := listQuery(c)
	if !ok {
		return
	}
	page, err := h.hostel.List(c.Request.Context(), scope, dto.HostelFilterFromQuery(c.Request.URL.Query()), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, page)
}

// ExportHostel godoc
// @Summary Download hostel allocations
// @Tags Hostel
// @Produce text/csv
// @Success 200 {file} file
// @Router /hostel/export [get]
func (h *CatalogHandler) ExportHostel(c *gin.Context) {
	download(c, h.exports, models.ReportTypeHostelAllocations)
}

// Homework godoc
// @Summary List homework
// @Tags Homework
// @Produce json
// @Param search query string false "Search title or description"
// @Param class query string false "Filter by class"
// @Param subject query string false "Filter by subject"
// @Param from query string false "Due on or after (YYYY-MM-DD)"
// @Param to query string false "Due on or before (YYYY-MM-DD)"
// @Param sort query string false "dueDate, assignedOn or subject"
// @Success 200 {object} response.Envelope
// @Router /homework [get]
func (h *CatalogHandler) Homework(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	filter, err := dto.HomeworkFilterFromQuery(c.Request.URL.Query())
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error()))
		return
	}
	q, ok := listQuery(c)
	if !ok {
		return
	}
	page, err := h.homework.List(c.Request.Context(), scope, filter, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, page)
}

// ExportHomework godoc
// @Summary Download homework
// @Tags Homework
// @Produce text/csv
// @Success 200 {file} file
// @Router /homework/export [get]
func (h *CatalogHandler) ExportHomework(c *gin.Context) {
	download(c, h.exports, models.ReportTypeHomework)
}
