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

type attendanceService interface {
	List(ctx context.Context, scope models.Scope, filter models.AttendanceFilter, q listing.Query) (listing.Result[models.AttendanceRecord], error)
	Summary(ctx context.Context, scope models.Scope, filter models.AttendanceFilter) (*models.AttendanceSummary, bool, error)
}

// AttendanceHandler exposes attendance history endpoints.
type AttendanceHandler struct {
	attendance attendanceService
	exports    exporter
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance attendanceService, exports exporter) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, exports: exports}
}

// List godoc
// @Summary List attendance records
// @Tags Attendance
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param status query string false "Present, Absent, Holiday or all"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param sort query string false "date, status or studentId"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	filter, err := dto.AttendanceFilterFromQuery(c.Request.URL.Query())
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error()))
		return
	}
	q, ok := listQuery(c)
	if !ok {
		return
	}
	page, err := h.attendance.List(c.Request.Context(), scope, filter, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, page)
}

// Export godoc
// @Summary Download attendance history
// @Tags Attendance
// @Produce text/csv
// @Success 200 {file} file
// @Router /attendance/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	download(c, h.exports, models.ReportTypeAttendance)
}

// Summary godoc
// @Summary Attendance percentage for a student
// @Tags Attendance
// @Produce json
// @Param studentId query string false "Student; defaults to the caller's only child"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance/summary [get]
func (h *AttendanceHandler) Summary(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	filter, err := dto.AttendanceFilterFromQuery(c.Request.URL.Query())
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error()))
		return
	}
	summary, hit, err := h.attendance.Summary(c.Request.Context(), scope, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}
