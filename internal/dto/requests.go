package dto

import (
	"time"

	"github.com/noah-isme/campusconnect-api/internal/models"
)

// ActOnRequest captures POST /requests/:id/act.
type ActOnRequest struct {
	Action models.RequestAction `json:"action" validate:"required,oneof=Approved Rejected"`
	Note   string               `json:"note" validate:"max=1000"`
}

// CreateParentRequest captures POST /requests submitted by a parent.
type CreateParentRequest struct {
	StudentID   string             `json:"studentId" validate:"required"`
	StudentName string             `json:"studentName" validate:"required"`
	Type        models.RequestType `json:"type" validate:"required,oneof=Leave Certificate FeeWaiver PaymentProof"`
	Details     string             `json:"details" validate:"required,max=2000"`
	InvoiceID   *string            `json:"invoiceId,omitempty"`
}

// EditNoteRequest captures PATCH /requests/history/:id.
type EditNoteRequest struct {
	Note string `json:"note" validate:"required,max=1000"`
}

// HistoryItemResponse adds the derived edit allowance to a history row.
type HistoryItemResponse struct {
	models.RequestHistoryItem
	CanEdit        bool `json:"canEdit"`
	EditsRemaining int  `json:"editsRemaining"`
}

// NewHistoryItemResponse wraps a history row.
func NewHistoryItemResponse(item models.RequestHistoryItem) HistoryItemResponse {
	remaining := models.MaxFreeEdits - item.EditCount
	if remaining < 0 {
		remaining = 0
	}
	return HistoryItemResponse{RequestHistoryItem: item, CanEdit: item.CanEdit(), EditsRemaining: remaining}
}

// ReportRequest captures POST /reports/generate payload.
// Filters use the same keys as the matching list endpoint's query string.
type ReportRequest struct {
	Type    models.ReportType   `json:"type" validate:"required"`
	Format  models.ReportFormat `json:"format" validate:"required,oneof=csv pdf"`
	Filters map[string]string   `json:"filters,omitempty"`
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes job progress metadata.
type ReportStatusResponse struct {
	ID         string              `json:"id"`
	Type       models.ReportType   `json:"type"`
	Status     models.ReportStatus `json:"status"`
	Progress   int                 `json:"progress"`
	ResultURL  *string             `json:"resultUrl,omitempty"`
	Error      *string             `json:"error,omitempty"`
	FinishedAt *time.Time          `json:"finishedAt,omitempty"`
}
