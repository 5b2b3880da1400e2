package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ReportType enumerates the datasets an asynchronous report can be built from.
type ReportType string

const (
	ReportTypeFeeInvoices       ReportType = "fee_invoices"
	ReportTypeAttendance        ReportType = "attendance"
	ReportTypeSalary            ReportType = "salary_report"
	ReportTypeParentRequests    ReportType = "parent_requests"
	ReportTypeRequestHistory    ReportType = "request_history"
	ReportTypeHostelAllocations ReportType = "hostel_allocations"
	ReportTypeHomework          ReportType = "homework"
	ReportTypeTeacherGrowth     ReportType = "teacher_growth"
	ReportTypeTeacherComparison ReportType = "teacher_comparison"
)

// ReportTypes lists every supported report type.
var ReportTypes = []ReportType{
	ReportTypeFeeInvoices,
	ReportTypeAttendance,
	ReportTypeSalary,
	ReportTypeParentRequests,
	ReportTypeRequestHistory,
	ReportTypeHostelAllocations,
	ReportTypeHomework,
	ReportTypeTeacherGrowth,
	ReportTypeTeacherComparison,
}

// Valid reports whether t names a known dataset.
func (t ReportType) Valid() bool {
	for _, known := range ReportTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ReportFormat enumerates supported export formats.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportStatus captures background job lifecycle states.
type ReportStatus string

const (
	ReportStatusQueued     ReportStatus = "QUEUED"
	ReportStatusProcessing ReportStatus = "PROCESSING"
	ReportStatusFinished   ReportStatus = "FINISHED"
	ReportStatusFailed     ReportStatus = "FAILED"
)

// ReportJob persisted background job metadata.
type ReportJob struct {
	ID           string          `db:"id" json:"id"`
	SchoolID     string          `db:"school_id" json:"schoolId"`
	Type         ReportType      `db:"type" json:"type"`
	Params       ReportJobParams `db:"params" json:"params"`
	Status       ReportStatus    `db:"status" json:"status"`
	Progress     int             `db:"progress" json:"progress"`
	ResultURL    *string         `db:"result_url" json:"resultUrl,omitempty"`
	CreatedBy    string          `db:"created_by" json:"createdBy"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
	FinishedAt   *time.Time      `db:"finished_at" json:"finishedAt,omitempty"`
	ErrorMessage *string         `db:"error_message" json:"errorMessage,omitempty"`
}

// ReportJobParams stores request-scoped options persisted as JSONB.
// Filters carries the same query parameters the list endpoint accepts.
type ReportJobParams struct {
	Format  ReportFormat      `json:"format"`
	Filters map[string]string `json:"filters,omitempty"`
	Viewer  ReportViewer      `json:"viewer"`
}

// ReportViewer snapshots the requesting user's scope so the worker applies the same visibility.
type ReportViewer struct {
	UserID     string   `json:"userId"`
	Name       string   `json:"name,omitempty"`
	Role       UserRole `json:"role"`
	StudentIDs []string `json:"studentIds,omitempty"`
}

// Value marshals params to JSON for persistence.
func (p ReportJobParams) Value() (driver.Value, error) {
	if p.Filters == nil {
		p.Filters = map[string]string{}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal report job params: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the params struct.
func (p *ReportJobParams) Scan(value interface{}) error {
	if value == nil {
		*p = ReportJobParams{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ReportJobParams", value)
	}
	if len(data) == 0 {
		*p = ReportJobParams{}
		return nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("unmarshal report job params: %w", err)
	}
	return nil
}
