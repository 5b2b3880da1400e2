package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campusconnect-api/internal/dto"
	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/internal/service"
	appErrors "github.com/noah-isme/campusconnect-api/pkg/errors"
	"github.com/noah-isme/campusconnect-api/pkg/export"
)

type reportServiceMock struct {
	gotScope    models.Scope
	gotRequest  dto.ReportRequest
	createResp  *dto.ReportJobResponse
	createErr   error
	statusResp  *dto.ReportStatusResponse
	statusErr   error
	download    *service.ReportDownload
	downloadErr error
}

func (m *reportServiceMock) CreateJob(_ context.Context, scope models.Scope, req dto.ReportRequest) (*dto.ReportJobResponse, error) {
	m.gotScope, m.gotRequest = scope, req
	return m.createResp, m.createErr
}

func (m *reportServiceMock) GetStatus(_ context.Context, scope models.Scope, _ string) (*dto.ReportStatusResponse, error) {
	m.gotScope = scope
	return m.statusResp, m.statusErr
}

func (m *reportServiceMock) ResolveDownload(context.Context, string) (*service.ReportDownload, error) {
	return m.download, m.downloadErr
}

func TestReportHandlerGenerateReport(t *testing.T) {
	mockSvc := &reportServiceMock{
		createResp: &dto.ReportJobResponse{ID: "job-1", Status: models.ReportStatusQueued},
	}
	handler := NewReportHandler(mockSvc)

	payload, _ := json.Marshal(dto.ReportRequest{Type: models.ReportTypeFeeInvoices, Format: models.ReportFormatCSV, Filters: map[string]string{"status": "Pending"}})
	c, w := newGinContext(http.MethodPost, "/reports/generate", payload)
	withClaims(c, principalClaims)

	handler.GenerateReport(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "school-1", mockSvc.gotScope.SchoolID)
	assert.Equal(t, "Pending", mockSvc.gotRequest.Filters["status"])
}

func TestReportHandlerGenerateReportForbidden(t *testing.T) {
	mockSvc := &reportServiceMock{createErr: appErrors.Clone(appErrors.ErrForbidden, "role cannot export salary_report")}
	handler := NewReportHandler(mockSvc)

	payload, _ := json.Marshal(dto.ReportRequest{Type: models.ReportTypeSalary, Format: models.ReportFormatCSV})
	c, w := newGinContext(http.MethodPost, "/reports/generate", payload)
	withClaims(c, parentClaims)

	handler.GenerateReport(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReportHandlerReportStatus(t *testing.T) {
	url := "/api/v1/export/token"
	mockSvc := &reportServiceMock{
		statusResp: &dto.ReportStatusResponse{ID: "job-1", Status: models.ReportStatusFinished, Progress: 100, ResultURL: &url},
	}
	handler := NewReportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/reports/status/job-1", nil)
	c.AddParam("id", "job-1")
	withClaims(c, principalClaims)

	handler.ReportStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
	var status dto.ReportStatusResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &status))
	require.NotNil(t, status.ResultURL)
	assert.Equal(t, url, *status.ResultURL)
}

func TestReportHandlerDownloadReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(path, []byte("Invoice ID\nINV1002"), 0o600))
	file, err := os.Open(path)
	require.NoError(t, err)

	mockSvc := &reportServiceMock{
		download: &service.ReportDownload{
			File:      file,
			Filename:  "fee_invoices_pending.csv",
			Format:    models.ReportFormatCSV,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	handler := NewReportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/export/token", nil)
	c.AddParam("token", "token")

	handler.DownloadReport(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.CSVMIMEType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="fee_invoices_pending.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Invoice ID\nINV1002", w.Body.String())
}

func TestReportHandlerDownloadExpired(t *testing.T) {
	handler := NewReportHandler(&reportServiceMock{downloadErr: appErrors.Clone(appErrors.ErrUnauthorized, "link expired")})

	c, w := newGinContext(http.MethodGet, "/export/token", nil)
	c.AddParam("token", "token")

	handler.DownloadReport(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
