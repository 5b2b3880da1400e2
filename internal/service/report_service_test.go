package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campusconnect-api/internal/dto"
	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/internal/repository/memory"
	appErrors "github.com/noah-isme/campusconnect-api/pkg/errors"
	"github.com/noah-isme/campusconnect-api/pkg/jobs"
	"github.com/noah-isme/campusconnect-api/pkg/storage"
)

type recordingQueue struct {
	jobs []jobs.Job
	err  error
}

func (q *recordingQueue) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type stubGenerator struct {
	result *ExportResult
	err    error
}

func (g stubGenerator) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	return g.result, g.err
}

type reportFixture struct {
	jobs    *memory.ReportRepository
	queue   *recordingQueue
	exports *ExportService
	service *ReportService
}

func newReportFixture(t *testing.T) reportFixture {
	t.Helper()
	store := testStore(t)
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	registry := newTestRegistry(store)
	exports := NewExportService(registry, files, storage.NewSignedURLSigner("test-secret", time.Hour), nil, ExportConfig{}, nil, nil, nil)
	repo := memory.NewReportRepository(store)
	queue := &recordingQueue{}
	return reportFixture{
		jobs:    repo,
		queue:   queue,
		exports: exports,
		service: NewReportService(repo, registry, queue, exports, NewMetricsService(), nil, ReportServiceConfig{}),
	}
}

func TestReportJobLifecycle(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateJob(ctx, parent, dto.ReportRequest{
		Type:    models.ReportTypeFeeInvoices,
		Format:  models.ReportFormatCSV,
		Filters: map[string]string{"status": "Pending"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, created.Status)
	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, created.ID, f.queue.jobs[0].ID)

	worker := NewReportWorker(f.jobs, f.exports, nil, nil)
	require.NoError(t, worker.Handle(ctx, f.queue.jobs[0]))

	status, err := f.service.GetStatus(ctx, parent, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFinished, status.Status)
	assert.Equal(t, 100, status.Progress)
	require.NotNil(t, status.ResultURL)
	assert.Nil(t, status.Error)

	token := extractToken(*status.ResultURL)
	download, err := f.service.ResolveDownload(ctx, token)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, "fee_invoices_pending.csv", download.Filename)
	body, err := io.ReadAll(download.File)
	require.NoError(t, err)
	assert.Equal(t, "Invoice ID,Description,Amount,Due Date,Status\nINV1002,\"Bus Fee - July\",2500,2024-07-10,Pending", string(body))
}

func TestCreateJobAuthorizesAgainstRegistry(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	_, err := f.service.CreateJob(ctx, parent, dto.ReportRequest{Type: models.ReportTypeSalary, Format: models.ReportFormatCSV})
	requireAppError(t, err, "FORBIDDEN")

	_, err = f.service.CreateJob(ctx, principal, dto.ReportRequest{Type: models.ReportTypeSalary, Format: "docx"})
	requireAppError(t, err, "VALIDATION_ERROR")
	assert.Empty(t, f.queue.jobs)
}

func TestCreateJobMarksFailedWhenQueueRejects(t *testing.T) {
	f := newReportFixture(t)
	f.queue.err = jobs.ErrQueueClosed

	_, err := f.service.CreateJob(context.Background(), principal, dto.ReportRequest{Type: models.ReportTypeSalary, Format: models.ReportFormatCSV})
	requireAppError(t, err, "INTERNAL_ERROR")
}

func TestGetStatusVisibility(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateJob(ctx, teacher, dto.ReportRequest{Type: models.ReportTypeHomework, Format: models.ReportFormatCSV})
	require.NoError(t, err)

	_, err = f.service.GetStatus(ctx, principal, created.ID)
	require.NoError(t, err)

	_, err = f.service.GetStatus(ctx, parent, created.ID)
	requireAppError(t, err, "FORBIDDEN")

	otherSchool := principal
	otherSchool.SchoolID = "school-2"
	_, err = f.service.GetStatus(ctx, otherSchool, created.ID)
	requireAppError(t, err, "NOT_FOUND")
}

func TestWorkerFailureRequeuesThenGiveUpMarksFailed(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateJob(ctx, principal, dto.ReportRequest{Type: models.ReportTypeSalary, Format: models.ReportFormatCSV})
	require.NoError(t, err)

	boom := errors.New("disk full")
	worker := NewReportWorker(f.jobs, stubGenerator{err: boom}, nil, nil)
	require.ErrorIs(t, worker.Handle(ctx, f.queue.jobs[0]), boom)

	job, err := f.jobs.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Equal(t, "disk full", *job.ErrorMessage)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	f.service.GiveUp(cancelled, f.queue.jobs[0], boom)

	status, err := f.service.GetStatus(ctx, principal, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFailed, status.Status)
	require.NotNil(t, status.Error)
	assert.Equal(t, "disk full", *status.Error)
}

func TestCreateJobRejectsMalformedFilters(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	_, err := f.service.CreateJob(ctx, principal, dto.ReportRequest{
		Type: models.ReportTypeFeeInvoices, Format: models.ReportFormatCSV, Filters: map[string]string{"from": "junk"},
	})
	requireAppError(t, err, "VALIDATION_ERROR")

	_, err = f.service.CreateJob(ctx, principal, dto.ReportRequest{
		Type: models.ReportTypeSalary, Format: models.ReportFormatCSV, Filters: map[string]string{"sort": "name", "order": "sideways"},
	})
	requireAppError(t, err, "VALIDATION_ERROR")
	assert.Empty(t, f.queue.jobs)
}

func TestWorkerFailsPermanentErrorsWithoutRetry(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateJob(ctx, principal, dto.ReportRequest{
		Type: models.ReportTypeSalary, Format: models.ReportFormatCSV, Filters: map[string]string{"sort": "colour", "order": "asc"},
	})
	require.NoError(t, err)

	worker := NewReportWorker(f.jobs, f.exports, nil, nil)
	require.NoError(t, worker.Handle(ctx, f.queue.jobs[0]))

	job, err := f.jobs.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFailed, job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Contains(t, *job.ErrorMessage, "unsupported sort key")

	created, err = f.service.CreateJob(ctx, principal, dto.ReportRequest{Type: models.ReportTypeSalary, Format: models.ReportFormatCSV})
	require.NoError(t, err)
	worker = NewReportWorker(f.jobs, stubGenerator{err: appErrors.Clone(appErrors.ErrExportFailed, "could not export salary report")}, nil, nil)
	require.NoError(t, worker.Handle(ctx, f.queue.jobs[1]))

	job, err = f.jobs.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFailed, job.Status)
	assert.Equal(t, "could not export salary report", *job.ErrorMessage)
}

func TestResolveDownloadRejectsBadTokens(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	_, err := f.service.ResolveDownload(ctx, "garbage")
	requireAppError(t, err, "FORBIDDEN")

	created, err := f.service.CreateJob(ctx, principal, dto.ReportRequest{Type: models.ReportTypeSalary, Format: models.ReportFormatCSV})
	require.NoError(t, err)
	job, err := f.jobs.GetByID(ctx, created.ID)
	require.NoError(t, err)
	result, err := f.exports.Generate(ctx, job)
	require.NoError(t, err)

	// Signed but never recorded on the job: still queued.
	_, err = f.service.ResolveDownload(ctx, result.Token)
	requireAppError(t, err, "FORBIDDEN")
}

func TestRecoverPendingJobsRequeues(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	require.NoError(t, f.jobs.Create(ctx, &models.ReportJob{SchoolID: testSchool, Type: models.ReportTypeHomework, Status: models.ReportStatusQueued}))

	f.service.RecoverPendingJobs(ctx)
	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, ReportJobType, f.queue.jobs[0].Type)
}
