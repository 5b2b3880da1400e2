package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campusconnect-api/internal/dto"
	"github.com/noah-isme/campusconnect-api/internal/models"
	appErrors "github.com/noah-isme/campusconnect-api/pkg/errors"
	"github.com/noah-isme/campusconnect-api/pkg/export"
	"github.com/noah-isme/campusconnect-api/pkg/storage"
)

type fileStorage interface {
	Save(relPath string, data []byte) (string, error)
	Open(relPath string) (*os.File, error)
	Delete(relPath string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type datasetSource interface {
	Build(ctx context.Context, t models.ReportType, scope models.Scope, filters url.Values) (*NamedDataset, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService renders datasets into downloadable files, either straight to the
// response or into storage behind a signed URL.
type ExportService struct {
	datasets datasetSource
	storage  fileStorage
	csv      csvRenderer
	pdf      pdfRenderer
	signer   *storage.SignedURLSigner
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      ExportConfig
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(datasets datasetSource, files fileStorage, signer *storage.SignedURLSigner, metrics *MetricsService, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		datasets: datasets,
		storage:  files,
		csv:      csv,
		pdf:      pdf,
		signer:   signer,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
	}
}

// Download builds the dataset for t under the caller's scope and renders it as an attachment.
func (s *ExportService) Download(ctx context.Context, t models.ReportType, scope models.Scope, filters url.Values, format models.ReportFormat) (export.Attachment, error) {
	if !isValidFormat(format) {
		return export.Attachment{}, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	named, err := s.datasets.Build(ctx, t, scope, filters)
	if err != nil {
		return export.Attachment{}, err
	}
	return s.Render(named, format)
}

// Render serializes a dataset. Serialization failures surface as EXPORT_FAILED and change nothing.
func (s *ExportService) Render(named *NamedDataset, format models.ReportFormat) (export.Attachment, error) {
	var (
		body []byte
		mime string
		err  error
	)
	switch format {
	case models.ReportFormatCSV:
		body, err = s.csv.Render(named.Data)
		mime = export.CSVMIMEType
	case models.ReportFormatPDF:
		body, err = s.pdf.Render(named.Data, named.Title)
		mime = export.PDFMIMEType
	default:
		return export.Attachment{}, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	s.metrics.RecordExport(named.Subject, string(format), len(body), err)
	if err != nil {
		s.logger.Warn("export render failed", zap.String("dataset", named.Subject), zap.String("format", string(format)), zap.Error(err))
		return export.Attachment{}, appErrors.Wrap(err, appErrors.ErrExportFailed.Code, appErrors.ErrExportFailed.Status,
			fmt.Sprintf("could not export %s", strings.ReplaceAll(named.Subject, "_", " ")))
	}
	return export.Attachment{Filename: named.Filename(format), MIMEType: mime, Body: body}, nil
}

// Generate builds the job's dataset under the requester's snapshotted scope,
// stores the rendered file and signs a download URL for it.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	scope := models.ScopeFromViewer(job.SchoolID, job.Params.Viewer)
	named, err := s.datasets.Build(ctx, job.Type, scope, dto.ValuesFromMap(job.Params.Filters))
	if err != nil {
		return nil, err
	}
	att, err := s.Render(named, job.Params.Format)
	if err != nil {
		return nil, err
	}

	relPath := path.Join(export.SanitizeFilename(job.SchoolID), job.ID, att.Filename)
	relPath, err = s.storage.Save(relPath, att.Body)
	if err != nil {
		return nil, fmt.Errorf("store export: %w", err)
	}

	token, expiresAt, err := s.signer.Sign(job.ID, job.SchoolID, relPath)
	if err != nil {
		_ = s.storage.Delete(relPath)
		return nil, fmt.Errorf("sign export: %w", err)
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// Verify validates a download token.
func (s *ExportService) Verify(token string, allowExpired bool) (storage.DownloadGrant, error) {
	return s.signer.Verify(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// IsTokenError reports whether err came from token verification.
func IsTokenError(err error) bool {
	return errors.Is(err, storage.ErrTokenMalformed) || errors.Is(err, storage.ErrTokenSignature) || errors.Is(err, storage.ErrTokenExpired)
}

func isValidFormat(f models.ReportFormat) bool {
	return f == models.ReportFormatCSV || f == models.ReportFormatPDF
}
