package service

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campusconnect-api/internal/dto"
	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/internal/repository"
	"github.com/noah-isme/campusconnect-api/pkg/cache"
	appErrors "github.com/noah-isme/campusconnect-api/pkg/errors"
	"github.com/noah-isme/campusconnect-api/pkg/export"
	"github.com/noah-isme/campusconnect-api/pkg/listing"
)

type invoiceRepository interface {
	List(ctx context.Context, schoolID string) ([]models.Invoice, error)
	FindByID(ctx context.Context, schoolID, id string) (*models.Invoice, error)
	MarkPaid(ctx context.Context, schoolID, id string, paidOn models.Date) (*models.Invoice, error)
}

var invoicePipeline = resourcePipeline[models.Invoice]{
	name: "invoices",
	sorts: listing.Comparators[models.Invoice]{
		"dueDate": byDate(func(i models.Invoice) models.Date { return i.DueDate }),
		"amount":  listing.ByOrdered(func(i models.Invoice) int64 { return i.Amount }),
		"status":  listing.ByString(func(i models.Invoice) string { return string(i.Status) }),
		"id":      listing.ByString(func(i models.Invoice) string { return i.ID }),
	},
	fallback: listing.SortState{Key: "dueDate"},
}

var invoiceColumns = []export.Column{
	{Header: "Invoice ID", Key: "id"},
	{Header: "Description", Key: "description", Quote: export.QuoteAlways},
	{Header: "Amount", Key: "amount"},
	{Header: "Due Date", Key: "dueDate"},
	{Header: "Status", Key: "status"},
}

func invoiceRecord(inv models.Invoice) export.Record {
	return export.Record{
		"id":          inv.ID,
		"description": inv.Description,
		"amount":      inv.Amount,
		"dueDate":     inv.DueDate,
		"status":      inv.Status,
	}
}

// InvoiceService handles fee invoice use-cases.
type InvoiceService struct {
	repo   invoiceRepository
	cache  *CacheService
	logger *zap.Logger
	today  func() models.Date
}

// NewInvoiceService constructs the invoice service.
func NewInvoiceService(repo invoiceRepository, cache *CacheService, logger *zap.Logger) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{repo: repo, cache: cache, logger: logger, today: models.Today}
}

// List returns a page of the caller's visible invoices.
func (s *InvoiceService) List(ctx context.Context, scope models.Scope, filter models.InvoiceFilter, q listing.Query) (listing.Result[models.Invoice], error) {
	rows, err := s.repo.List(ctx, scope.SchoolID)
	if err != nil {
		return listing.Result[models.Invoice]{}, internalErr(err, "failed to list invoices")
	}
	return invoicePipeline.page(rows, invoicePredicates(scope, filter), q)
}

// Rows returns every matching invoice in sort order.
func (s *InvoiceService) Rows(ctx context.Context, scope models.Scope, filter models.InvoiceFilter, sort listing.SortState) ([]models.Invoice, error) {
	rows, err := s.repo.List(ctx, scope.SchoolID)
	if err != nil {
		return nil, internalErr(err, "failed to list invoices")
	}
	return invoicePipeline.all(rows, invoicePredicates(scope, filter), sort)
}

// Dataset builds the fee invoice export.
func (s *InvoiceService) Dataset(ctx context.Context, scope models.Scope, filters url.Values) (*NamedDataset, error) {
	filter, err := dto.InvoiceFilterFromQuery(filters)
	if err != nil {
		return nil, validationErr(err, "invalid invoice filters")
	}
	sort, err := exportSort(filters)
	if err != nil {
		return nil, err
	}
	rows, err := s.Rows(ctx, scope, filter, sort)
	if err != nil {
		return nil, err
	}
	return &NamedDataset{
		Subject:   string(models.ReportTypeFeeInvoices),
		Qualifier: qualifier(filter.Status, filter.StudentID),
		Title:     "Fee Invoices",
		Data:      tabulate(invoiceColumns, rows, invoiceRecord),
	}, nil
}

// Pay settles a payable invoice with today's date. Parents may only pay their own children's invoices.
func (s *InvoiceService) Pay(ctx context.Context, scope models.Scope, id string) (*models.Invoice, error) {
	current, err := s.repo.FindByID(ctx, scope.SchoolID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "invoice not found")
		}
		return nil, internalErr(err, "failed to load invoice")
	}
	if !scope.CanSeeStudent(current.StudentID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invoice belongs to another student")
	}
	paid, err := s.repo.MarkPaid(ctx, scope.SchoolID, id, s.today())
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "invoice not found")
		case errors.Is(err, repository.ErrStateConflict):
			return nil, appErrors.Clone(appErrors.ErrConflict, "invoice already paid")
		default:
			return nil, internalErr(err, "failed to pay invoice")
		}
	}
	s.invalidate(ctx, scope.SchoolID)
	s.logger.Info("invoice paid", zap.String("school_id", scope.SchoolID), zap.String("invoice_id", id), zap.String("actor", scope.UserID))
	return paid, nil
}

// Summary aggregates invoices by status. The boolean reports a cache hit.
func (s *InvoiceService) Summary(ctx context.Context, scope models.Scope, studentID string) (*models.FeeSummary, bool, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID != "" && !scope.CanSeeStudent(studentID) {
		return nil, false, appErrors.Clone(appErrors.ErrForbidden, "student not linked to caller")
	}
	key := cache.Key(scope.SchoolID, "fees", "summary", summaryAudience(scope, studentID))
	var cached models.FeeSummary
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	rows, err := s.repo.List(ctx, scope.SchoolID)
	if err != nil {
		return nil, false, internalErr(err, "failed to summarise invoices")
	}
	preds := invoicePredicates(scope, models.InvoiceFilter{StudentID: studentID})
	summary := summarizeInvoices(scope.SchoolID, studentID, listing.Filter(rows, preds...))
	_ = s.cache.Set(ctx, key, summary, 0)
	return summary, false, nil
}

func (s *InvoiceService) invalidate(ctx context.Context, schoolID string) {
	_ = s.cache.Invalidate(ctx, cache.Pattern(schoolID, "fees"))
}

func summarizeInvoices(schoolID, studentID string, rows []models.Invoice) *models.FeeSummary {
	summary := &models.FeeSummary{
		SchoolID:  schoolID,
		StudentID: studentID,
		Counts:    make(map[models.InvoiceStatus]int, len(models.InvoiceStatuses)),
		Totals:    make(map[models.InvoiceStatus]int64, len(models.InvoiceStatuses)),
		Invoices:  len(rows),
	}
	for _, status := range models.InvoiceStatuses {
		summary.Counts[status] = 0
		summary.Totals[status] = 0
	}
	for _, inv := range rows {
		summary.Counts[inv.Status]++
		summary.Totals[inv.Status] += inv.Amount
		if inv.Status == models.InvoiceStatusPaid {
			summary.Collected += inv.Amount
		} else {
			summary.Outstanding += inv.Amount
		}
	}
	return summary
}

// summaryAudience names whose invoices a summary covers, for the cache key.
func summaryAudience(scope models.Scope, studentID string) string {
	if studentID != "" {
		return "student-" + studentID
	}
	if scope.Role.Staff() {
		return "all"
	}
	ids := slices.Clone(scope.StudentIDs)
	slices.Sort(ids)
	return "students-" + strings.Join(ids, "+")
}

func invoicePredicates(scope models.Scope, f models.InvoiceFilter) []listing.Predicate[models.Invoice] {
	from, to := dateRange(f.From, f.To)
	preds := []listing.Predicate[models.Invoice]{
		studentScope(scope, func(i models.Invoice) string { return i.StudentID }),
		listing.Contains(f.Search,
			func(i models.Invoice) string { return i.ID },
			func(i models.Invoice) string { return i.Description }),
		listing.Equals(f.Status, func(i models.Invoice) string { return string(i.Status) }),
		listing.Equals(f.StudentID, func(i models.Invoice) string { return i.StudentID }),
		listing.DateBetween(from, to, func(i models.Invoice) time.Time { return i.DueDate.Time }),
	}
	if len(f.StudentIDs) > 0 {
		preds = append(preds, func(i models.Invoice) bool { return slices.Contains(f.StudentIDs, i.StudentID) })
	}
	return preds
}
