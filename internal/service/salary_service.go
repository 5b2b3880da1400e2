package service

import (
	"context"
	"database/sql"
	"errors"
	"net/url"

	"go.uber.org/zap"

	"github.com/noah-isme/campusconnect-api/internal/dto"
	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/internal/repository"
	appErrors "github.com/noah-isme/campusconnect-api/pkg/errors"
	"github.com/noah-isme/campusconnect-api/pkg/export"
	"github.com/noah-isme/campusconnect-api/pkg/listing"
)

type salaryRepository interface {
	List(ctx context.Context, schoolID string) ([]models.StaffSalaryRecord, error)
	MarkPaid(ctx context.Context, schoolID, id string, paidOn models.Date) (*models.StaffSalaryRecord, error)
}

var salaryPipeline = resourcePipeline[models.StaffSalaryRecord]{
	name: "salaries",
	sorts: listing.Comparators[models.StaffSalaryRecord]{
		"name":   listing.ByString(func(r models.StaffSalaryRecord) string { return r.Name }),
		"salary": listing.ByOrdered(func(r models.StaffSalaryRecord) int64 { return r.Salary }),
		"month":  listing.ByString(func(r models.StaffSalaryRecord) string { return r.Month }),
		"status": listing.ByString(func(r models.StaffSalaryRecord) string { return string(r.Status) }),
	},
	fallback: listing.SortState{Key: "name"},
}

var salaryColumns = []export.Column{
	{Header: "Staff ID", Key: "id"},
	{Header: "Name", Key: "name", Quote: export.QuoteAlways},
	{Header: "Role", Key: "role", Quote: export.QuoteAlways},
	{Header: "Month", Key: "month"},
	{Header: "Salary", Key: "salary"},
	{Header: "Status", Key: "status"},
	{Header: "Paid On", Key: "paidOn", Placeholder: "-"},
}

func salaryRecord(r models.StaffSalaryRecord) export.Record {
	return export.Record{
		"id":     r.ID,
		"name":   r.Name,
		"role":   r.Role,
		"month":  r.Month,
		"salary": r.Salary,
		"status": r.Status,
		"paidOn": r.PaidOn,
	}
}

// SalaryService handles staff payroll use-cases.
type SalaryService struct {
	repo   salaryRepository
	logger *zap.Logger
	today  func() models.Date
}

// NewSalaryService constructs the salary service.
func NewSalaryService(repo salaryRepository, logger *zap.Logger) *SalaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalaryService{repo: repo, logger: logger, today: models.Today}
}

// List returns a page of salary records.
func (s *SalaryService) List(ctx context.Context, scope models.Scope, filter models.SalaryFilter, q listing.Query) (listing.Result[models.StaffSalaryRecord], error) {
	rows, err := s.repo.List(ctx, scope.SchoolID)
	if err != nil {
		return listing.Result[models.StaffSalaryRecord]{}, internalErr(err, "failed to list salaries")
	}
	return salaryPipeline.page(rows, salaryPredicates(filter), q)
}

// Dataset builds the salary report export.
func (s *SalaryService) Dataset(ctx context.Context, scope models.Scope, filters url.Values) (*NamedDataset, error) {
	filter := dto.SalaryFilterFromQuery(filters)
	sort, err := exportSort(filters)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, scope.SchoolID)
	if err != nil {
		return nil, internalErr(err, "failed to list salaries")
	}
	rows, err = salaryPipeline.all(rows, salaryPredicates(filter), sort)
	if err != nil {
		return nil, err
	}
	return &NamedDataset{
		Subject:   string(models.ReportTypeSalary),
		Qualifier: qualifier(filter.Month, filter.Status),
		Title:     "Staff Salary Report",
		Data:      tabulate(salaryColumns, rows, salaryRecord),
	}, nil
}

// Pay moves a Pending salary to Paid with today's date.
func (s *SalaryService) Pay(ctx context.Context, scope models.Scope, id string) (*models.StaffSalaryRecord, error) {
	rec, err := s.repo.MarkPaid(ctx, scope.SchoolID, id, s.today())
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "salary record not found")
		case errors.Is(err, repository.ErrStateConflict):
			return nil, appErrors.Clone(appErrors.ErrConflict, "salary already paid")
		default:
			return nil, internalErr(err, "failed to pay salary")
		}
	}
	s.logger.Info("salary paid", zap.String("school_id", scope.SchoolID), zap.String("salary_id", id), zap.String("actor", scope.UserID))
	return rec, nil
}

func salaryPredicates(f models.SalaryFilter) []listing.Predicate[models.StaffSalaryRecord] {
	return []listing.Predicate[models.StaffSalaryRecord]{
		listing.Contains(f.Search,
			func(r models.StaffSalaryRecord) string { return r.Name },
			func(r models.StaffSalaryRecord) string { return r.ID }),
		listing.Equals(f.Role, func(r models.StaffSalaryRecord) string { return r.Role }),
		listing.Equals(f.Month, func(r models.StaffSalaryRecord) string { return r.Month }),
		listing.Equals(f.Status, func(r models.StaffSalaryRecord) string { return string(r.Status) }),
	}
}
