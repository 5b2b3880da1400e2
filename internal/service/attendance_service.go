package service

import (
	"context"
	"math"
	"net/url"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campusconnect-api/internal/dto"
	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/pkg/cache"
	appErrors "github.com/noah-isme/campusconnect-api/pkg/errors"
	"github.com/noah-isme/campusconnect-api/pkg/export"
	"github.com/noah-isme/campusconnect-api/pkg/listing"
)

type attendanceRepository interface {
	List(ctx context.Context, schoolID string) ([]models.AttendanceRecord, error)
}

var attendancePipeline = resourcePipeline[models.AttendanceRecord]{
	name: "attendance",
	sorts: listing.Comparators[models.AttendanceRecord]{
		"date":      byDate(func(r models.AttendanceRecord) models.Date { return r.Date }),
		"status":    listing.ByString(func(r models.AttendanceRecord) string { return string(r.Status) }),
		"studentId": listing.ByString(func(r models.AttendanceRecord) string { return r.StudentID }),
	},
	fallback: listing.SortState{Key: "date", Desc: true},
}

var attendanceColumns = []export.Column{
	{Header: "Date", Key: "date"},
	{Header: "Student ID", Key: "studentId"},
	{Header: "Status", Key: "status"},
	{Header: "Reason", Key: "reason", Quote: export.QuoteAlways, Placeholder: "-"},
	{Header: "Arrival", Key: "arrival", Placeholder: "-"},
	{Header: "Departure", Key: "departure", Placeholder: "-"},
}

func attendanceRecord(r models.AttendanceRecord) export.Record {
	return export.Record{
		"date":      r.Date,
		"studentId": r.StudentID,
		"status":    r.Status,
		"reason":    r.Reason,
		"arrival":   r.Arrival,
		"departure": r.Departure,
	}
}

// AttendanceService exposes attendance history and summaries.
type AttendanceService struct {
	repo   attendanceRepository
	cache  *CacheService
	logger *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, cache *CacheService, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, cache: cache, logger: logger}
}

// List returns a page of attendance records visible to the caller.
func (s *AttendanceService) List(ctx context.Context, scope models.Scope, filter models.AttendanceFilter, q listing.Query) (listing.Result[models.AttendanceRecord], error) {
	rows, err := s.repo.List(ctx, scope.SchoolID)
	if err != nil {
		return listing.Result[models.AttendanceRecord]{}, internalErr(err, "failed to list attendance")
	}
	return attendancePipeline.page(rows, attendancePredicates(scope, filter), q)
}

// Dataset builds the attendance export.
func (s *AttendanceService) Dataset(ctx context.Context, scope models.Scope, filters url.Values) (*NamedDataset, error) {
	filter, err := dto.AttendanceFilterFromQuery(filters)
	if err != nil {
		return nil, validationErr(err, "invalid attendance filters")
	}
	sort, err := exportSort(filters)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, scope.SchoolID)
	if err != nil {
		return nil, internalErr(err, "failed to list attendance")
	}
	rows, err = attendancePipeline.all(rows, attendancePredicates(scope, filter), sort)
	if err != nil {
		return nil, err
	}
	return &NamedDataset{
		Subject:   string(models.ReportTypeAttendance),
		Qualifier: qualifier(filter.StudentID, filter.Status),
		Title:     "Attendance",
		Data:      tabulate(attendanceColumns, rows, attendanceRecord),
	}, nil
}

// Summary counts days by status for one student (or the whole school for staff)
// over an optional range. The boolean reports a cache hit.
func (s *AttendanceService) Summary(ctx context.Context, scope models.Scope, filter models.AttendanceFilter) (*models.AttendanceSummary, bool, error) {
	if filter.StudentID == "" && !scope.Role.Staff() {
		if len(scope.StudentIDs) != 1 {
			return nil, false, appErrors.Clone(appErrors.ErrValidation, "studentId is required")
		}
		filter.StudentID = scope.StudentIDs[0]
	}
	if filter.StudentID != "" && !scope.CanSeeStudent(filter.StudentID) {
		return nil, false, appErrors.Clone(appErrors.ErrForbidden, "student not linked to caller")
	}

	key := cache.Key(scope.SchoolID, "attendance", "summary", orAll(filter.StudentID), dateKey(filter.From), dateKey(filter.To))
	var cached models.AttendanceSummary
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	rows, err := s.repo.List(ctx, scope.SchoolID)
	if err != nil {
		return nil, false, internalErr(err, "failed to summarise attendance")
	}
	filter.Status = ""
	summary := summarizeAttendance(filter, listing.Filter(rows, attendancePredicates(scope, filter)...))
	_ = s.cache.Set(ctx, key, summary, 0)
	return summary, false, nil
}

func summarizeAttendance(filter models.AttendanceFilter, rows []models.AttendanceRecord) *models.AttendanceSummary {
	summary := &models.AttendanceSummary{StudentID: filter.StudentID, From: filter.From, To: filter.To}
	for _, r := range rows {
		switch r.Status {
		case models.AttendanceStatusPresent:
			summary.Present++
		case models.AttendanceStatusAbsent:
			summary.Absent++
		case models.AttendanceStatusHoliday:
			summary.Holiday++
		}
	}
	if counted := summary.Present + summary.Absent; counted > 0 {
		summary.Percentage = math.Round(float64(summary.Present)/float64(counted)*10000) / 100
	}
	return summary
}

func attendancePredicates(scope models.Scope, f models.AttendanceFilter) []listing.Predicate[models.AttendanceRecord] {
	from, to := dateRange(f.From, f.To)
	preds := []listing.Predicate[models.AttendanceRecord]{
		studentScope(scope, func(r models.AttendanceRecord) string { return r.StudentID }),
		listing.Equals(f.StudentID, func(r models.AttendanceRecord) string { return r.StudentID }),
		listing.Equals(f.Status, func(r models.AttendanceRecord) string { return string(r.Status) }),
		listing.DateBetween(from, to, func(r models.AttendanceRecord) time.Time { return r.Date.Time }),
	}
	if len(f.StudentIDs) > 0 {
		preds = append(preds, func(r models.AttendanceRecord) bool { return slices.Contains(f.StudentIDs, r.StudentID) })
	}
	return preds
}

func orAll(v string) string {
	if v == "" {
		return "all"
	}
	return v
}

func dateKey(d *models.Date) string {
	if d == nil {
		return "open"
	}
	return d.String()
}
