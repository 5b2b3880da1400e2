package service

import (
	"cmp"
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/noah-isme/campusconnect-api/internal/dto"
	"github.com/noah-isme/campusconnect-api/internal/models"
	appErrors "github.com/noah-isme/campusconnect-api/pkg/errors"
	"github.com/noah-isme/campusconnect-api/pkg/export"
	"github.com/noah-isme/campusconnect-api/pkg/listing"
)

type performanceRepository interface {
	List(ctx context.Context, schoolID string) ([]models.TeacherPerformance, error)
}

var performancePipeline = resourcePipeline[models.TeacherPerformance]{
	name: "teacher performance",
	sorts: listing.Comparators[models.TeacherPerformance]{
		"rating":         listing.ByOrdered(func(p models.TeacherPerformance) float64 { return p.Rating }),
		"passRate":       listing.ByOrdered(func(p models.TeacherPerformance) float64 { return p.PassRate }),
		"attendanceRate": listing.ByOrdered(func(p models.TeacherPerformance) float64 { return p.AttendanceRate }),
		"name":           listing.ByString(func(p models.TeacherPerformance) string { return p.TeacherName }),
	},
	fallback: listing.SortState{Key: "rating", Desc: true},
}

var performanceColumns = []export.Column{
	{Header: "Teacher ID", Key: "id"},
	{Header: "Teacher", Key: "teacherName", Quote: export.QuoteAlways},
	{Header: "Subject", Key: "subject", Quote: export.QuoteAlways},
	{Header: "Term", Key: "term"},
	{Header: "Attendance Rate (%)", Key: "attendanceRate"},
	{Header: "Pass Rate (%)", Key: "passRate"},
	{Header: "Rating", Key: "rating"},
}

func performanceRecord(p models.TeacherPerformance) export.Record {
	return export.Record{
		"id":             p.ID,
		"teacherName":    p.TeacherName,
		"subject":        p.Subject,
		"term":           p.Term,
		"attendanceRate": p.AttendanceRate,
		"passRate":       p.PassRate,
		"rating":         p.Rating,
	}
}

// PerformanceService serves teacher rankings, growth and comparison views.
type PerformanceService struct {
	repo performanceRepository
}

// NewPerformanceService constructs the performance service.
func NewPerformanceService(repo performanceRepository) *PerformanceService {
	return &PerformanceService{repo: repo}
}

// List returns a page of performance rows.
func (s *PerformanceService) List(ctx context.Context, scope models.Scope, filter models.PerformanceFilter, q listing.Query) (listing.Result[models.TeacherPerformance], error) {
	rows, err := s.repo.List(ctx, scope.SchoolID)
	if err != nil {
		return listing.Result[models.TeacherPerformance]{}, internalErr(err, "failed to list teacher performance")
	}
	return performancePipeline.page(rows, performancePredicates(filter), q)
}

// Rankings orders teachers by rating, then pass rate, then name. Equal rating
// and pass rate share a rank.
func (s *PerformanceService) Rankings(ctx context.Context, scope models.Scope, filter models.PerformanceFilter) ([]models.TeacherRanking, error) {
	rows, err := s.repo.List(ctx, scope.SchoolID)
	if err != nil {
		return nil, internalErr(err, "failed to rank teachers")
	}
	rows = listing.Filter(rows, performancePredicates(filter)...)
	slices.SortStableFunc(rows, func(a, b models.TeacherPerformance) int {
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		if c := cmp.Compare(b.PassRate, a.PassRate); c != 0 {
			return c
		}
		return cmp.Compare(strings.ToLower(a.TeacherName), strings.ToLower(b.TeacherName))
	})
	rankings := make([]models.TeacherRanking, len(rows))
	for i, row := range rows {
		rank := i + 1
		if i > 0 && row.Rating == rows[i-1].Rating && row.PassRate == rows[i-1].PassRate {
			rank = rankings[i-1].Rank
		}
		rankings[i] = models.TeacherRanking{Rank: rank, TeacherPerformance: row}
	}
	return rankings, nil
}

// Compare returns the requested teachers side by side in the order asked for.
func (s *PerformanceService) Compare(ctx context.Context, scope models.Scope, ids []string) ([]models.TeacherPerformance, error) {
	if len(ids) < 2 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "select at least two teachers to compare")
	}
	rows, err := s.repo.List(ctx, scope.SchoolID)
	if err != nil {
		return nil, internalErr(err, "failed to load teacher performance")
	}
	byID := make(map[string]models.TeacherPerformance, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	out := make([]models.TeacherPerformance, 0, len(ids))
	var missing []string
	for _, id := range ids {
		row, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		out = append(out, row)
	}
	if len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown teachers: %s", strings.Join(missing, ", ")))
	}
	return out, nil
}

// GrowthDataset builds the teacher growth export.
func (s *PerformanceService) GrowthDataset(ctx context.Context, scope models.Scope, filters url.Values) (*NamedDataset, error) {
	filter := dto.PerformanceFilterFromQuery(filters)
	sort, err := exportSort(filters)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, scope.SchoolID)
	if err != nil {
		return nil, internalErr(err, "failed to list teacher performance")
	}
	rows, err = performancePipeline.all(rows, performancePredicates(filter), sort)
	if err != nil {
		return nil, err
	}
	return &NamedDataset{
		Subject:   string(models.ReportTypeTeacherGrowth),
		Qualifier: qualifier(filter.Subject, filter.Term),
		Title:     "Teacher Growth Report",
		Data:      tabulate(performanceColumns, rows, performanceRecord),
	}, nil
}

// ComparisonDataset builds the export of a comparison selected through the ids filter.
func (s *PerformanceService) ComparisonDataset(ctx context.Context, scope models.Scope, filters url.Values) (*NamedDataset, error) {
	ids := dto.IDsFromQuery(filters)
	rows, err := s.Compare(ctx, scope, ids)
	if err != nil {
		return nil, err
	}
	return &NamedDataset{
		Subject:   string(models.ReportTypeTeacherComparison),
		Qualifier: strings.Join(ids, "-"),
		Title:     "Teacher Comparison",
		Data:      tabulate(performanceColumns, rows, performanceRecord),
	}, nil
}

func performancePredicates(f models.PerformanceFilter) []listing.Predicate[models.TeacherPerformance] {
	return []listing.Predicate[models.TeacherPerformance]{
		listing.Contains(f.Search,
			func(p models.TeacherPerformance) string { return p.TeacherName },
			func(p models.TeacherPerformance) string { return p.ID }),
		listing.Equals(f.Subject, func(p models.TeacherPerformance) string { return p.Subject }),
		listing.Equals(f.Term, func(p models.TeacherPerformance) string { return p.Term }),
	}
}
