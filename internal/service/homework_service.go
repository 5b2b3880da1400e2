package service

import (
	"context"
	"net/url"
	"time"

	"github.com/noah-isme/campusconnect-api/internal/dto"
	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/pkg/export"
	"github.com/noah-isme/campusconnect-api/pkg/listing"
)

type homeworkRepository interface {
	List(ctx context.Context, schoolID string) ([]models.Homework, error)
}

var homeworkPipeline = resourcePipeline[models.Homework]{
	name: "homework",
	sorts: listing.Comparators[models.Homework]{
		"dueDate":    byDate(func(h models.Homework) models.Date { return h.DueDate }),
		"assignedOn": byDate(func(h models.Homework) models.Date { return h.AssignedOn }),
		"subject":    listing.ByString(func(h models.Homework) string { return h.Subject }),
	},
	fallback: listing.SortState{Key: "dueDate"},
}

var homeworkColumns = []export.Column{
	{Header: "Class", Key: "className"},
	{Header: "Subject", Key: "subject", Quote: export.QuoteAlways},
	{Header: "Title", Key: "title", Quote: export.QuoteAlways},
	{Header: "Teacher", Key: "teacherName", Quote: export.QuoteAlways},
	{Header: "Assigned On", Key: "assignedOn"},
	{Header: "Due Date", Key: "dueDate"},
	{Header: "Status", Key: "status"},
}

func homeworkRecord(h models.Homework) export.Record {
	return export.Record{
		"className":   h.ClassName,
		"subject":     h.Subject,
		"title":       h.Title,
		"teacherName": h.TeacherName,
		"assignedOn":  h.AssignedOn,
		"dueDate":     h.DueDate,
		"status":      h.Status,
	}
}

// HomeworkService lists homework assignments.
type HomeworkService struct {
	repo homeworkRepository
}

// NewHomeworkService constructs the homework service.
func NewHomeworkService(repo homeworkRepository) *HomeworkService {
	return &HomeworkService{repo: repo}
}

// List returns a page of homework.
func (s *HomeworkService) List(ctx context.Context, scope models.Scope, filter models.HomeworkFilter, q listing.Query) (listing.Result[models.Homework], error) {
	rows, err := s.repo.List(ctx, scope.SchoolID)
	if err != nil {
		return listing.Result[models.Homework]{}, internalErr(err, "failed to list homework")
	}
	return homeworkPipeline.page(rows, homeworkPredicates(filter), q)
}

// Dataset builds the homework export.
func (s *HomeworkService) Dataset(ctx context.Context, scope models.Scope, filters url.Values) (*NamedDataset, error) {
	filter, err := dto.HomeworkFilterFromQuery(filters)
	if err != nil {
		return nil, validationErr(err, "invalid homework filters")
	}
	sort, err := exportSort(filters)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, scope.SchoolID)
	if err != nil {
		return nil, internalErr(err, "failed to list homework")
	}
	rows, err = homeworkPipeline.all(rows, homeworkPredicates(filter), sort)
	if err != nil {
		return nil, err
	}
	return &NamedDataset{
		Subject:   string(models.ReportTypeHomework),
		Qualifier: qualifier(filter.ClassName, filter.Subject, filter.Status),
		Title:     "Homework",
		Data:      tabulate(homeworkColumns, rows, homeworkRecord),
	}, nil
}

func homeworkPredicates(f models.HomeworkFilter) []listing.Predicate[models.Homework] {
	from, to := dateRange(f.From, f.To)
	return []listing.Predicate[models.Homework]{
		listing.Contains(f.Search,
			func(h models.Homework) string { return h.Title },
			func(h models.Homework) string { return h.TeacherName }),
		listing.Equals(f.ClassName, func(h models.Homework) string { return h.ClassName }),
		listing.Equals(f.Subject, func(h models.Homework) string { return h.Subject }),
		listing.Equals(f.Status, func(h models.Homework) string { return string(h.Status) }),
		listing.DateBetween(from, to, func(h models.Homework) time.Time { return h.DueDate.Time }),
	}
}
