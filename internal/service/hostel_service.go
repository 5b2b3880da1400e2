package service

import (
	"context"
	"net/url"

	"github.com/noah-isme/campusconnect-api/internal/dto"
	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/pkg/export"
	"github.com/noah-isme/campusconnect-api/pkg/listing"
)

type hostelRepository interface {
	List(ctx context.Context, schoolID string) ([]models.HostelAllocation, error)
}

var hostelPipeline = resourcePipeline[models.HostelAllocation]{
	name: "hostel allocations",
	sorts: listing.Comparators[models.HostelAllocation]{
		"room":   listing.ByString(func(a models.HostelAllocation) string { return a.Room }),
		"hostel": listing.ByString(func(a models.HostelAllocation) string { return a.Hostel }),
		"fee":    listing.ByOrdered(func(a models.HostelAllocation) int64 { return a.Fee }),
	},
	fallback: listing.SortState{Key: "room"},
}

var hostelColumns = []export.Column{
	{Header: "Hostel", Key: "hostel", Quote: export.QuoteAlways},
	{Header: "Room", Key: "room"},
	{Header: "Bed", Key: "bed"},
	{Header: "Student", Key: "studentName", Quote: export.QuoteAlways, Placeholder: "-"},
	{Header: "Status", Key: "status"},
	{Header: "Fee", Key: "fee"},
	{Header: "Allocated On", Key: "allocatedOn", Placeholder: "-"},
}

func hostelRecord(a models.HostelAllocation) export.Record {
	rec := export.Record{
		"hostel":      a.Hostel,
		"room":        a.Room,
		"bed":         a.Bed,
		"status":      a.Status,
		"fee":         a.Fee,
		"allocatedOn": a.AllocatedOn,
	}
	if a.StudentName != "" {
		rec["studentName"] = a.StudentName
	}
	return rec
}

// HostelService lists hostel bed allocations.
type HostelService struct {
	repo hostelRepository
}

// NewHostelService constructs the hostel service.
func NewHostelService(repo hostelRepository) *HostelService {
	return &HostelService{repo: repo}
}

// List returns a page of allocations.
func (s *HostelService) List(ctx context.Context, scope models.Scope, filter models.HostelFilter, q listing.Query) (listing.Result[models.HostelAllocation], error) {
	rows, err := s.repo.List(ctx, scope.SchoolID)
	if err != nil {
		return listing.Result[models.HostelAllocation]{}, internalErr(err, "failed to list hostel allocations")
	}
	return hostelPipeline.page(rows, hostelPredicates(filter), q)
}

// Dataset builds the hostel allocation export.
func (s *HostelService) Dataset(ctx context.Context, scope models.Scope, filters url.Values) (*NamedDataset, error) {
	filter := dto.HostelFilterFromQuery(filters)
	sort, err := exportSort(filters)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, scope.SchoolID)
	if err != nil {
		return nil, internalErr(err, "failed to list hostel allocations")
	}
	rows, err = hostelPipeline.all(rows, hostelPredicates(filter), sort)
	if err != nil {
		return nil, err
	}
	return &NamedDataset{
		Subject:   string(models.ReportTypeHostelAllocations),
		Qualifier: qualifier(filter.Hostel, filter.Status),
		Title:     "Hostel Allocations",
		Data:      tabulate(hostelColumns, rows, hostelRecord),
	}, nil
}

func hostelPredicates(f models.HostelFilter) []listing.Predicate[models.HostelAllocation] {
	return []listing.Predicate[models.HostelAllocation]{
		listing.Contains(f.Search,
			func(a models.HostelAllocation) string { return a.StudentName },
			func(a models.HostelAllocation) string { return a.Room },
			func(a models.HostelAllocation) string { return a.StudentID }),
		listing.Equals(f.Hostel, func(a models.HostelAllocation) string { return a.Hostel }),
		listing.Equals(f.Status, func(a models.HostelAllocation) string { return string(a.Status) }),
	}
}
