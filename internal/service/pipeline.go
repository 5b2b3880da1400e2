package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/campusconnect-api/internal/models"
	appErrors "github.com/noah-isme/campusconnect-api/pkg/errors"
	"github.com/noah-isme/campusconnect-api/pkg/listing"
)

// resourcePipeline binds a resource's sort keys to the shared listing pipeline.
type resourcePipeline[T any] struct {
	name     string
	sorts    listing.Comparators[T]
	fallback listing.SortState
}

// page filters, sorts and paginates rows for a list endpoint.
func (p resourcePipeline[T]) page(rows []T, preds []listing.Predicate[T], q listing.Query) (listing.Result[T], error) {
	if q.Sort.Key == "" {
		q.Sort = p.fallback
	}
	result, err := listing.Apply(rows, preds, q, p.sorts)
	if err != nil {
		return listing.Result[T]{}, p.mapErr(err)
	}
	return result, nil
}

// all filters and sorts without paging, for exports.
func (p resourcePipeline[T]) all(rows []T, preds []listing.Predicate[T], sort listing.SortState) ([]T, error) {
	if sort.Key == "" {
		sort = p.fallback
	}
	sorted, err := listing.Sort(listing.Filter(rows, preds...), sort, p.sorts)
	if err != nil {
		return nil, p.mapErr(err)
	}
	return sorted, nil
}

func (p resourcePipeline[T]) mapErr(err error) error {
	if errors.Is(err, listing.ErrUnknownSortKey) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
			fmt.Sprintf("unsupported sort key for %s, expected one of %v", p.name, p.sorts.Keys()))
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list "+p.name)
}

// studentScope keeps only rows of students the caller is linked to.
func studentScope[T any](scope models.Scope, studentID func(T) string) listing.Predicate[T] {
	if scope.Role.Staff() {
		return nil
	}
	return func(row T) bool {
		return scope.CanSeeStudent(studentID(row))
	}
}

func dateRange(from, to *models.Date) (*time.Time, *time.Time) {
	var lo, hi *time.Time
	if from != nil {
		lo = &from.Time
	}
	if to != nil {
		hi = &to.Time
	}
	return lo, hi
}

func byDate[T any](field func(T) models.Date) func(a, b T) int {
	return listing.ByTime(func(row T) time.Time { return field(row).Time })
}

func internalErr(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func validationErr(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
