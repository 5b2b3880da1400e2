// Package listing implements the filter → sort → paginate pipeline shared by every list endpoint.
package listing

import (
	"strings"
	"time"
)

// Predicate reports whether a row belongs to the filtered view.
type Predicate[T any] func(T) bool

// Filter returns the rows satisfying every predicate, in their original order.
// The input slice is never modified.
func Filter[T any](rows []T, preds ...Predicate[T]) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if matchAll(row, preds) {
			out = append(out, row)
		}
	}
	return out
}

func matchAll[T any](row T, preds []Predicate[T]) bool {
	for _, p := range preds {
		if p != nil && !p(row) {
			return false
		}
	}
	return true
}

// Contains matches rows where any field contains needle, ignoring case.
// An empty needle matches everything.
func Contains[T any](needle string, fields ...func(T) string) Predicate[T] {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return nil
	}
	return func(row T) bool {
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field(row)), needle) {
				return true
			}
		}
		return false
	}
}

// Equals matches rows whose field equals value, ignoring case.
// An empty value or "all" matches everything.
func Equals[T any](value string, field func(T) string) Predicate[T] {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "all") {
		return nil
	}
	return func(row T) bool {
		return strings.EqualFold(field(row), value)
	}
}

// DateBetween matches rows whose date falls inside [from, to] by calendar day.
// A nil bound leaves that side open.
func DateBetween[T any](from, to *time.Time, field func(T) time.Time) Predicate[T] {
	if from == nil && to == nil {
		return nil
	}
	var lo, hi time.Time
	if from != nil {
		lo = truncateDay(*from)
	}
	if to != nil {
		hi = truncateDay(*to)
	}
	return func(row T) bool {
		day := truncateDay(field(row))
		if from != nil && day.Before(lo) {
			return false
		}
		if to != nil && day.After(hi) {
			return false
		}
		return true
	}
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Query captures sort and pagination options.
type Query struct {
	Sort     SortState
	Page     int
	PageSize int
}

// Result is a filtered, sorted page of rows.
type Result[T any] struct {
	Items    []T
	Total    int
	Page     int
	PageSize int
	Sort     SortState
	Empty    bool
}

// Apply runs filter, then sort, then pagination. Total counts the filtered rows.
func Apply[T any](rows []T, preds []Predicate[T], q Query, comparators Comparators[T]) (Result[T], error) {
	filtered := Filter(rows, preds...)
	sorted, err := Sort(filtered, q.Sort, comparators)
	if err != nil {
		return Result[T]{}, err
	}
	page, size := normalizePage(q.Page, q.PageSize)
	// Compare in page units first so huge page numbers cannot overflow.
	start := len(sorted)
	if page-1 < len(sorted)/size+1 {
		start = min((page-1)*size, len(sorted))
	}
	end := min(start+size, len(sorted))
	return Result[T]{
		Items:    sorted[start:end],
		Total:    len(sorted),
		Page:     page,
		PageSize: size,
		Sort:     q.Sort,
		Empty:    len(sorted) == 0,
	}, nil
}

const (
	defaultPageSize = 20
	maxPageSize     = 500
)

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}
