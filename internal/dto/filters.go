package dto

import (
	"net/url"
	"strings"
	"time"

	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/pkg/listing"
)

// Query parameter names shared by list, export and report endpoints.
const (
	ParamSearch    = "search"
	ParamStatus    = "status"
	ParamStudentID = "studentId"
	ParamFrom      = "from"
	ParamTo        = "to"
	ParamRole      = "role"
	ParamMonth     = "month"
	ParamType      = "type"
	ParamAction    = "action"
	ParamHostel    = "hostel"
	ParamClass     = "class"
	ParamSubject   = "subject"
	ParamTerm      = "term"
	ParamIDs       = "ids"
	ParamSort      = "sort"
	ParamOrder     = "order"
)

// InvoiceFilterFromQuery parses invoice list criteria.
func InvoiceFilterFromQuery(values url.Values) (models.InvoiceFilter, error) {
	from, to, err := dateRange(values)
	if err != nil {
		return models.InvoiceFilter{}, err
	}
	return models.InvoiceFilter{
		Search:    get(values, ParamSearch),
		Status:    get(values, ParamStatus),
		StudentID: get(values, ParamStudentID),
		From:      from,
		To:        to,
	}, nil
}

// AttendanceFilterFromQuery parses attendance list criteria.
func AttendanceFilterFromQuery(values url.Values) (models.AttendanceFilter, error) {
	from, to, err := dateRange(values)
	if err != nil {
		return models.AttendanceFilter{}, err
	}
	return models.AttendanceFilter{
		StudentID: get(values, ParamStudentID),
		Status:    get(values, ParamStatus),
		From:      from,
		To:        to,
	}, nil
}

// SalaryFilterFromQuery parses salary list criteria.
func SalaryFilterFromQuery(values url.Values) models.SalaryFilter {
	return models.SalaryFilter{
		Search: get(values, ParamSearch),
		Role:   get(values, ParamRole),
		Month:  get(values, ParamMonth),
		Status: get(values, ParamStatus),
	}
}

// RequestFilterFromQuery parses parent request queue criteria.
func RequestFilterFromQuery(values url.Values) models.RequestFilter {
	return models.RequestFilter{
		Search: get(values, ParamSearch),
		Type:   get(values, ParamType),
	}
}

// HistoryFilterFromQuery parses request history criteria.
func HistoryFilterFromQuery(values url.Values) models.HistoryFilter {
	return models.HistoryFilter{
		Search: get(values, ParamSearch),
		Action: get(values, ParamAction),
	}
}

// HostelFilterFromQuery parses hostel allocation criteria.
func HostelFilterFromQuery(values url.Values) models.HostelFilter {
	return models.HostelFilter{
		Search: get(values, ParamSearch),
		Hostel: get(values, ParamHostel),
		Status: get(values, ParamStatus),
	}
}

// HomeworkFilterFromQuery parses homework criteria; from/to bound the due date.
func HomeworkFilterFromQuery(values url.Values) (models.HomeworkFilter, error) {
	from, to, err := dateRange(values)
	if err != nil {
		return models.HomeworkFilter{}, err
	}
	return models.HomeworkFilter{
		Search:    get(values, ParamSearch),
		ClassName: get(values, ParamClass),
		Subject:   get(values, ParamSubject),
		Status:    get(values, ParamStatus),
		From:      from,
		To:        to,
	}, nil
}

// PerformanceFilterFromQuery parses teacher performance criteria.
func PerformanceFilterFromQuery(values url.Values) models.PerformanceFilter {
	return models.PerformanceFilter{
		Search:  get(values, ParamSearch),
		Subject: get(values, ParamSubject),
		Term:    get(values, ParamTerm),
	}
}

// IDsFromQuery reads a comma separated or repeated ids parameter, dropping blanks and duplicates.
func IDsFromQuery(values url.Values) []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, raw := range values[ParamIDs] {
		for _, part := range strings.Split(raw, ",") {
			id := strings.TrimSpace(part)
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// ValuesFromMap turns persisted report filters back into query values.
func ValuesFromMap(filters map[string]string) url.Values {
	values := url.Values{}
	for k, v := range filters {
		values.Set(k, v)
	}
	return values
}

// MapFromValues keeps the first value of every non-empty parameter.
func MapFromValues(values url.Values) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 && strings.TrimSpace(v[0]) != "" {
			out[k] = strings.TrimSpace(v[0])
		}
	}
	return out
}

// CheckFilters rejects malformed date ranges and sort or paging parameters.
func CheckFilters(values url.Values) error {
	if _, _, err := dateRange(values); err != nil {
		return err
	}
	_, err := listing.ParseQuery(values, listing.SortState{})
	return err
}

func get(values url.Values, key string) string {
	return strings.TrimSpace(values.Get(key))
}

func dateRange(values url.Values) (*models.Date, *models.Date, error) {
	from, to, err := listing.ParseDateRange(values.Get(ParamFrom), values.Get(ParamTo))
	if err != nil {
		return nil, nil, err
	}
	return toDate(from), toDate(to), nil
}

func toDate(t *time.Time) *models.Date {
	if t == nil {
		return nil
	}
	return models.NewDate(*t).Ptr()
}
