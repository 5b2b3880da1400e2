package listing

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the ISO calendar-date layout accepted by list filters.
const DateLayout = "2006-01-02"

// ParseQuery reads sort and pagination parameters.
//
//	sort=<key>            column to sort by
//	order=asc|desc        explicit direction
//	current=<key>:<dir>   previously applied sort; with no explicit order the
//	                      new key is toggled against it
//	page, limit           1-based page number and page size
func ParseQuery(values url.Values, fallback SortState) (Query, error) {
	q := Query{Sort: fallback}

	current, err := ParseSortState(values.Get("current"))
	if err != nil {
		return Query{}, err
	}
	key := strings.TrimSpace(values.Get("sort"))
	order := strings.TrimSpace(values.Get("order"))
	switch {
	case key != "" && order != "":
		desc, err := parseDirection(order)
		if err != nil {
			return Query{}, err
		}
		q.Sort = SortState{Key: key, Desc: desc}
	case key != "":
		q.Sort = current.Toggle(key)
	case current.Key != "":
		q.Sort = current
	}

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return Query{}, fmt.Errorf("invalid page %q", raw)
		}
		q.Page = page
	}
	if raw := values.Get("limit"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return Query{}, fmt.Errorf("invalid limit %q", raw)
		}
		q.PageSize = size
	}
	q.Page, q.PageSize = normalizePage(q.Page, q.PageSize)
	return q, nil
}

// ParseDate parses an optional ISO date; empty input yields nil.
func ParseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return &t, nil
}

// ParseDateRange parses from/to and rejects inverted ranges.
func ParseDateRange(fromRaw, toRaw string) (*time.Time, *time.Time, error) {
	from, err := ParseDate(fromRaw)
	if err != nil {
		return nil, nil, err
	}
	to, err := ParseDate(toRaw)
	if err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, fmt.Errorf("date range end %s is before start %s", toRaw, fromRaw)
	}
	return from, to, nil
}
