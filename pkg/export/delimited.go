package export

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

const (
	fieldSeparator = ","
	rowSeparator   = "\n"
)

var (
	// ErrNoColumns is returned when a dataset has nothing to render.
	ErrNoColumns = errors.New("export requires at least one column")
	// ErrUnsupportedValue is returned for cells that are not flat scalars.
	ErrUnsupportedValue = errors.New("unsupported cell value")
)

// QuoteMode controls how a column's cells are escaped.
type QuoteMode int

const (
	// QuoteMinimal emits raw text and only quotes cells that would otherwise break the row.
	QuoteMinimal QuoteMode = iota
	// QuoteAlways wraps every cell of the column in double quotes.
	QuoteAlways
)

// Column describes one output column.
type Column struct {
	Header      string
	Key         string
	Quote       QuoteMode
	Placeholder string
}

// Record is a flat row keyed by Column.Key.
type Record map[string]interface{}

// Dataset defines tabular export content.
type Dataset struct {
	Columns []Column
	Rows    []Record
}

// Headers returns the column labels in order.
func (d Dataset) Headers() []string {
	headers := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		headers[i] = col.Header
	}
	return headers
}

// BuildDelimitedText renders the header line followed by one line per row.
// The output has no trailing newline and no byte-order mark.
func BuildDelimitedText(columns []Column, rows []Record) (string, error) {
	if len(columns) == 0 {
		return "", ErrNoColumns
	}
	var b strings.Builder
	for i, col := range columns {
		if i > 0 {
			b.WriteString(fieldSeparator)
		}
		b.WriteString(escapeField(col.Header, QuoteMinimal))
	}
	for rowIdx, row := range rows {
		b.WriteString(rowSeparator)
		for i, col := range columns {
			if i > 0 {
				b.WriteString(fieldSeparator)
			}
			text, present, err := formatScalar(row[col.Key])
			if err != nil {
				return "", fmt.Errorf("row %d column %q: %w", rowIdx, col.Header, err)
			}
			if !present {
				b.WriteString(escapeField(col.Placeholder, QuoteMinimal))
				continue
			}
			b.WriteString(escapeField(text, col.Quote))
		}
	}
	return b.String(), nil
}

// Text renders the dataset through BuildDelimitedText.
func (d Dataset) Text() (string, error) {
	return BuildDelimitedText(d.Columns, d.Rows)
}

func escapeField(value string, mode QuoteMode) string {
	if mode == QuoteMinimal && !strings.ContainsAny(value, ",\"\r\n") {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// formatScalar converts a cell to text. present is false for absent or nil values.
func formatScalar(value interface{}) (text string, present bool, err error) {
	switch v := value.(type) {
	case nil:
		return "", false, nil
	case string:
		return v, true, nil
	case time.Time:
		if v.IsZero() {
			return "", false, nil
		}
		return formatTime(v), true, nil
	case *time.Time:
		if v == nil || v.IsZero() {
			return "", false, nil
		}
		return formatTime(*v), true, nil
	case fmt.Stringer:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Ptr && rv.IsNil() {
			return "", false, nil
		}
		if z, ok := v.(interface{ IsZero() bool }); ok && z.IsZero() {
			return "", false, nil
		}
		return v.String(), true, nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return "", false, nil
		}
		return formatScalar(rv.Elem().Interface())
	case reflect.String:
		return rv.String(), true, nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true, nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), true, nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true, nil
	default:
		return "", false, fmt.Errorf("%w: %T", ErrUnsupportedValue, value)
	}
}

// formatTime prints calendar dates as ISO dates and anything else as RFC 3339.
func formatTime(t time.Time) string {
	u := t.UTC()
	if u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
		return u.Format("2006-01-02")
	}
	return u.Format(time.RFC3339)
}
