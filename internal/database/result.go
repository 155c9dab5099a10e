package database

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date form used for input and display.
const DateLayout = "2006-01-02"

const dateTimeLayout = "2006-01-02 15:04:05"

// Row is one record in column order. Values are whatever the driver
// produced; use the accessors instead of type switching at call sites.
type Row []interface{}

// ResultSet holds a fully materialized query result.
type ResultSet struct {
	Columns []string
	Rows    []Row
}

// Empty reports whether the query returned no rows.
func (rs *ResultSet) Empty() bool {
	return rs == nil || len(rs.Rows) == 0
}

// Value returns column i, or nil when the row is shorter.
func (r Row) Value(i int) interface{} {
	if i < 0 || i >= len(r) {
		return nil
	}
	return r[i]
}

// Int64 converts column i to an integer. Drivers disagree on integer widths
// and some return DECIMAL or COUNT results as text.
func (r Row) Int64(i int) (int64, error) {
	switch v := r.Value(i).(type) {
	case nil:
		return 0, fmt.Errorf("column %d is null", i)
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case float32:
		return int64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return parseInt(string(v))
	case string:
		return parseInt(v)
	default:
		return parseInt(fmt.Sprint(v))
	}
}

// Int returns column i as an int, or fallback when it is not numeric.
func (r Row) Int(i int, fallback int) int {
	n, err := r.Int64(i)
	if err != nil {
		return fallback
	}
	return int(n)
}

// Float64 converts column i to a float.
func (r Row) Float64(i int) (float64, error) {
	switch v := r.Value(i).(type) {
	case nil:
		return 0, fmt.Errorf("column %d is null", i)
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case []byte:
		return strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		n, err := r.Int64(i)
		return float64(n), err
	}
}

// String renders column i as text; NULL renders as "".
func (r Row) String(i int) string {
	switch v := r.Value(i).(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return formatTime(v)
	default:
		return fmt.Sprint(v)
	}
}

// Display renders column i for a table cell; NULL renders as "N/A".
func (r Row) Display(i int) string {
	if r.Value(i) == nil {
		return "N/A"
	}
	return r.String(i)
}

// NullString returns column i keeping NULL distinct from "".
func (r Row) NullString(i int) sql.NullString {
	if r.Value(i) == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: r.String(i), Valid: true}
}

// NullTime returns column i as a time. Text values are parsed as dates.
func (r Row) NullTime(i int) sql.NullTime {
	switch v := r.Value(i).(type) {
	case time.Time:
		return sql.NullTime{Time: v, Valid: true}
	case string:
		return parseTime(v)
	case []byte:
		return parseTime(string(v))
	default:
		return sql.NullTime{}
	}
}

func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int64(f), nil
}

func parseTime(s string) sql.NullTime {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateLayout, dateTimeLayout, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return sql.NullTime{Time: t, Valid: true}
		}
	}
	return sql.NullTime{}
}

func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(DateLayout)
	}
	return t.Format(dateTimeLayout)
}
