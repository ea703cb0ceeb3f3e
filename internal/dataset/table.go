package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"renewables/internal/core"
)

// Column names of the tabular source format.
const (
	ColumnDate       = "date"
	ColumnState      = "state"
	ColumnRenewables = "renewables"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"2006-01",
	"2006",
}

// ParseOptions controls how malformed rows are treated.
type ParseOptions struct {
	// SkipInvalid drops malformed rows instead of failing on the first one.
	SkipInvalid bool
}

// ParseResult holds the parsed records plus how many rows were dropped.
type ParseResult struct {
	Records []core.Record
	Skipped int
}

// RowError reports a malformed row; Row is 1-based and counts the header.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// ParseTable converts a header plus data rows into records. Columns are found by
// name, case-insensitively, so extra columns and any ordering are accepted.
func ParseTable(rows [][]string, opts ParseOptions) (ParseResult, error) {
	if len(rows) == 0 {
		return ParseResult{Records: []core.Record{}}, nil
	}
	header := rows[0]
	colDate := indexOf(header, ColumnDate)
	colState := indexOf(header, ColumnState)
	colValue := indexOf(header, ColumnRenewables)
	if colDate == -1 || colState == -1 || colValue == -1 {
		missing := make([]string, 0, 3)
		if colDate == -1 {
			missing = append(missing, ColumnDate)
		}
		if colState == -1 {
			missing = append(missing, ColumnState)
		}
		if colValue == -1 {
			missing = append(missing, ColumnRenewables)
		}
		return ParseResult{}, fmt.Errorf("unexpected header: missing %s; got headers=%v", strings.Join(missing, ","), header)
	}

	res := ParseResult{Records: make([]core.Record, 0, len(rows)-1)}
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		rec, err := parseRow(row, colDate, colState, colValue)
		if err != nil {
			if opts.SkipInvalid {
				res.Skipped++
				continue
			}
			return ParseResult{}, &RowError{Row: i + 1, Err: err}
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

func parseRow(row []string, colDate, colState, colValue int) (core.Record, error) {
	year, err := ParseYear(safeGet(row, colDate))
	if err != nil {
		return core.Record{}, err
	}
	raw := strings.TrimSpace(safeGet(row, colValue))
	value, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
	if err != nil {
		return core.Record{}, fmt.Errorf("%w: renewables %q is not a number", core.ErrInvalidRecord, raw)
	}
	rec := core.Record{
		Year:     year,
		Category: strings.TrimSpace(safeGet(row, colState)),
		Value:    value,
	}
	if err := rec.Validate(); err != nil {
		return core.Record{}, fmt.Errorf("%w: %v", core.ErrInvalidRecord, err)
	}
	return rec, nil
}

// ParseYear extracts the calendar year from a date cell.
func ParseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty date", core.ErrInvalidRecord)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Year(), nil
		}
	}
	return 0, fmt.Errorf("%w: unrecognised date %q", core.ErrInvalidRecord, s)
}

// IsRowError reports whether err came from a malformed row.
func IsRowError(err error) bool {
	var re *RowError
	return errors.As(err, &re)
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		v = strings.TrimPrefix(v, "\ufeff")
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
