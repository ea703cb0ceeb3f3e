package core

import (
	"errors"
	"math"
	"strings"
)

type (
	// Record is one raw source row: the renewables share of a state for a year.
	Record struct {
		Year     int
		Category string // state / region name
		Value    float64
	}

	// Row is one chart-ready bar: the summed value of a category.
	Row struct {
		Category string
		Value    float64
	}

	// Selection is the year currently displayed plus the bounds of what is available.
	Selection struct {
		Year  int
		Min   int
		Max   int
		Years []int
	}
)

var (
	ErrInvalidRecord = errors.New("invalid record")
	ErrEmptyCategory = errors.New("empty category")
	ErrNonFinite     = errors.New("value is not a finite number")
	ErrInvalidYear   = errors.New("invalid year")
	ErrUnknownYear   = errors.New("unknown year")
)

func (r Record) Validate() error {
	if r.Year < 1 || r.Year > 9999 {
		return ErrInvalidYear
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if !finite(r.Value) {
		return ErrNonFinite
	}
	return nil
}

// Has reports whether year is one of the selectable years.
func (s Selection) Has(year int) bool {
	for _, y := range s.Years {
		if y == year {
			return true
		}
	}
	return false
}

// NewSelection builds a selection over years, positioned on the most recent one.
func NewSelection(years []int) (Selection, bool) {
	min, max, ok := YearBounds(years)
	if !ok {
		return Selection{}, false
	}
	return Selection{
		Year:  max,
		Min:   min,
		Max:   max,
		Years: append([]int(nil), years...),
	}, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
