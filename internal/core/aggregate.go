package core

import "github.com/shopspring/decimal"

// Aggregate sums record values per category. Rows come out in the order each
// category was first seen; values are summed as-is, negatives included.
// NaN and infinite values cannot be summed and are ignored, though their
// category still gets a row.
func Aggregate(records []Record) []Row {
	out := make([]Row, 0)
	if len(records) == 0 {
		return out
	}

	index := make(map[string]int)
	sums := make([]decimal.Decimal, 0)
	for _, r := range records {
		i, ok := index[r.Category]
		if !ok {
			i = len(out)
			index[r.Category] = i
			out = append(out, Row{Category: r.Category})
			sums = append(sums, decimal.Zero)
		}
		if !finite(r.Value) {
			continue
		}
		sums[i] = sums[i].Add(decimal.NewFromFloat(r.Value))
	}
	for i := range out {
		out[i].Value = sums[i].InexactFloat64()
	}
	return out
}

// FilterYear returns the records belonging to year, preserving input order.
func FilterYear(records []Record, year int) []Record {
	out := make([]Record, 0)
	for _, r := range records {
		if r.Year == year {
			out = append(out, r)
		}
	}
	return out
}

// DistinctYears returns each year once, in first-seen order.
func DistinctYears(records []Record) []int {
	seen := map[int]struct{}{}
	out := make([]int, 0)
	for _, r := range records {
		if _, ok := seen[r.Year]; ok {
			continue
		}
		seen[r.Year] = struct{}{}
		out = append(out, r.Year)
	}
	return out
}

// YearBounds returns the smallest and largest year. ok is false for an empty slice.
func YearBounds(years []int) (min, max int, ok bool) {
	if len(years) == 0 {
		return 0, 0, false
	}
	min, max = years[0], years[0]
	for _, y := range years[1:] {
		if y < min {
			min = y
		}
		if y > max {
			max = y
		}
	}
	return min, max, true
}

// MaxValue returns the largest row value, or 0 when rows is empty.
func MaxValue(rows []Row) float64 {
	var m float64
	for i, r := range rows {
		if i == 0 || r.Value > m {
			m = r.Value
		}
	}
	return m
}
