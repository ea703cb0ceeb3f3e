package chart

import (
	"math"
	"strconv"
)

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// Linear maps a continuous domain onto a pixel range.
type Linear struct {
	d0, d1 float64
	r0, r1 float64
}

func NewLinear(domain, rng [2]float64) Linear {
	return Linear{d0: domain[0], d1: domain[1], r0: rng[0], r1: rng[1]}
}

func (s Linear) Domain() [2]float64 { return [2]float64{s.d0, s.d1} }

func (s Linear) Range() [2]float64 { return [2]float64{s.r0, s.r1} }

func (s Linear) Map(v float64) float64 {
	if s.d0 == s.d1 {
		return (s.r0 + s.r1) / 2
	}
	return s.r0 + (v-s.d0)/(s.d1-s.d0)*(s.r1-s.r0)
}

// Ticks returns roughly count evenly spaced values on 1, 2 or 5 times a power of ten.
func (s Linear) Ticks(count int) []float64 {
	return ticks(s.d0, s.d1, count)
}

// TickFormat returns a formatter whose precision follows the tick step.
func (s Linear) TickFormat(count int) func(float64) string {
	step := tickStep(s.d0, s.d1, count)
	prec := 0
	if step > 0 && !math.IsInf(step, 0) {
		if p := -int(math.Floor(math.Log10(step))); p > 0 {
			prec = p
		}
	}
	return func(v float64) string {
		return strconv.FormatFloat(v, 'f', prec, 64)
	}
}

func tickSpec(start, stop float64, count float64) (i1, i2, inc float64) {
	step := (stop - start) / math.Max(0, count)
	power := math.Floor(math.Log10(step))
	e := step / math.Pow(10, power)
	factor := 1.0
	switch {
	case e >= e10:
		factor = 10
	case e >= e5:
		factor = 5
	case e >= e2:
		factor = 2
	}
	if power < 0 {
		inc = math.Pow(10, -power) / factor
		i1 = math.Round(start * inc)
		i2 = math.Round(stop * inc)
		if i1/inc < start {
			i1++
		}
		if i2/inc > stop {
			i2--
		}
		inc = -inc
	} else {
		inc = math.Pow(10, power) * factor
		i1 = math.Round(start / inc)
		i2 = math.Round(stop / inc)
		if i1*inc < start {
			i1++
		}
		if i2*inc > stop {
			i2--
		}
	}
	if i2 < i1 && count >= 0.5 && count < 2 {
		return tickSpec(start, stop, count*2)
	}
	return i1, i2, inc
}

func ticks(start, stop float64, count int) []float64 {
	if count <= 0 {
		return nil
	}
	if start == stop {
		return []float64{start}
	}
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}
	i1, i2, inc := tickSpec(start, stop, float64(count))
	if !(i2 >= i1) {
		return nil
	}
	n := int(i2-i1) + 1
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		if inc < 0 {
			out[i] = (i1 + float64(i)) / -inc
		} else {
			out[i] = (i1 + float64(i)) * inc
		}
	}
	if reverse {
		for l, r := 0, n-1; l < r; l, r = l+1, r-1 {
			out[l], out[r] = out[r], out[l]
		}
	}
	return out
}

func tickStep(start, stop float64, count int) float64 {
	if count <= 0 || start == stop {
		return 0
	}
	if stop < start {
		start, stop = stop, start
	}
	_, _, inc := tickSpec(start, stop, float64(count))
	if inc < 0 {
		return 1 / -inc
	}
	return inc
}

// Band splits a range into equal bands, one per distinct category.
type Band struct {
	domain    []string
	index     map[string]int
	start     float64
	step      float64
	bandwidth float64
}

// NewBand lays out the distinct categories in first-seen order with the same
// inner and outer padding, centred in the range.
func NewBand(categories []string, rng [2]float64, padding float64) Band {
	b := Band{index: make(map[string]int)}
	for _, c := range categories {
		if _, ok := b.index[c]; ok {
			continue
		}
		b.index[c] = len(b.domain)
		b.domain = append(b.domain, c)
	}
	n := float64(len(b.domain))
	r0, r1 := rng[0], rng[1]
	b.step = (r1 - r0) / math.Max(1, n-padding+padding*2)
	b.start = r0 + (r1-r0-b.step*(n-padding))*0.5
	b.bandwidth = b.step * (1 - padding)
	return b
}

// Map returns the start of the category's band.
func (b Band) Map(category string) (float64, bool) {
	i, ok := b.index[category]
	if !ok {
		return 0, false
	}
	return b.start + b.step*float64(i), true
}

func (b Band) Bandwidth() float64 { return b.bandwidth }

func (b Band) Step() float64 { return b.step }

func (b Band) Domain() []string { return append([]string(nil), b.domain...) }
