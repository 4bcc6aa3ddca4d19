// Package diagnostics collects repeated analog/probe readings and reports
// summary statistics, standing in for the interactive "watch this reading
// settle" step of the demo drivers.
package diagnostics

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Sample holds a fixed-size run of readings taken from the board.
type Sample struct {
	Values []float64
}

// Collect calls read n times, stopping at the first error, and returns the
// accumulated Sample.
func Collect(n int, read func() (float64, error)) (Sample, error) {
	if n <= 0 {
		return Sample{}, fmt.Errorf("diagnostics: sample size must be positive, got %d", n)
	}
	values := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		v, err := read()
		if err != nil {
			return Sample{}, fmt.Errorf("diagnostics: read %d/%d: %w", i+1, n, err)
		}
		values = append(values, v)
	}
	return Sample{Values: values}, nil
}

// Mean returns the arithmetic mean of the sample.
func (s Sample) Mean() float64 {
	return stat.Mean(s.Values, nil)
}

// StdDev returns the sample standard deviation.
func (s Sample) StdDev() float64 {
	return stat.StdDev(s.Values, nil)
}

// Range returns the minimum and maximum observed values.
func (s Sample) Range() (lo, hi float64) {
	lo, hi = s.Values[0], s.Values[0]
	for _, v := range s.Values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
