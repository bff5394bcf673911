// Package loads reads and reshapes hourly load series. Every series leaving
// this package is exactly models.HoursInYear long.
package loads

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"

	"github.com/ajitpratap0/thermalnetwork/internal/models"
)

const (
	secondsPerHour = 3600.0
	secondsPerDay  = 86400.0
)

// Zeros returns an all-zero hourly year.
func Zeros() []float64 {
	return make([]float64, models.HoursInYear)
}

// Constant returns an hourly year filled with v.
func Constant(v float64) []float64 {
	out := Zeros()
	for i := range out {
		out[i] = v
	}
	return out
}

// CheckLength returns ErrDataShape when s is not an hourly year.
func CheckLength(name string, s []float64) error {
	if len(s) != models.HoursInYear {
		return fmt.Errorf("%w: %s has %d values, want %d", models.ErrDataShape, name, len(s), models.HoursInYear)
	}
	return nil
}

// Sum adds hourly years elementwise into a new slice.
func Sum(series ...[]float64) ([]float64, error) {
	out := Zeros()
	for i, s := range series {
		if err := CheckLength(fmt.Sprintf("series %d", i), s); err != nil {
			return nil, err
		}
		floats.Add(out, s)
	}
	return out, nil
}

// Scale returns c·s as a new slice.
func Scale(s []float64, c float64) []float64 {
	out := make([]float64, len(s))
	floats.ScaleTo(out, c, s)
	return out
}

// Total returns the sum of all elements.
func Total(s []float64) float64 {
	return floats.Sum(s)
}

// ApplyHeatAddition subtracts a heat addition from load hour by hour. Only
// hours with a positive (extraction) load are relieved, and never below zero.
func ApplyHeatAddition(load, addition []float64) ([]float64, error) {
	if err := CheckLength("load", load); err != nil {
		return nil, err
	}
	if err := CheckLength("heat addition", addition); err != nil {
		return nil, err
	}
	out := make([]float64, len(load))
	for i, l := range load {
		if l <= 0 || addition[i] <= 0 {
			out[i] = l
			continue
		}
		out[i] = max(l-addition[i], 0)
	}
	return out, nil
}

// ResampleHourly returns an hourly year starting at times[0]. times are in
// seconds and must be strictly increasing. A series that is already 8760
// hourly samples is copied unchanged. Otherwise, when the series ends before
// tail, the last value is repeated at tail, and the series is interpolated
// linearly onto hourly points.
func ResampleHourly(times, values []float64, tail float64) ([]float64, error) {
	n := len(times)
	if n != len(values) {
		return nil, fmt.Errorf("%w: %d timestamps but %d values", models.ErrDataShape, n, len(values))
	}
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 samples to resample, got %d", models.ErrDataShape, n)
	}
	for i := 1; i < n; i++ {
		if times[i] <= times[i-1] {
			return nil, fmt.Errorf("%w: timestamps not strictly increasing at row %d", models.ErrDataShape, i)
		}
	}

	if n == models.HoursInYear && isHourly(times) {
		out := make([]float64, n)
		copy(out, values)
		return out, nil
	}

	xs := make([]float64, n, n+1)
	ys := make([]float64, n, n+1)
	for i := range times {
		xs[i] = times[i] - times[0]
	}
	copy(ys, values)
	if tail-times[0] > xs[n-1] {
		xs = append(xs, tail-times[0])
		ys = append(ys, values[n-1])
	}

	span := float64(models.HoursInYear-1) * secondsPerHour
	if xs[len(xs)-1] < span {
		return nil, fmt.Errorf("%w: series covers %.1f h, need %d h",
			models.ErrDataShape, xs[len(xs)-1]/secondsPerHour, models.HoursInYear-1)
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("%w: fitting series: %v", models.ErrDataShape, err)
	}
	out := Zeros()
	for h := range out {
		out[h] = pl.Predict(float64(h) * secondsPerHour)
	}
	return out, nil
}

// TailOneDay returns the anchor used for building load tables: one day past
// the last timestamp.
func TailOneDay(times []float64) float64 {
	if len(times) == 0 {
		return 0
	}
	return times[len(times)-1] + secondsPerDay
}

func isHourly(times []float64) bool {
	for i := 1; i < len(times); i++ {
		if times[i]-times[i-1] != secondsPerHour {
			return false
		}
	}
	return true
}
