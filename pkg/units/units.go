// Package units holds small unit conversions and numeric helpers shared by the
// hydraulic and load calculations.
package units

import "math"

// InchesToMeters converts inches to meters.
func InchesToMeters(x float64) float64 { return x * 0.0254 }

// LitersPerSecondToCubicMeters converts L/s to m³/s.
func LitersPerSecondToCubicMeters(x float64) float64 { return x * 0.001 }

// Sigmoid is the logistic function centred on a with width b. It returns a
// value in (0, 1) that rises through 0.5 at x == a.
func Sigmoid(x, a, b float64) float64 {
	return 1 / (1 + math.Exp(-(x-a)/b))
}

// Blend returns the sigmoid-weighted mix of low and high at x.
func Blend(x, a, b, low, high float64) float64 {
	s := Sigmoid(x, a, b)
	return (1-s)*low + s*high
}
