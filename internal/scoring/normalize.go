// internal/scoring/normalize.go
package scoring

import "math"

const (
	DimensionMin = 0.0
	DimensionMax = 100.0
	FactorMin    = 1.0
	FactorMax    = 10.0
)

// Clamp bounds v to [min, max]. NaN maps to min.
func Clamp(v, min, max float64) float64 {
	if math.IsNaN(v) {
		return min
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// ClampDimension normalizes a dimension score into [0,100].
func ClampDimension(v float64) float64 {
	return Clamp(v, DimensionMin, DimensionMax)
}

// ClampFactor normalizes a factor score into [1,10].
func ClampFactor(v float64) float64 {
	return Clamp(v, FactorMin, FactorMax)
}

// roundHalfUp rounds to the nearest integer, .5 going up.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func roundTo2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
