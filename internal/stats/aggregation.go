package stats

import "math"

// Mean calculates the arithmetic mean of a slice of float64 values.
// An empty slice yields 0.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	return Sum(values) / float64(len(values))
}

// Sum adds up the values
func Sum(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}

// Round rounds v to the given number of decimal places, halves away from zero.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// MetersToKm converts meters to kilometers rounded to 2 decimals.
func MetersToKm(m float64) float64 {
	return Round(m/1000, 2)
}

// MpsToKmh converts m/s to km/h rounded to 2 decimals.
func MpsToKmh(v float64) float64 {
	return Round(v*3.6, 2)
}
