package detection

import "math"

// ToDB converts a linear power ratio to decibels
func ToDB(x float64) float64 {
	return 10 * math.Log10(x)
}

// FromDB converts decibels to a linear power ratio
func FromDB(db float64) float64 {
	return math.Pow(10, db/10)
}
