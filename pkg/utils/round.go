package utils

import (
	"fmt"
	"math"
	"strconv"
)

func RoundToTwoDecimals(value float64) float64 {
	rounded, _ := strconv.ParseFloat(fmt.Sprintf("%.2f", value), 64)
	return rounded
}

// ClampScore rounds value and bounds it to the 0-100 score scale.
func ClampScore(value float64) int {
	if math.IsNaN(value) {
		return 0
	}
	return int(math.Round(math.Min(100, math.Max(0, value))))
}
