package nutrition

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount converts user input into a non-negative finite number.
// Anything that does not parse, or parses to NaN, an infinity or a negative
// value, becomes 0.
func ParseAmount(raw string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return sanitize(value)
}

// Round1 rounds to one decimal place, halves away from zero.
func Round1(value float64) float64 {
	return math.Round(value*10) / 10
}

func sanitize(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0
	}
	return value
}
