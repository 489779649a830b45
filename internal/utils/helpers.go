package utils

import (
	"math"
	"strings"
	"time"
)

// RoundTo rounds f to the given number of decimal places.
func RoundTo(f float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(f*pow) / pow
}

// Percentage returns part/total*100 rounded to two places, or 0 when total is 0.
func Percentage(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return RoundTo(float64(part)/float64(total)*100, 2)
}

// ParseDateParam accepts RFC3339 or a bare 2006-01-02 date. Empty input yields nil.
func ParseDateParam(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
