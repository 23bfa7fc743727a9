package domain

import (
	"fmt"
	"math"
)

// FormatDuration renders a duration in seconds as a human string.
// Under a minute: "< 1 min". Under an hour: rounded whole minutes.
// An hour or more: "1h" or "1h 2m".
func FormatDuration(seconds int) string {
	if seconds < 60 {
		return "< 1 min"
	}
	minutes := int(math.Round(float64(seconds) / 60))
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	h := minutes / 60
	m := minutes % 60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// FormatDistance renders a distance in meters as a human string.
// Under a kilometer: whole meters. Otherwise kilometers to one decimal.
func FormatDistance(meters int) string {
	if meters < 1000 {
		return fmt.Sprintf("%d m", meters)
	}
	return fmt.Sprintf("%.1f km", float64(meters)/1000)
}

// DurationMinutes converts seconds to rounded whole minutes, with a
// floor of one minute so short hops never show as zero.
func DurationMinutes(seconds int) int {
	minutes := int(math.Round(float64(seconds) / 60))
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// DistanceKm converts meters to kilometers rounded to one decimal.
func DistanceKm(meters int) float64 {
	return math.Round(float64(meters)/100) / 10
}
