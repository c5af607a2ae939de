package app

import "fmt"

// FormatDistance renders meters as kilometers with two decimals, e.g.
// 950.0 -> "0.95 km".
func FormatDistance(meters float64) string {
	return fmt.Sprintf("%.2f km", meters/1000)
}

// FormatDuration renders seconds as minutes with one decimal, e.g.
// 180.0 -> "3.0 min".
func FormatDuration(seconds float64) string {
	return fmt.Sprintf("%.1f min", seconds/60)
}

// FormatCoordinateComponent renders one lat/lon component at the six
// decimal precision used for marker drags.
func FormatCoordinateComponent(v float64) string {
	return fmt.Sprintf("%.6f", v)
}
