package triage

import "strings"

// Color is a display color with a stable name and its hex value.
type Color struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

var (
	ColorRed     = Color{Name: "red", Hex: "#f44336"}
	ColorOrange  = Color{Name: "orange", Hex: "#ff9800"}
	ColorBlue    = Color{Name: "blue", Hex: "#2196f3"}
	ColorGreen   = Color{Name: "green", Hex: "#4caf50"}
	ColorNeutral = Color{Name: "gray", Hex: "#9e9e9e"}
)

// SeverityColor maps a severity label to its badge color.
// Unknown labels map to ColorNeutral.
func SeverityColor(severity string) Color {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case "critical":
		return ColorRed
	case "high", "major":
		return ColorOrange
	case "medium":
		return ColorBlue
	case "low", "minor":
		return ColorGreen
	default:
		return ColorNeutral
	}
}

// CategoryColor maps a category label to its badge color.
// Unknown labels map to ColorNeutral.
func CategoryColor(category string) Color {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "bug":
		return ColorRed
	case "task":
		return ColorBlue
	case "improvement":
		return ColorGreen
	default:
		return ColorNeutral
	}
}
