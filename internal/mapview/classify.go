package mapview

import "strings"

// Style is the visual treatment of a marker.
type Style struct {
	Color string
}

var (
	styleVehicle    = Style{Color: "#dc2626"}
	styleBurglary   = Style{Color: "#b91c1c"}
	styleSuspicious = Style{Color: "#ca8a04"}
	styleVandalism  = Style{Color: "#7e22ce"}
	styleDefault    = Style{Color: "#2563eb"}

	styleEmergency = Style{Color: "#ef4444"}
	styleTeam      = Style{Color: "#16a34a"}
)

// Classify maps a crime category to a marker style by keyword. Matching is
// case-insensitive and total: any category, including empty, yields a style.
func Classify(category string) Style {
	c := strings.ToLower(category)
	switch {
	case strings.Contains(c, "vehicle"), strings.Contains(c, "car"), strings.Contains(c, "theft"):
		return styleVehicle
	case strings.Contains(c, "break"), strings.Contains(c, "burglary"):
		return styleBurglary
	case strings.Contains(c, "suspicious"), strings.Contains(c, "activity"):
		return styleSuspicious
	case strings.Contains(c, "vandalism"):
		return styleVandalism
	default:
		return styleDefault
	}
}
