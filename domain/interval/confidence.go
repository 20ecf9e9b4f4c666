package interval

import "strings"

// ConfidenceLevel pairs a display label with its z multiplier.
type ConfidenceLevel struct {
	Label string  `json:"label"`
	Z     float64 `json:"z"`
}

// ConfidenceLevels lists the selectable levels in display order.
var ConfidenceLevels = []ConfidenceLevel{
	{Label: "95% (one-tailed)", Z: 1.65},
	{Label: "99% (one-tailed)", Z: 2.33},
	{Label: "95% (two-tailed)", Z: 1.96},
	{Label: "99% (two-tailed)", Z: 2.58},
}

// DefaultConfidence is the initially selected level.
func DefaultConfidence() ConfidenceLevel {
	return ConfidenceLevels[0]
}

// LookupConfidence finds a level by label, ignoring case and surrounding space.
func LookupConfidence(label string) (ConfidenceLevel, bool) {
	label = strings.TrimSpace(label)
	for _, lvl := range ConfidenceLevels {
		if strings.EqualFold(lvl.Label, label) {
			return lvl, true
		}
	}
	return ConfidenceLevel{}, false
}

// ConfidenceForZ finds the level whose multiplier equals z.
func ConfidenceForZ(z float64) (ConfidenceLevel, bool) {
	for _, lvl := range ConfidenceLevels {
		if lvl.Z == z {
			return lvl, true
		}
	}
	return ConfidenceLevel{}, false
}

// IsConfidenceZ reports whether z is one of the enumerated multipliers.
func IsConfidenceZ(z float64) bool {
	_, ok := ConfidenceForZ(z)
	return ok
}
