package interval

import "strconv"

// NotFeasible is shown in place of a bound that cannot be met.
const NotFeasible = "Not feasible"

// MinLabel formats a point-estimate lower bound. A bound above the reference
// is not feasible and a negative bound is shown as zero.
func MinLabel(minSize, reference float64) string {
	switch {
	case minSize > reference:
		return NotFeasible
	case minSize < 0:
		return "0"
	default:
		return strconv.FormatFloat(minSize, 'f', 2, 64)
	}
}

// MaxLabel formats a point-estimate upper bound. A bound below the reference
// is not feasible.
func MaxLabel(maxSize, reference float64) string {
	if maxSize < reference {
		return NotFeasible
	}
	return strconv.FormatFloat(maxSize, 'f', 2, 64)
}

// GuidesVisible is the combined predicate that decides whether guide lines
// and point markers are drawn. It is stricter than the labels: a negative
// lower bound is labeled "0" but still hides the guides.
func GuidesVisible(p CurvePoint, reference float64, includeMax bool) bool {
	minOK := p.MinSize >= 0 && p.MinSize <= reference
	if !includeMax {
		return minOK
	}
	return minOK && p.MaxSize >= reference
}

// Display holds the labeled point estimate.
type Display struct {
	Min        string `json:"min"`
	Max        string `json:"max,omitempty"`
	ShowGuides bool   `json:"show_guides"`
}

// Describe applies the labeling rules and the guide predicate to a point
// estimate. Max is left empty when the variant omits the upper bound.
func Describe(p CurvePoint, reference float64, includeMax bool) Display {
	d := Display{
		Min:        MinLabel(p.MinSize, reference),
		ShowGuides: GuidesVisible(p, reference, includeMax),
	}
	if includeMax {
		d.Max = MaxLabel(p.MaxSize, reference)
	}
	return d
}
