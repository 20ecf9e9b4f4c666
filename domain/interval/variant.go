package interval

import (
	"fmt"
	"strings"

	"dbsinterval/domain/core"
)

// Variant selects the swept axis and whether the upper bound is reported.
type Variant struct {
	Name       string `json:"name"`
	Title      string `json:"title"`
	Axis       Axis   `json:"axis"`
	IncludeMax bool   `json:"include_max"`
}

var (
	VariantTEa   = Variant{Name: "tea", Title: "Interval versus TEa", Axis: AxisTEa, IncludeMax: true}
	VariantCVMin = Variant{Name: "cv-min", Title: "Minimum diameter versus CV", Axis: AxisCV, IncludeMax: false}
	VariantCV    = Variant{Name: "cv", Title: "Interval versus CV", Axis: AxisCV, IncludeMax: true}
)

// Variants returns every supported variant in display order.
func Variants() []Variant {
	return []Variant{VariantTEa, VariantCVMin, VariantCV}
}

// ParseVariant looks a variant up by name. An empty name selects VariantTEa.
func ParseVariant(name string) (Variant, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return VariantTEa, nil
	}
	for _, v := range Variants() {
		if v.Name == name {
			return v, nil
		}
	}
	return Variant{}, fmt.Errorf("%w: %q", core.ErrUnknownVariant, name)
}
