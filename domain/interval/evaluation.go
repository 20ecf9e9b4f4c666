package interval

import (
	"dbsinterval/domain/core"
)

// Summary describes the whole sweep rather than the selected point.
type Summary struct {
	LowestMin       float64 `json:"lowest_min"`
	HighestMax      float64 `json:"highest_max"`
	MeanMargin      float64 `json:"mean_margin"`
	FeasibleSamples int     `json:"feasible_samples"`
	FeasibleFrom    float64 `json:"feasible_from"`
	FeasibleTo      float64 `json:"feasible_to"`
}

// Evaluation is everything a presentation layer needs to draw one state of
// the calculator. Point is the nearest grid sample to Query and feeds the
// displayed metrics; Guide is interpolated at Query exactly and positions
// the guide lines.
type Evaluation struct {
	ID          core.EvaluationID `json:"id"`
	Variant     Variant           `json:"variant"`
	Confidence  ConfidenceLevel   `json:"confidence"`
	Params      Parameters        `json:"params"`
	Query       float64           `json:"query"`
	Curve       Curve             `json:"curve"`
	Point       CurvePoint        `json:"point"`
	Guide       Guide             `json:"guide"`
	Display     Display           `json:"display"`
	Summary     Summary           `json:"summary"`
	Fingerprint core.Fingerprint  `json:"fingerprint"`
	GeneratedAt core.Timestamp    `json:"generated_at"`
}

// Fingerprint digests the variant and parameters. Equal inputs always give
// equal fingerprints, so it can key HTTP caches.
func (p Parameters) Fingerprint(v Variant) core.Fingerprint {
	return core.FingerprintFields(
		core.Field{Name: "variant", Value: v.Name},
		core.Field{Name: "z", Value: p.Z},
		core.Field{Name: "tea", Value: p.TEa},
		core.Field{Name: "bias", Value: p.Bias},
		core.Field{Name: "cv", Value: p.CV},
		core.Field{Name: "factor", Value: p.Factor},
		core.Field{Name: "reference", Value: p.ReferenceSize},
	)
}
