// Package interval derives the acceptable dried blood spot (DBS) diameter
// interval from analytical performance parameters.
//
// Every value is produced by the same chain:
//
//	zCV              = z * cv
//	maxAllowableBias = tea - zCV
//	maxBiasDBS       = maxAllowableBias - bias
//	maxMmDifference  = maxBiasDBS / factor
//	minSize          = reference - maxMmDifference
//	maxSize          = reference + maxMmDifference
//
// A Curve sweeps either tea or cv across a fixed domain while the remaining
// parameters stay at their scalar values. Bounds on the curve are never
// clamped; clamping and "Not feasible" labeling apply to point estimates only.
package interval

import (
	"fmt"
	"strings"

	"dbsinterval/domain/core"
)

// Samples is the number of evenly spaced points in every sweep.
const Samples = 200

// Axis selects which parameter a curve sweeps.
type Axis string

const (
	AxisTEa Axis = "tea"
	AxisCV  Axis = "cv"
)

// Domain returns the inclusive sweep range for the axis.
func (a Axis) Domain() (lo, hi float64) {
	switch a {
	case AxisCV:
		return 0, 30
	default:
		return 5, 50
	}
}

// Label is the human readable axis title.
func (a Axis) Label() string {
	switch a {
	case AxisCV:
		return "Analytical CV (%)"
	default:
		return "Total Allowable Error (TEa, %)"
	}
}

// MarkerLabel names the vertical marker drawn at the selected value.
func (a Axis) MarkerLabel() string {
	switch a {
	case AxisCV:
		return "Selected CV (%)"
	default:
		return "Selected TEa (%)"
	}
}

// Valid reports whether a is a known axis.
func (a Axis) Valid() bool {
	return a == AxisTEa || a == AxisCV
}

// ParseAxis parses "tea" or "cv", case-insensitively.
func ParseAxis(s string) (Axis, error) {
	a := Axis(strings.ToLower(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", fmt.Errorf("%w: %q", core.ErrUnknownAxis, s)
	}
	return a, nil
}

// Parameters are the scalar inputs of one evaluation. Percentages are
// expressed in percent (25 means 25 %), diameters in millimetres.
type Parameters struct {
	Z             float64 `json:"z" validate:"confidence_z"`
	TEa           float64 `json:"tea" validate:"gte=5,lte=50"`
	Bias          float64 `json:"bias" validate:"gte=0,lte=20"`
	CV            float64 `json:"cv" validate:"gte=0,lte=30"`
	Factor        float64 `json:"factor" validate:"gte=0,lte=5"`
	ReferenceSize float64 `json:"reference_size" validate:"gte=10,lte=12"`
}

// DefaultParameters mirrors the initial control positions of the calculator.
func DefaultParameters() Parameters {
	return Parameters{
		Z:             DefaultConfidence().Z,
		TEa:           25.0,
		Bias:          5.0,
		CV:            8.7,
		Factor:        2.74,
		ReferenceSize: 10.7,
	}
}

// ValueOn returns the parameter the axis sweeps.
func (p Parameters) ValueOn(a Axis) float64 {
	if a == AxisCV {
		return p.CV
	}
	return p.TEa
}

// WithValueOn returns a copy of p with the swept parameter replaced by x.
func (p Parameters) WithValueOn(a Axis, x float64) Parameters {
	if a == AxisCV {
		p.CV = x
	} else {
		p.TEa = x
	}
	return p
}

// CurvePoint is one evaluation of the formula chain. X is the value of the
// swept parameter.
type CurvePoint struct {
	X                float64 `json:"x"`
	ZCV              float64 `json:"z_cv"`
	MaxAllowableBias float64 `json:"max_allowable_bias"`
	MaxBiasDBS       float64 `json:"max_bias_dbs"`
	MaxMmDifference  float64 `json:"max_mm_difference"`
	MinSize          float64 `json:"min_size"`
	MaxSize          float64 `json:"max_size"`
}

// Curve is a full sweep of one axis.
type Curve struct {
	Axis   Axis         `json:"axis"`
	Params Parameters   `json:"params"`
	Points []CurvePoint `json:"points"`
}

// Xs returns the sample positions.
func (c Curve) Xs() []float64 {
	return c.column(func(p CurvePoint) float64 { return p.X })
}

// MinSizes returns the lower bound of every sample.
func (c Curve) MinSizes() []float64 {
	return c.column(func(p CurvePoint) float64 { return p.MinSize })
}

// MaxSizes returns the upper bound of every sample.
func (c Curve) MaxSizes() []float64 {
	return c.column(func(p CurvePoint) float64 { return p.MaxSize })
}

func (c Curve) column(get func(CurvePoint) float64) []float64 {
	out := make([]float64, len(c.Points))
	for i, p := range c.Points {
		out[i] = get(p)
	}
	return out
}
