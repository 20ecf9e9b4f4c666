package interval

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"

	"dbsinterval/domain/core"
)

// Solve evaluates the formula chain at the scalar parameters themselves.
// X is left at zero because nothing is swept.
func Solve(p Parameters) (CurvePoint, error) {
	if p.Factor == 0 {
		return CurvePoint{}, core.ErrZeroFactor
	}
	pt := chain(p)
	if !pt.finite() {
		return CurvePoint{}, core.ErrNonFiniteResult
	}
	return pt, nil
}

// ComputeCurve sweeps axis across its domain in Samples evenly spaced steps,
// holding every other parameter at its value in p.
func ComputeCurve(p Parameters, axis Axis) (Curve, error) {
	if !axis.Valid() {
		return Curve{}, fmt.Errorf("%w: %q", core.ErrUnknownAxis, axis)
	}
	if p.Factor == 0 {
		return Curve{}, core.ErrZeroFactor
	}

	lo, hi := axis.Domain()
	xs := floats.Span(make([]float64, Samples), lo, hi)
	// Pin the end point so the grid closes on hi exactly.
	xs[len(xs)-1] = hi

	points := make([]CurvePoint, len(xs))
	for i, x := range xs {
		pt := chain(p.WithValueOn(axis, x))
		if !pt.finite() {
			return Curve{}, fmt.Errorf("%w at %s=%g", core.ErrNonFiniteResult, axis, x)
		}
		pt.X = x
		points[i] = pt
	}
	return Curve{Axis: axis, Params: p, Points: points}, nil
}

// finite reports whether both bounds are ordinary numbers. A vanishingly
// small factor overflows the division to ±Inf.
func (pt CurvePoint) finite() bool {
	return !math.IsInf(pt.MinSize, 0) && !math.IsNaN(pt.MinSize) &&
		!math.IsInf(pt.MaxSize, 0) && !math.IsNaN(pt.MaxSize)
}

func chain(p Parameters) CurvePoint {
	zcv := p.Z * p.CV
	allowable := p.TEa - zcv
	biasDBS := allowable - p.Bias
	mm := biasDBS / p.Factor
	return CurvePoint{
		ZCV:              zcv,
		MaxAllowableBias: allowable,
		MaxBiasDBS:       biasDBS,
		MaxMmDifference:  mm,
		MinSize:          p.ReferenceSize - mm,
		MaxSize:          p.ReferenceSize + mm,
	}
}

// QueryAt returns the sample nearest to x. Equal distances resolve to the
// lowest index, so the result is always an actual grid sample.
func QueryAt(c Curve, x float64) (CurvePoint, error) {
	if len(c.Points) == 0 {
		return CurvePoint{}, core.ErrEmptyCurve
	}
	best := 0
	bestDist := math.Abs(c.Points[0].X - x)
	for i := 1; i < len(c.Points); i++ {
		if d := math.Abs(c.Points[i].X - x); d < bestDist {
			best, bestDist = i, d
		}
	}
	return c.Points[best], nil
}

// Guide is the linearly interpolated interval at an exact query value.
type Guide struct {
	X       float64 `json:"x"`
	MinSize float64 `json:"min_size"`
	MaxSize float64 `json:"max_size"`
}

// Interpolate evaluates both bounds at x by piecewise-linear interpolation
// between the bracketing samples. Outside the sampled range the end sample
// values are returned.
func Interpolate(c Curve, x float64) (Guide, error) {
	if len(c.Points) == 0 {
		return Guide{}, core.ErrEmptyCurve
	}
	if len(c.Points) == 1 {
		p := c.Points[0]
		return Guide{X: x, MinSize: p.MinSize, MaxSize: p.MaxSize}, nil
	}

	xs := c.Xs()
	// Fit panics on unordered abscissae and otherwise always returns nil.
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return Guide{}, fmt.Errorf("%w: x[%d]=%g follows %g", core.ErrCurveNotOrdered, i, xs[i], xs[i-1])
		}
	}
	var lower, upper interp.PiecewiseLinear
	lower.Fit(xs, c.MinSizes())
	upper.Fit(xs, c.MaxSizes())
	return Guide{X: x, MinSize: lower.Predict(x), MaxSize: upper.Predict(x)}, nil
}
