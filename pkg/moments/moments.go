// Package moments computes the centroid and principal axes of a labeled
// object from its second-order central moments.
//
// Moments are accumulated in calibrated coordinates, so anisotropic voxel
// depth is accounted for. Axes are ordered by ascending eigenvalue: axis 2
// is the major axis, axis 1 the secondary and axis 0 the minor.
package moments

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"ellipsoids3d/internal/models"
	"ellipsoids3d/pkg/geom"
)

// DefaultEpsilon is the eigenvalue (calibrated units squared) below which an
// axis is treated as degenerate
const DefaultEpsilon = 1e-9

var (
	// ErrEmptyObject is returned for objects without voxels
	ErrEmptyObject = errors.New("moments: object has no voxels")

	// ErrNoConvergence is returned when the eigen-decomposition fails
	ErrNoConvergence = errors.New("moments: eigen-decomposition did not converge")
)

// Frame is the principal frame of one object
type Frame struct {
	// Center is the centroid in voxel units
	Center geom.Vector

	// Axes are orthonormal directions in calibrated space, minor to major
	Axes [3]geom.Vector

	// Values are the covariance eigenvalues in calibrated units squared,
	// ascending, matching Axes
	Values [3]float64

	// Count is the number of voxels the frame was computed from
	Count int

	// Epsilon is the degenerate-eigenvalue threshold
	Epsilon float64
}

// Analyzer computes principal frames
type Analyzer struct {
	Epsilon float64
}

// NewAnalyzer creates an analyzer; a non-positive epsilon selects DefaultEpsilon
func NewAnalyzer(epsilon float64) *Analyzer {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	return &Analyzer{Epsilon: epsilon}
}

// Analyze computes the centroid, covariance and eigen-decomposition of obj
func (a *Analyzer) Analyze(obj *models.Object) (Frame, error) {
	n := obj.Len()
	if n == 0 {
		return Frame{}, ErrEmptyObject
	}
	cal := obj.Calibration

	xs := make([]float64, n)
	ys := make([]float64, n)
	zs := make([]float64, n)
	for i, v := range obj.Voxels {
		xs[i] = float64(v.X)
		ys[i] = float64(v.Y)
		zs[i] = float64(v.Z)
	}
	center := geom.Vector{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil), Z: stat.Mean(zs, nil)}

	cov := mat.NewSymDense(3, nil)
	if n > 1 {
		data := mat.NewDense(n, 3, nil)
		for i := 0; i < n; i++ {
			data.Set(i, 0, xs[i]*cal.XY)
			data.Set(i, 1, ys[i]*cal.XY)
			data.Set(i, 2, zs[i]*cal.Z)
		}
		stat.CovarianceMatrix(cov, data, nil)
		// population moments, not the unbiased estimator
		cov.ScaleSym(float64(n-1)/float64(n), cov)
	}

	var es mat.EigenSym
	if ok := es.Factorize(cov, true); !ok {
		return Frame{}, ErrNoConvergence
	}
	values := es.Values(nil)
	var vectors mat.Dense
	es.VectorsTo(&vectors)

	f := Frame{Center: center, Count: n, Epsilon: a.Epsilon}
	for i := 0; i < 3; i++ {
		val := values[i]
		if val < 0 {
			// rounding noise on a degenerate axis
			val = 0
		}
		f.Values[i] = val
		f.Axes[i] = canonicalSign(geom.Vector{
			X: vectors.At(0, i),
			Y: vectors.At(1, i),
			Z: vectors.At(2, i),
		}.Normalize())
	}
	return f, nil
}

// canonicalSign flips v so its largest-magnitude component is positive
func canonicalSign(v geom.Vector) geom.Vector {
	largest := v.X
	if math.Abs(v.Y) > math.Abs(largest) {
		largest = v.Y
	}
	if math.Abs(v.Z) > math.Abs(largest) {
		largest = v.Z
	}
	if largest < 0 {
		return v.Scale(-1)
	}
	return v
}

// Major returns the dominant axis
func (f Frame) Major() geom.Vector { return f.Axes[2] }

// Secondary returns the second axis
func (f Frame) Secondary() geom.Vector { return f.Axes[1] }

// Radius returns the moment radius along axis i: the semi-axis of the solid
// ellipsoid with the same variance, sqrt(5*lambda), in calibrated units.
func (f Frame) Radius(i int) float64 {
	return math.Sqrt(5 * f.Values[i])
}

// MainElongation is the ratio of the major to the secondary radius. It is
// NaN when the secondary eigenvalue is degenerate.
func (f Frame) MainElongation() float64 {
	return f.ratio(2, 1)
}

// MedianElongation is the ratio of the secondary to the minor radius. It is
// NaN when the minor eigenvalue is degenerate.
func (f Frame) MedianElongation() float64 {
	return f.ratio(1, 0)
}

func (f Frame) ratio(num, den int) float64 {
	if f.Values[den] <= f.Epsilon {
		return math.NaN()
	}
	return math.Sqrt(f.Values[num] / f.Values[den])
}

// CenterUnit returns the centroid in calibrated units
func (f Frame) CenterUnit(cal models.Calibration) geom.Vector {
	return geom.Vector{X: f.Center.X * cal.XY, Y: f.Center.Y * cal.XY, Z: f.Center.Z * cal.Z}
}

// Degenerate reports whether any eigenvalue is below epsilon
func (f Frame) Degenerate() bool {
	return f.Values[0] <= f.Epsilon
}
