// Package ellipsoid derives the three radii of the fitted ellipsoid and
// rasterizes it into voxels.
package ellipsoid

import (
	"math"
)

// Radii are the semi-axis lengths of a fitted ellipsoid in calibrated units.
// R1 pairs with the major axis, R2 with the secondary and R3 with the minor.
type Radii struct {
	R1, R2, R3 float64
}

// Resolve derives R2 = R1/mainElongation and R3 = R2/medianElongation.
//
// An undefined main elongation leaves both R2 and R3 undefined; an undefined
// median elongation leaves only R3 undefined.
func Resolve(r1, mainElongation, medianElongation float64) Radii {
	r2 := math.NaN()
	if !math.IsNaN(mainElongation) {
		r2 = r1 / mainElongation
	}
	r3 := math.NaN()
	if !math.IsNaN(medianElongation) {
		r3 = r2 / medianElongation
	}
	return Radii{R1: r1, R2: r2, R3: r3}
}

// Defined reports whether all three radii are finite and positive
func (r Radii) Defined() bool {
	for _, v := range []float64{r.R1, r.R2, r.R3} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return false
		}
	}
	return true
}

// Max returns the largest defined radius
func (r Radii) Max() float64 {
	m := r.R1
	for _, v := range []float64{r.R2, r.R3} {
		if !math.IsNaN(v) && v > m {
			m = v
		}
	}
	return m
}

// Volume returns the model volume 4/3·π·R1·R2·R3, NaN if any radius is undefined
func (r Radii) Volume() float64 {
	return 4.0 / 3.0 * math.Pi * r.R1 * r.R2 * r.R3
}
