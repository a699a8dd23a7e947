// Package poles locates the extremal points ("poles") of an object along a
// direction, either by marching from the center to the border or by
// projecting every voxel onto the direction.
package poles

import (
	"math"

	"ellipsoids3d/internal/models"
	"ellipsoids3d/pkg/geom"
)

// Membership tests whether a voxel belongs to an object
type Membership interface {
	Contains(v models.Voxel) bool
}

// Border is the result of a march from a start voxel to the object border
type Border struct {
	// Voxel is the last in-object voxel before the first outside sample
	Voxel models.Voxel

	// Distance from the start to Voxel in calibrated units
	Distance float64

	// Found is false when the start voxel is not in the object
	Found bool
}

// March walks from start along dir in steps of half the smallest voxel
// spacing and stops at the first sample outside obj. dir is a direction in
// calibrated space; its length is ignored.
func March(obj Membership, start models.Voxel, dir geom.Vector, cal models.Calibration) Border {
	dir = dir.Normalize()
	if dir == (geom.Vector{}) || dir.IsNaN() {
		return Border{Voxel: start, Distance: math.NaN(), Found: obj.Contains(start)}
	}
	if !obj.Contains(start) {
		return Border{Voxel: start}
	}

	step := 0.5 * math.Min(cal.XY, cal.Z)
	origin := geom.Vector{X: float64(start.X) * cal.XY, Y: float64(start.Y) * cal.XY, Z: float64(start.Z) * cal.Z}

	last := Border{Voxel: start, Found: true}
	for t := step; ; t += step {
		p := origin.AddScaled(dir, t)
		v := models.Voxel{
			X: int(math.Round(p.X / cal.XY)),
			Y: int(math.Round(p.Y / cal.XY)),
			Z: int(math.Round(p.Z / cal.Z)),
		}
		if v == last.Voxel {
			continue
		}
		if !obj.Contains(v) {
			return last
		}
		last.Voxel = v
		last.Distance = Calibrated(v, cal).Sub(origin).Norm()
	}
}

// Extremal returns the voxels with the smallest and the largest projection
// onto dir, measured from center (voxel units) in calibrated space. Among
// voxels tied on projection the one closest to the line through center
// wins, so symmetric objects yield symmetric poles. ok is false for an
// empty voxel set or a zero direction.
func Extremal(voxels []models.Voxel, center, dir geom.Vector, cal models.Calibration) (lo, hi models.Voxel, ok bool) {
	dir = dir.Normalize()
	if len(voxels) == 0 || dir == (geom.Vector{}) || dir.IsNaN() {
		return lo, hi, false
	}

	c := geom.Vector{X: center.X * cal.XY, Y: center.Y * cal.XY, Z: center.Z * cal.Z}
	loS, hiS := math.Inf(1), math.Inf(-1)
	var loPerp, hiPerp float64
	for _, v := range voxels {
		d := geom.Vector{X: float64(v.X) * cal.XY, Y: float64(v.Y) * cal.XY, Z: float64(v.Z) * cal.Z}.Sub(c)
		s := d.Dot(dir)
		perp := d.Dot(d) - s*s

		switch {
		case s < loS-tolerance(s):
			lo, loS, loPerp = v, s, perp
		case s <= loS+tolerance(s) && perp < loPerp:
			lo, loS, loPerp = v, s, perp
		}
		switch {
		case s > hiS+tolerance(s):
			hi, hiS, hiPerp = v, s, perp
		case s >= hiS-tolerance(s) && perp < hiPerp:
			hi, hiS, hiPerp = v, s, perp
		}
	}
	return lo, hi, true
}

func tolerance(s float64) float64 {
	return 1e-9 * (1 + math.Abs(s))
}

// Calibrated converts a voxel to calibrated coordinates
func Calibrated(v models.Voxel, cal models.Calibration) geom.Vector {
	return geom.Vector{X: float64(v.X) * cal.XY, Y: float64(v.Y) * cal.XY, Z: float64(v.Z) * cal.Z}
}
