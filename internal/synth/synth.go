// Package synth draws analytic shapes into label volumes. It is used to
// build known inputs for measurement tests.
package synth

import (
	"math"

	"ellipsoids3d/internal/models"
	"ellipsoids3d/pkg/geom"
)

// StandardAxes is the coordinate basis x, y, z
var StandardAxes = [3]geom.Vector{{X: 1}, {Y: 1}, {Z: 1}}

// Ellipsoid labels every voxel whose calibrated position lies inside the
// ellipsoid with the given center (voxel units), semi-axes (calibrated
// units) and orthonormal axes. It returns the number of voxels written.
func Ellipsoid(vol *models.Volume, label uint32, center geom.Vector, radii [3]float64, axes [3]geom.Vector) int {
	cal := vol.Calibration
	c := geom.Vector{X: center.X * cal.XY, Y: center.Y * cal.XY, Z: center.Z * cal.Z}

	count := 0
	for z := 0; z < vol.Depth; z++ {
		for y := 0; y < vol.Height; y++ {
			for x := 0; x < vol.Width; x++ {
				p := geom.Vector{X: float64(x) * cal.XY, Y: float64(y) * cal.XY, Z: float64(z) * cal.Z}.Sub(c)
				sum := 0.0
				for i := 0; i < 3; i++ {
					d := p.Dot(axes[i]) / radii[i]
					sum += d * d
				}
				if sum <= 1 {
					vol.Set(x, y, z, label)
					count++
				}
			}
		}
	}
	return count
}

// Sphere labels a solid sphere of radius r (calibrated units)
func Sphere(vol *models.Volume, label uint32, center geom.Vector, r float64) int {
	return Ellipsoid(vol, label, center, [3]float64{r, r, r}, StandardAxes)
}

// Box labels every voxel between min and max inclusive
func Box(vol *models.Volume, label uint32, min, max models.Voxel) int {
	count := 0
	for z := min.Z; z <= max.Z; z++ {
		for y := min.Y; y <= max.Y; y++ {
			for x := min.X; x <= max.X; x++ {
				if vol.InBounds(x, y, z) {
					vol.Set(x, y, z, label)
					count++
				}
			}
		}
	}
	return count
}

// RotateZ returns the standard axes rotated by angle radians about z
func RotateZ(angle float64) [3]geom.Vector {
	c, s := math.Cos(angle), math.Sin(angle)
	return [3]geom.Vector{
		{X: c, Y: s},
		{X: -s, Y: c},
		{Z: 1},
	}
}
