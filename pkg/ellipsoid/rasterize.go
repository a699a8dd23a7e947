package ellipsoid

import (
	"math"

	"ellipsoids3d/internal/models"
	"ellipsoids3d/pkg/geom"
)

// Params describes one ellipsoid to rasterize
type Params struct {
	// Center in calibrated units
	Center geom.Vector

	Radii Radii

	// Major is paired with R1, Secondary with R2; the third axis is
	// Major × Secondary and is paired with R3
	Major, Secondary geom.Vector
}

// Contains reports whether a calibrated position lies inside the ellipsoid
func (p Params) Contains(pos geom.Vector, third geom.Vector) bool {
	d := pos.Sub(p.Center)
	a := d.Dot(p.Major) / p.Radii.R1
	b := d.Dot(p.Secondary) / p.Radii.R2
	c := d.Dot(third) / p.Radii.R3
	return a*a+b*b+c*c <= 1
}

// Rasterize returns every voxel of grid whose calibrated position satisfies
// the ellipsoid inequality. It returns false, and no voxels, when a radius
// is undefined or an axis has zero length.
func Rasterize(p Params, grid models.Grid) ([]models.Voxel, bool) {
	if !p.Radii.Defined() {
		return nil, false
	}
	p.Major = p.Major.Normalize()
	p.Secondary = p.Secondary.Normalize()
	third := p.Major.Cross(p.Secondary).Normalize()
	if third == (geom.Vector{}) {
		return nil, false
	}

	cal := grid.Calibration
	r := p.Radii.Max()
	x0, x1 := voxelRange(p.Center.X, r, cal.XY, grid.Width)
	y0, y1 := voxelRange(p.Center.Y, r, cal.XY, grid.Height)
	z0, z1 := voxelRange(p.Center.Z, r, cal.Z, grid.Depth)

	var voxels []models.Voxel
	for z := z0; z <= z1; z++ {
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				pos := geom.Vector{X: float64(x) * cal.XY, Y: float64(y) * cal.XY, Z: float64(z) * cal.Z}
				if p.Contains(pos, third) {
					voxels = append(voxels, models.Voxel{X: x, Y: y, Z: z})
				}
			}
		}
	}
	return voxels, true
}

// voxelRange converts the calibrated interval center±r into clipped voxel indices
func voxelRange(center, r, res float64, size int) (int, int) {
	lo := int(math.Floor((center - r) / res))
	hi := int(math.Ceil((center + r) / res))
	if lo < 0 {
		lo = 0
	}
	if hi > size-1 {
		hi = size - 1
	}
	return lo, hi
}
