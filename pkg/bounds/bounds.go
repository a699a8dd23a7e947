// Package bounds computes axis-aligned and oriented bounding boxes of voxel
// objects.
package bounds

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"ellipsoids3d/internal/models"
	"ellipsoids3d/pkg/geom"
)

// Box is an axis-aligned bounding box in voxel indices, bounds inclusive
type Box struct {
	Min, Max models.Voxel
}

// AxisAligned returns the bounding box of voxels; ok is false when empty
func AxisAligned(voxels []models.Voxel) (box Box, ok bool) {
	if len(voxels) == 0 {
		return box, false
	}
	box.Min, box.Max = voxels[0], voxels[0]
	for _, v := range voxels[1:] {
		box.Min.X = min(box.Min.X, v.X)
		box.Min.Y = min(box.Min.Y, v.Y)
		box.Min.Z = min(box.Min.Z, v.Z)
		box.Max.X = max(box.Max.X, v.X)
		box.Max.Y = max(box.Max.Y, v.Y)
		box.Max.Z = max(box.Max.Z, v.Z)
	}
	return box, true
}

// VolumePixels returns the number of voxels enclosed by the box
func (b Box) VolumePixels() int {
	return (b.Max.X - b.Min.X + 1) * (b.Max.Y - b.Min.Y + 1) * (b.Max.Z - b.Min.Z + 1)
}

// Array returns the box as xmin, xmax, ymin, ymax, zmin, zmax
func (b Box) Array() [6]int {
	return [6]int{b.Min.X, b.Max.X, b.Min.Y, b.Max.Y, b.Min.Z, b.Max.Z}
}

// Oriented is a box aligned with an object's principal axes. Extents are
// projections of calibrated voxel positions relative to Origin, widened by
// half a voxel's footprint on each axis so that every voxel cube lies
// inside the box.
type Oriented struct {
	// Origin in calibrated units
	Origin geom.Vector

	Axes [3]geom.Vector

	// Min and Max are the extents along each axis, calibrated units
	Min, Max [3]float64

	Calibration models.Calibration
}

// NewOriented builds the oriented box of voxels around center (voxel units)
// using the given orthonormal axes; ok is false when voxels is empty.
func NewOriented(voxels []models.Voxel, center geom.Vector, axes [3]geom.Vector, cal models.Calibration) (Oriented, bool) {
	o := Oriented{
		Origin:      geom.Vector{X: center.X * cal.XY, Y: center.Y * cal.XY, Z: center.Z * cal.Z},
		Axes:        axes,
		Calibration: cal,
	}
	if len(voxels) == 0 {
		return o, false
	}

	proj := make([]float64, len(voxels))
	for i, a := range axes {
		for j, v := range voxels {
			proj[j] = o.position(v).Sub(o.Origin).Dot(a)
		}
		pad := 0.5 * (math.Abs(a.X)*cal.XY + math.Abs(a.Y)*cal.XY + math.Abs(a.Z)*cal.Z)
		o.Min[i] = floats.Min(proj) - pad
		o.Max[i] = floats.Max(proj) + pad
	}
	return o, true
}

func (o Oriented) position(v models.Voxel) geom.Vector {
	return geom.Vector{X: float64(v.X) * o.Calibration.XY, Y: float64(v.Y) * o.Calibration.XY, Z: float64(v.Z) * o.Calibration.Z}
}

// Extents returns the box side lengths along each axis, calibrated units
func (o Oriented) Extents() [3]float64 {
	return [3]float64{o.Max[0] - o.Min[0], o.Max[1] - o.Min[1], o.Max[2] - o.Min[2]}
}

// VolumeUnit returns the box volume in calibrated units
func (o Oriented) VolumeUnit() float64 {
	e := o.Extents()
	return floats.Prod(e[:])
}

// VolumePixels returns the box volume expressed in voxels
func (o Oriented) VolumePixels() float64 {
	return o.VolumeUnit() / o.Calibration.VoxelVolume()
}

// Contains reports whether a voxel center lies inside the box
func (o Oriented) Contains(v models.Voxel) bool {
	d := o.position(v).Sub(o.Origin)
	for i, a := range o.Axes {
		s := d.Dot(a)
		if s < o.Min[i] || s > o.Max[i] {
			return false
		}
	}
	return true
}

// Corners returns the eight box corners in calibrated units
func (o Oriented) Corners() [8]geom.Vector {
	var corners [8]geom.Vector
	for i := 0; i < 8; i++ {
		p := o.Origin
		for axis := 0; axis < 3; axis++ {
			s := o.Min[axis]
			if i&(1<<axis) != 0 {
				s = o.Max[axis]
			}
			p = p.AddScaled(o.Axes[axis], s)
		}
		corners[i] = p
	}
	return corners
}

// Shell returns the voxels of grid inside the box that have a face
// neighbour outside it: the box surface re-expressed in the original frame.
func (o Oriented) Shell(grid models.Grid) []models.Voxel {
	cal := o.Calibration
	lo := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, c := range o.Corners() {
		p := [3]float64{c.X / cal.XY, c.Y / cal.XY, c.Z / cal.Z}
		for i := range p {
			lo[i] = math.Min(lo[i], p[i])
			hi[i] = math.Max(hi[i], p[i])
		}
	}
	x0, x1 := clip(lo[0], hi[0], grid.Width)
	y0, y1 := clip(lo[1], hi[1], grid.Height)
	z0, z1 := clip(lo[2], hi[2], grid.Depth)

	var shell []models.Voxel
	for z := z0; z <= z1; z++ {
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				v := models.Voxel{X: x, Y: y, Z: z}
				if !o.Contains(v) {
					continue
				}
				if !o.Contains(models.Voxel{X: x + 1, Y: y, Z: z}) ||
					!o.Contains(models.Voxel{X: x - 1, Y: y, Z: z}) ||
					!o.Contains(models.Voxel{X: x, Y: y + 1, Z: z}) ||
					!o.Contains(models.Voxel{X: x, Y: y - 1, Z: z}) ||
					!o.Contains(models.Voxel{X: x, Y: y, Z: z + 1}) ||
					!o.Contains(models.Voxel{X: x, Y: y, Z: z - 1}) {
					shell = append(shell, v)
				}
			}
		}
	}
	return shell
}

func clip(lo, hi float64, size int) (int, int) {
	a := int(math.Floor(lo))
	b := int(math.Ceil(hi))
	if a < 0 {
		a = 0
	}
	if b > size-1 {
		b = size - 1
	}
	return a, b
}
