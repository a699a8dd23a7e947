package models

import (
	"sort"
)

// Voxel is an integer voxel coordinate inside a volume
type Voxel struct {
	X, Y, Z int
}

// Calibration holds the physical size of a voxel
type Calibration struct {
	// XY is the lateral voxel spacing (pixel width and height)
	XY float64

	// Z is the voxel depth
	Z float64

	// Unit is the name of the physical unit, "pix" when uncalibrated
	Unit string
}

// DefaultCalibration returns the calibration used for uncalibrated volumes
func DefaultCalibration() Calibration {
	return Calibration{XY: 1.0, Z: 1.0, Unit: "pix"}
}

// VoxelVolume returns the physical volume of a single voxel
func (c Calibration) VoxelVolume() float64 {
	return c.XY * c.XY * c.Z
}

// Grid describes the extent and calibration of a voxel raster.
// Data stored against a grid is row-major: z*Width*Height + y*Width + x.
type Grid struct {
	Width, Height, Depth int

	Calibration Calibration
}

// InBounds reports whether the voxel lies inside the grid
func (g Grid) InBounds(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < g.Width && y < g.Height && z < g.Depth
}

// Index returns the row-major offset of a voxel
func (g Grid) Index(x, y, z int) int {
	return z*g.Width*g.Height + y*g.Width + x
}

// Size returns the number of voxels in the grid
func (g Grid) Size() int {
	return g.Width * g.Height * g.Depth
}

// Volume is a label volume (count mask). Each voxel holds the label of the
// object it belongs to, or 0 for background.
type Volume struct {
	Grid

	// Data holds one label per voxel in row-major order
	Data []uint32
}

// NewVolume allocates an empty label volume
func NewVolume(width, height, depth int, cal Calibration) *Volume {
	g := Grid{Width: width, Height: height, Depth: depth, Calibration: cal}
	return &Volume{
		Grid: g,
		Data: make([]uint32, g.Size()),
	}
}

// At returns the label at a voxel, 0 outside the volume
func (v *Volume) At(x, y, z int) uint32 {
	if !v.InBounds(x, y, z) {
		return 0
	}
	return v.Data[v.Index(x, y, z)]
}

// Set writes a label, ignoring voxels outside the volume
func (v *Volume) Set(x, y, z int, label uint32) {
	if !v.InBounds(x, y, z) {
		return
	}
	v.Data[v.Index(x, y, z)] = label
}

// Objects splits the volume into one Object per non-zero label, sorted by
// ascending label. Voxels of each object are in scan order.
func (v *Volume) Objects() []*Object {
	groups := make(map[uint32][]Voxel)
	for z := 0; z < v.Depth; z++ {
		for y := 0; y < v.Height; y++ {
			for x := 0; x < v.Width; x++ {
				label := v.Data[v.Index(x, y, z)]
				if label == 0 {
					continue
				}
				groups[label] = append(groups[label], Voxel{X: x, Y: y, Z: z})
			}
		}
	}

	labels := make([]uint32, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	objects := make([]*Object, 0, len(labels))
	for _, label := range labels {
		objects = append(objects, NewObject(label, groups[label], v.Calibration))
	}
	return objects
}

// Object is one labeled 3D object: its label and member voxels
type Object struct {
	// Label is the value shared by every voxel of the object
	Label uint32

	// Voxels lists the member voxels
	Voxels []Voxel

	// Calibration is the voxel spacing of the source volume
	Calibration Calibration

	members map[Voxel]struct{}
}

// NewObject builds an object and its membership index
func NewObject(label uint32, voxels []Voxel, cal Calibration) *Object {
	members := make(map[Voxel]struct{}, len(voxels))
	for _, vox := range voxels {
		members[vox] = struct{}{}
	}
	return &Object{
		Label:       label,
		Voxels:      voxels,
		Calibration: cal,
		members:     members,
	}
}

// Contains reports whether the voxel belongs to the object
func (o *Object) Contains(v Voxel) bool {
	_, ok := o.members[v]
	return ok
}

// Len returns the number of voxels (the volume in pixels)
func (o *Object) Len() int {
	return len(o.Voxels)
}
